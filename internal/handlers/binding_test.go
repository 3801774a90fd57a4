package handlers

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBindNestedOrFlat(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		key         string
		body        string
		amount      string
		date        string
		expectError bool
	}{
		{
			name:   "Nested Structure",
			key:    "advance",
			body:   `{"advance": {"amount": "150.25", "date": "2024-01-10"}}`,
			amount: "150.25",
			date:   "2024-01-10",
		},
		{
			name:   "Flat Structure",
			key:    "advance",
			body:   `{"amount": 80, "date": "2024-02-01"}`,
			amount: "80",
			date:   "2024-02-01",
		},
		{
			name:   "Missing Key Falls Back To Flat",
			key:    "advance",
			body:   `{"payroll": "ignored", "amount": "12.5"}`,
			amount: "12.5",
		},
		{
			name:        "Invalid Amount",
			key:         "advance",
			body:        `{"amount": "doce"}`,
			expectError: true,
		},
		{
			name:        "Nested but Invalid Content",
			key:         "advance",
			body:        `{"advance": {"amount": "doce"}}`,
			expectError: true,
		},
		{
			name:        "Nested Key Present but Invalid Type",
			key:         "advance",
			body:        `{"advance": "some string"}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var result AdvanceRequest
			err := BindNestedOrFlat(c, tt.key, &result)

			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.amount, result.Amount.String())
			assert.Equal(t, tt.date, result.Date)
		})
	}
}

func TestBindNestedOrFlat_EnforcesBindingTags(t *testing.T) {
	gin.SetMode(gin.TestMode)

	bind := func(body string) (GeneratePayrollRequest, error) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(body))
		var req GeneratePayrollRequest
		err := BindNestedOrFlat(c, "payroll", &req)
		return req, err
	}

	req, err := bind(`{"payroll": {"period": "2024-01"}}`)
	assert.NoError(t, err)
	assert.Equal(t, "2024-01", req.Period)

	_, err = bind(`{"payroll": {}}`)
	assert.Error(t, err)
	_, err = bind(`{"period": ""}`)
	assert.Error(t, err)
}

func TestReadBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"status":"PAID"}`))
	body, err := readBody(c)
	assert.NoError(t, err)
	assert.Equal(t, `{"status":"PAID"}`, string(body))

	// the body stays readable for the binder that follows
	again, err := io.ReadAll(c.Request.Body)
	assert.NoError(t, err)
	assert.Equal(t, body, again)

	c.Request = httptest.NewRequest("POST", "/", bytes.NewReader(make([]byte, maxBodyBytes+1)))
	_, err = readBody(c)
	assert.ErrorIs(t, err, errBodyTooLarge)
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2024-03-05")
	assert.NoError(t, err)
	assert.Equal(t, "2024-03-05", d.Format("2006-01-02"))

	d, err = parseDate("2024-03-05T22:30:00-06:00")
	assert.NoError(t, err)
	assert.Equal(t, "2024-03-05", d.Format("2006-01-02"))

	d, err = parseDate("  ")
	assert.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = parseDate("05/03/2024")
	assert.Error(t, err)
}
