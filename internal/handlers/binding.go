package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// maxBodyBytes caps the JSON bodies read by the handlers
const maxBodyBytes = 1 << 20

var errBodyTooLarge = errors.New("el cuerpo de la solicitud es demasiado grande")

// readBody returns the raw request body and puts it back on the request, so the
// payment callback can verify the exact bytes before binding them.
func readBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxBodyBytes {
		return nil, errBodyTooLarge
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// BindNestedOrFlat decodes a resource payload sent either wrapped under its resource
// key ({"invoice": {...}}) or bare ({...}), then enforces the struct's binding tags.
// When the key is present its value alone is decoded, even if it is malformed.
func BindNestedOrFlat(c *gin.Context, key string, obj interface{}) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}

	payload := body
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err == nil {
		if nested, ok := envelope[key]; ok {
			payload = nested
		}
	}
	if err := json.Unmarshal(payload, obj); err != nil {
		return err
	}
	if binding.Validator == nil {
		return nil
	}
	return binding.Validator.ValidateStruct(obj)
}
