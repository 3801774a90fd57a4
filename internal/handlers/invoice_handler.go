package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ops/internal/middleware"
	"github.com/sjperalta/fintera-ops/internal/payments"
	"github.com/sjperalta/fintera-ops/internal/services"
)

type InvoiceHandler struct {
	invoiceService     *services.InvoiceService
	paymentLinkService *services.PaymentLinkService
}

func NewInvoiceHandler(invoiceService *services.InvoiceService, paymentLinkService *services.PaymentLinkService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, paymentLinkService: paymentLinkService}
}

type CreateInvoiceRequest struct {
	CustomerID uint                        `json:"customer_id"`
	Number     string                      `json:"number"`
	TaxRate    decimal.Decimal             `json:"tax_rate"`
	IssueDate  string                      `json:"issue_date"`
	DueDate    string                      `json:"due_date"`
	Notes      string                      `json:"notes"`
	Items      []services.InvoiceItemInput `json:"items"`
}

type UpdateInvoiceRequest struct {
	TaxRate *decimal.Decimal            `json:"tax_rate"`
	DueDate *string                     `json:"due_date"`
	Notes   *string                     `json:"notes"`
	Items   []services.InvoiceItemInput `json:"items"`
}

type PaymentLinkRequest struct {
	Reuse bool `json:"reuse"`
}

type PaymentCallbackRequest struct {
	Reference string `json:"reference" binding:"required"`
	Status    string `json:"status" binding:"required"`
}

// @Summary List Invoices
// @Tags Invoices
// @Produce json
// @Param status query string false "Status filter"
// @Param customer_id query int false "Customer filter"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /invoices [get]
func (h *InvoiceHandler) Index(c *gin.Context) {
	query := listQuery(c, "status", "customer_id")
	invoices, total, err := h.invoiceService.List(c.Request.Context(), middleware.GetTenantID(c), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices, "pagination": pagination(query, total)})
}

// @Summary Get Invoice
// @Tags Invoices
// @Produce json
// @Param invoice_id path int true "Invoice ID"
// @Success 200 {object} models.Invoice
// @Security BearerAuth
// @Router /invoices/{invoice_id} [get]
func (h *InvoiceHandler) Show(c *gin.Context) {
	id, ok := parseID(c, "invoice_id")
	if !ok {
		return
	}
	inv, err := h.invoiceService.FindByID(c.Request.Context(), middleware.GetTenantID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

// @Summary Create Invoice
// @Description Creates a DRAFT invoice and computes its totals from the items
// @Tags Invoices
// @Accept json
// @Produce json
// @Param request body CreateInvoiceRequest true "Invoice"
// @Success 201 {object} models.Invoice
// @Security BearerAuth
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := BindNestedOrFlat(c, "invoice", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	issueDate, err := parseDate(req.IssueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inv, err := h.invoiceService.Create(c.Request.Context(), actorFrom(c), services.CreateInvoiceInput{
		CustomerID: req.CustomerID,
		Number:     req.Number,
		TaxRate:    req.TaxRate,
		IssueDate:  issueDate,
		DueDate:    dueDate,
		Notes:      req.Notes,
		Items:      req.Items,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"invoice": inv})
}

// @Summary Update Invoice
// @Description Sending items replaces the whole collection and recomputes the totals
// @Tags Invoices
// @Accept json
// @Produce json
// @Param invoice_id path int true "Invoice ID"
// @Param request body UpdateInvoiceRequest true "Changes"
// @Success 200 {object} models.Invoice
// @Security BearerAuth
// @Router /invoices/{invoice_id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "invoice_id")
	if !ok {
		return
	}
	var req UpdateInvoiceRequest
	if err := BindNestedOrFlat(c, "invoice", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in := services.UpdateInvoiceInput{TaxRate: req.TaxRate, Notes: req.Notes, Items: req.Items}
	if req.DueDate != nil {
		due, err := parseDate(*req.DueDate)
		if err != nil || due.IsZero() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fecha de vencimiento inválida"})
			return
		}
		in.DueDate = &due
	}
	inv, err := h.invoiceService.Update(c.Request.Context(), actorFrom(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

// @Summary Cancel Invoice
// @Tags Invoices
// @Produce json
// @Param invoice_id path int true "Invoice ID"
// @Success 200 {object} models.Invoice
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /invoices/{invoice_id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c, "invoice_id")
	if !ok {
		return
	}
	inv, err := h.invoiceService.Cancel(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

// @Summary Create Payment Link
// @Description Requests a hosted payment link for the invoice and emails it to the customer
// @Tags Invoices
// @Accept json
// @Produce json
// @Param invoice_id path int true "Invoice ID"
// @Param request body PaymentLinkRequest false "Options"
// @Success 201 {object} models.InvoicePayment
// @Failure 502 {object} map[string]string
// @Security BearerAuth
// @Router /invoices/{invoice_id}/payment_link [post]
func (h *InvoiceHandler) PaymentLink(c *gin.Context) {
	id, ok := parseID(c, "invoice_id")
	if !ok {
		return
	}
	var req PaymentLinkRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	payment, err := h.paymentLinkService.CreateLink(c.Request.Context(), actorFrom(c), id, req.Reuse)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment": payment})
}

// @Summary Payment Callback
// @Description Provider notification settling or failing a payment link. The raw body must be
// @Description signed with HMAC-SHA256 under the merchant API key in X-Payment-Signature.
// @Tags Payments
// @Accept json
// @Produce json
// @Param X-Payment-Signature header string true "Hex HMAC-SHA256 of the body"
// @Param request body PaymentCallbackRequest true "Callback"
// @Success 200 {object} models.InvoicePayment
// @Failure 401 {object} map[string]string
// @Router /payments/callback [post]
func (h *InvoiceHandler) PaymentCallback(c *gin.Context) {
	signature := c.GetHeader(payments.SignatureHeader)
	if signature == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Firma requerida"})
		return
	}
	body, err := readBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req PaymentCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payment, err := h.paymentLinkService.ReconcileSigned(c.Request.Context(), req.Reference, req.Status, body, signature)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment})
}
