// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/shopfront/internal/domain/order"
	"github.com/your-org/shopfront/internal/interfaces/http/response"
	"github.com/your-org/shopfront/internal/pkg/apperror"
	"github.com/your-org/shopfront/internal/pkg/pdf"
)

// InvoiceHandler handles invoice downloads
type InvoiceHandler struct {
	orderService *order.Service
	pdfService   *pdf.Service
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(orderService *order.Service, pdfService *pdf.Service) *InvoiceHandler {
	return &InvoiceHandler{
		orderService: orderService,
		pdfService:   pdfService,
	}
}

// DownloadInvoice handles GET /orders/:id/invoice. format=html returns the
// rendered document instead of the PDF.
func (h *InvoiceHandler) DownloadInvoice(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	o, err := h.orderService.Get(c.Request.Context(), id, viewer(u))
	if err != nil {
		response.Error(c, err)
		return
	}

	if c.Query("format") == "html" {
		body, err := h.pdfService.RenderHTML(o)
		if err != nil {
			response.Error(c, apperror.Wrap(err, "Failed to render invoice"))
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", body)
		return
	}

	body, err := h.pdfService.GenerateInvoice(o)
	if err != nil {
		response.Error(c, apperror.Wrap(err, "Failed to generate invoice"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%s.pdf", o.OrderNumber))
	c.Header("Content-Length", strconv.Itoa(len(body)))
	c.Data(http.StatusOK, "application/pdf", body)
}
