// internal/interfaces/http/handlers/receipt.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/catalog"
	"github.com/your-org/pos-backend/internal/domain/sale"
	"github.com/your-org/pos-backend/internal/pkg/email"
	"github.com/your-org/pos-backend/internal/pkg/pdf"
	"gorm.io/gorm"
)

// ReceiptHandler handles receipt generation and delivery endpoints
type ReceiptHandler struct {
	saleService    *sale.Service
	catalogService *catalog.Service
	pdfService     *pdf.Service
	emailService   *email.EmailService
	config         *config.Config
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		saleService:    sale.NewService(db, cfg, logger),
		catalogService: catalog.NewService(db, redisClient, cfg),
		pdfService:     pdf.NewService(cfg),
		emailService:   email.NewEmailService(cfg),
		config:         cfg,
	}
}

// DownloadReceipt handles GET /sales/:id/receipt
func (h *ReceiptHandler) DownloadReceipt(c *gin.Context) {
	saleID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid sale ID",
		})
		return
	}

	recorded, err := h.saleService.GetSale(c.Request.Context(), uint(saleID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	pdfBuffer, err := h.pdfService.GenerateReceipt(recorded)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate receipt PDF",
		})
		return
	}

	filename := fmt.Sprintf("receipt-%s.pdf", recorded.Code)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", pdfBuffer.Bytes())
}

// EmailReceipt handles POST /sales/:id/receipt/email
func (h *ReceiptHandler) EmailReceipt(c *gin.Context) {
	saleID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid sale ID",
		})
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	recorded, err := h.saleService.GetSale(c.Request.Context(), uint(saleID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	// Fall back to the attached customer's email when none was given.
	recipient := req.Email
	recipientName := ""
	if recipient == "" && recorded.CustomerID != nil {
		customer, err := h.catalogService.GetCustomer(c.Request.Context(), *recorded.CustomerID)
		if err == nil {
			recipient = customer.Email
			recipientName = customer.Name
		}
	}

	if recipient == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No recipient email available for this sale",
		})
		return
	}

	if err := h.emailService.SendReceiptEmail(c.Request.Context(), recipient, recipientName, recorded); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to send receipt email",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Receipt email sent successfully",
		"data": gin.H{
			"sale_code": recorded.Code,
			"sent_to":   recipient,
		},
	})
}
