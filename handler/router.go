package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the health check and the receipt API on r.
func RegisterRoutes(r *gin.Engine, receipts *ReceiptHandler) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Receipt Capture",
		})
	})

	api := r.Group("/api/v1")
	{
		receipt := api.Group("/receipts")
		{
			receipt.POST("/scan", receipts.Scan)
			receipt.POST("/parse", receipts.Parse)
			receipt.POST("/submit", receipts.Submit)
			receipt.POST("/export", receipts.Export)
		}
	}
}

// NewRouter builds the gin engine with recovery, request ids and access logging.
func NewRouter(receipts *ReceiptHandler, maxMultipartMemory int64) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog())
	if maxMultipartMemory > 0 {
		r.MaxMultipartMemory = maxMultipartMemory
	}
	RegisterRoutes(r, receipts)
	return r
}
