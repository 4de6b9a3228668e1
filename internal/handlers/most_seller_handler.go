package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"

	"grocery-mart/internal/service"
)

type MostSellerHandler struct {
	mostSellers *service.MostSellerService
}

func NewMostSellerHandler(mostSellers *service.MostSellerService) *MostSellerHandler {
	return &MostSellerHandler{mostSellers: mostSellers}
}

// Top lista el ranking de más vendidos (con caché)
func (h *MostSellerHandler) Top(c *gin.Context) {
	n, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	ctx, cancel := requestContext(c)
	defer cancel()

	top, err := h.mostSellers.Top(ctx, n)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": top})
}

// Export descarga el ranking completo como xlsx
func (h *MostSellerHandler) Export(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	counters, err := h.mostSellers.All(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Most Sellers")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create excel sheet"})
		return
	}

	headerRow := sheet.AddRow()
	for _, title := range []string{"Rank", "ProductID", "ProductName", "QuantitySold", "UpdatedAt"} {
		headerRow.AddCell().SetValue(title)
	}
	for i, counter := range counters {
		row := sheet.AddRow()
		row.AddCell().SetValue(i + 1)
		row.AddCell().SetValue(counter.ProductID.Hex())
		row.AddCell().SetValue(counter.ProductName)
		row.AddCell().SetValue(counter.QuantitySold)
		row.AddCell().SetValue(counter.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	c.Header("Content-Disposition", "attachment; filename=most_sellers.xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Expires", "0")

	if err := file.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write excel file"})
		return
	}
}
