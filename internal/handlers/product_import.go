package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"

	"grocery-mart/internal/middleware"
	"grocery-mart/internal/models"
	"grocery-mart/internal/service"
)

// ImportProducts da de alta productos desde un xlsx con columnas
// Name, Category, Description, Price, DiscountedPrice, AvailableQuantity, ImageURL
func (h *ProductHandler) ImportProducts(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "excel file is required"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open excel file"})
		return
	}
	defer file.Close()

	book, err := xlsx.OpenReaderAt(file, header.Size)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse excel file"})
		return
	}
	if len(book.Sheets) == 0 || book.Sheets[0].MaxRow < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "excel file is empty or missing header row"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	session := middleware.SessionFrom(c)
	sheet := book.Sheets[0]
	created, skipped := 0, 0
	for i := 1; i < sheet.MaxRow; i++ {
		product, ok := productFromRow(sheet.Rows[i])
		if !ok {
			skipped++
			continue
		}
		if _, err := h.catalog.Create(ctx, session, product); err != nil {
			var validation *service.ValidationError
			if !errors.As(err, &validation) {
				respondError(c, err)
				return
			}
			skipped++
			continue
		}
		created++
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "import completed",
		"created_count": created,
		"skipped_count": skipped,
	})
}

func productFromRow(row *xlsx.Row) (*models.Product, bool) {
	if row == nil || len(row.Cells) < 6 {
		return nil, false
	}
	get := func(index int) string {
		if index < len(row.Cells) {
			return strings.TrimSpace(row.Cells[index].String())
		}
		return ""
	}

	price, err1 := strconv.ParseFloat(get(3), 64)
	discounted, _ := strconv.ParseFloat(get(4), 64)
	stock, err2 := strconv.Atoi(get(5))
	if get(0) == "" || get(1) == "" || err1 != nil || err2 != nil || price < 0 || stock < 0 {
		return nil, false
	}

	return &models.Product{
		Name:              get(0),
		Category:          get(1),
		Description:       get(2),
		Price:             price,
		DiscountedPrice:   discounted,
		AvailableQuantity: stock,
		ImageURL:          get(6),
	}, true
}
