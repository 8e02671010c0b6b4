package adminController

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ShowRoomzs/back-end-sub001/cart"
	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"
)

// GET /admin/user-cart/:user_id
func GetUserCart(svc *cart.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDParam(c)
		if !ok {
			return
		}
		view, err := svc.GetCart(c.Request.Context(), userID)
		if err != nil {
			log.Error("admin cart lookup failed", zap.Uint("user_id", userID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "cart": view})
	}
}

// GET /admin/user-cart/:user_id/export
func ExportUserCartToExcel(svc *cart.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDParam(c)
		if !ok {
			return
		}
		view, err := svc.GetCart(c.Request.Context(), userID)
		if err != nil {
			log.Error("admin cart export failed", zap.Uint("user_id", userID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		file, err := cartWorkbook(view)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		filename := fmt.Sprintf("cart_%d_%s.xlsx", userID, time.Now().Format("20060102"))
		c.Header("Content-Disposition", "attachment; filename="+filename)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			log.Error("write cart workbook", zap.Error(err))
		}
	}
}

// cartWorkbook lays out one sheet with the lines followed by the totals, and a
// second sheet with the per-market shipping breakdown.
func cartWorkbook(view cart.CartView) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Cart")
	if err != nil {
		return nil, err
	}

	headers := []string{
		"CartID", "VariantID", "ProductID", "Market", "Product", "Option",
		"Quantity", "RegularPrice", "SalePrice", "DiscountRate", "SaleTotal",
		"Stock", "SoldOut", "ExceedsStock", "Displayed",
	}
	addRow(sheet, toCells(headers)...)

	for _, it := range view.Items {
		addRow(sheet,
			it.CartID, it.VariantID, it.ProductID, it.MarketName, it.ProductName, it.OptionName,
			it.Quantity, it.RegularPrice, it.SalePrice, it.DiscountRate, it.SaleTotal,
			it.Stock, it.SoldOut, it.ExceedsStock, it.IsDisplay,
		)
	}

	sheet.AddRow()
	s := view.Summary
	for _, total := range []struct {
		label string
		value int64
	}{
		{"RegularTotal", s.RegularTotal},
		{"SaleTotal", s.SaleTotal},
		{"DiscountTotal", s.DiscountTotal},
		{"DeliveryFeeTotal", s.DeliveryFeeTotal},
		{"FinalTotal", s.FinalTotal},
	} {
		addRow(sheet, total.label, total.value, humanize.Comma(total.value))
	}

	shipping, err := file.AddSheet("Shipping")
	if err != nil {
		return nil, err
	}
	addRow(shipping, "MarketID", "SaleTotal", "DeliveryFee", "FreeThreshold", "Charge", "Waived")
	for _, m := range view.Shipping {
		threshold := ""
		if m.FreeThreshold != nil {
			threshold = strconv.FormatInt(*m.FreeThreshold, 10)
		}
		addRow(shipping, m.MarketID, m.SaleTotal, m.DeliveryFee, threshold, m.Charge, m.Waived)
	}
	return file, nil
}

func addRow(sheet *xlsx.Sheet, values ...interface{}) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetValue(v)
	}
}

func toCells(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func userIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return 0, false
	}
	return uint(id), true
}
