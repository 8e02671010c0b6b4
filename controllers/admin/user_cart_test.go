package adminController

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ShowRoomzs/back-end-sub001/cart"
	"github.com/ShowRoomzs/back-end-sub001/repository"
	"github.com/ShowRoomzs/back-end-sub001/testutil"
	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"
)

func TestCartWorkbook(t *testing.T) {
	view := cart.CartView{
		Items: []cart.LineView{
			{CartID: 1, VariantID: 10, ProductName: "tee", OptionName: "S", Quantity: 2, SalePrice: 10000, SaleTotal: 20000},
		},
		Summary:  cart.Summary{SaleTotal: 20000, FinalTotal: 20000},
		Shipping: []cart.MarketShipping{{MarketID: 1, SaleTotal: 20000, DeliveryFee: 3000, Waived: true}},
	}

	file, err := cartWorkbook(view)
	if err != nil {
		t.Fatalf("workbook: %v", err)
	}
	if len(file.Sheets) != 2 {
		t.Fatalf("sheets = %d", len(file.Sheets))
	}

	rows := file.Sheets[0].Rows
	// header, one line, blank, five totals
	if len(rows) != 8 {
		t.Fatalf("rows = %d", len(rows))
	}
	if got := rows[1].Cells[4].Value; got != "tee" {
		t.Fatalf("product cell = %q", got)
	}
	if got := rows[7].Cells[0].Value; got != "FinalTotal" {
		t.Fatalf("last label = %q", got)
	}
	if got := rows[7].Cells[1].Value; got != "20000" {
		t.Fatalf("final total = %q", got)
	}
	if got := rows[7].Cells[2].Value; got != "20,000" {
		t.Fatalf("formatted final total = %q", got)
	}

	if got := len(file.Sheets[1].Rows); got != 2 {
		t.Fatalf("shipping rows = %d", got)
	}
}

func TestAdminCartRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.OpenDB(t)
	m := testutil.CreateMarket(t, db, "M1")
	p := testutil.CreateProduct(t, db, testutil.ProductSpec{MarketID: testutil.Uint(m.ID), Name: "tee", DeliveryFee: testutil.Int64(3000)})
	v := testutil.CreateVariant(t, db, testutil.VariantSpec{ProductID: p.ID, OptionName: "S", RegularPrice: 12000, SalePrice: 10000, Stock: 5})

	svc := cart.NewService(repository.NewUnitOfWork(db))
	if _, err := svc.AddCart(context.Background(), 9, v.ID, 2); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	r := gin.New()
	r.GET("/admin/user-cart/:user_id", GetUserCart(svc, zap.NewNop()))
	r.GET("/admin/user-cart/:user_id/export", ExportUserCartToExcel(svc, zap.NewNop()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/user-cart/abc", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/user-cart/9", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("view: status %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/user-cart/9/export", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("export: status %d", w.Code)
	}
	file, err := xlsx.OpenBinary(w.Body.Bytes())
	if err != nil {
		t.Fatalf("open exported workbook: %v", err)
	}
	if len(file.Sheets[0].Rows) < 2 {
		t.Fatalf("exported rows = %d", len(file.Sheets[0].Rows))
	}
}
