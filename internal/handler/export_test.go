package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/thridhath-dev/brand---new-finance/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func exportTestRouter(t *testing.T) (*gin.Engine, *gorm.DB, *models.User) {
	t.Helper()
	db := testDB(t)
	user := seedUser(t, db, "user_1")
	h := NewExportHandler(db)

	r := gin.New()
	r.GET("/api/export/csv", asUser(user), h.ExportCSV)
	r.GET("/api/export/xlsx", asUser(user), h.ExportXLSX)
	return r, db, user
}

func seedExportData(t *testing.T, db *gorm.DB, user *models.User) {
	t.Helper()
	cat := models.Category{UserID: user.ID, Name: "Food", Type: models.TypeExpense, Color: "#FF0000"}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	seed := []models.Transaction{
		{UserID: user.ID, Type: models.TypeExpense, AmountCents: 12345, CategoryID: &cat.ID,
			Description: "groceries", Date: time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)},
		{UserID: user.ID, Type: models.TypeIncome, AmountCents: 100000,
			Date: time.Date(2024, time.May, 3, 0, 0, 0, 0, time.UTC)},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed tx: %v", err)
		}
	}
}

func TestExportCSV(t *testing.T) {
	r, db, user := exportTestRouter(t)
	seedExportData(t, db, user)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/export/csv", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status: want 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type: got %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, ".csv") {
		t.Errorf("content disposition: got %q", cd)
	}

	body := w.Body.Bytes()
	bom := []byte{0xEF, 0xBB, 0xBF}
	if !bytes.HasPrefix(body, bom) {
		t.Error("missing UTF-8 BOM")
	}

	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(body, bom))).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	// header plus exactly one row per transaction
	if len(records) != 3 {
		t.Fatalf("want header + 2 rows, got %d records", len(records))
	}
	if got := strings.Join(records[0], ","); got != "Type,Category,Amount,Description,Date" {
		t.Errorf("header wrong: %q", got)
	}

	// newest first: the categorized expense, then the income
	want := [][]string{
		{"EXPENSE", "Food", "123.45", "groceries", "2024-05-10"},
		{"INCOME", "", "1000.00", "", "2024-05-03"},
	}
	for i, row := range want {
		for col, val := range row {
			if records[i+1][col] != val {
				t.Errorf("row %d col %d: want %q, got %q", i, col, val, records[i+1][col])
			}
		}
	}
}

func TestExportCSVEmpty(t *testing.T) {
	r, _, _ := exportTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/export/csv", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}

	bom := []byte{0xEF, 0xBB, 0xBF}
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(w.Body.Bytes(), bom))).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("empty account should export only the header, got %d records", len(records))
	}
}

func TestExportXLSX(t *testing.T) {
	r, db, user := exportTestRouter(t)
	seedExportData(t, db, user)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/export/xlsx", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status: want 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("content type: got %q", ct)
	}
	if w.Body.Len() == 0 {
		t.Fatal("empty xlsx body")
	}

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Transactions")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("want header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Type" || rows[0][4] != "Date" {
		t.Errorf("header wrong: %v", rows[0])
	}
	if rows[1][0] != "EXPENSE" || rows[1][1] != "Food" || rows[1][2] != "123.45" {
		t.Errorf("first row wrong: %v", rows[1])
	}
	if rows[2][0] != "INCOME" || rows[2][2] != "1000.00" {
		t.Errorf("second row wrong: %v", rows[2])
	}
}
