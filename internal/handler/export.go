package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/thridhath-dev/brand---new-finance/internal/middleware"
	"github.com/thridhath-dev/brand---new-finance/internal/models"
	"github.com/thridhath-dev/brand---new-finance/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler streams the current user's transactions as CSV or XLSX.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

var exportHeaders = []string{"Type", "Category", "Amount", "Description", "Date"}

func (h *ExportHandler) loadTransactions(c *gin.Context) ([]models.Transaction, *models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return nil, nil, false
	}

	var txs []models.Transaction
	if err := h.DB.Where("user_id = ?", user.ID).
		Preload("Category").
		Order("date DESC, id DESC").
		Find(&txs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return nil, nil, false
	}
	return txs, user, true
}

func exportRow(t *models.Transaction) []string {
	categoryName := ""
	if t.Category != nil {
		categoryName = t.Category.Name
	}
	return []string{
		t.Type,
		categoryName,
		strconv.FormatFloat(centsToAmount(t.AmountCents), 'f', 2, 64),
		t.Description,
		t.Date.Format("2006-01-02"),
	}
}

// ExportCSV writes the transactions as a CSV attachment.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	txs, _, ok := h.loadTransactions(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	// UTF-8 BOM so Excel detects the encoding
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer.Write(exportHeaders)
	for i := range txs {
		writer.Write(exportRow(&txs[i]))
	}
}

// ExportXLSX writes the transactions as an XLSX attachment.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	txs, _, ok := h.loadTransactions(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	sheetName := "Transactions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create sheet failed")
		return
	}
	f.SetActiveSheet(index)

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for idx := range txs {
		row := idx + 2
		for col, value := range exportRow(&txs[idx]) {
			cell := fmt.Sprintf("%c%d", 'A'+col, row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 10)
	f.SetColWidth(sheetName, "B", "B", 15)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "D", "D", 30)
	f.SetColWidth(sheetName, "E", "E", 12)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
	}
}
