package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/thridhath-dev/brand---new-finance/internal/middleware"
	"github.com/thridhath-dev/brand---new-finance/internal/models"
	"github.com/thridhath-dev/brand---new-finance/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TransactionHandler serves the transaction endpoints.
type TransactionHandler struct {
	DB *gorm.DB
}

func NewTransactionHandler(db *gorm.DB) *TransactionHandler {
	return &TransactionHandler{DB: db}
}

// ---------- request/response shapes ----------

type createTransactionReq struct {
	Amount      *float64 `json:"amount" binding:"required"`
	Type        string   `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Description string   `json:"description" binding:"max=255"`
	Date        string   `json:"date"`
	CategoryID  *uint    `json:"categoryId"`
}

type transactionResp struct {
	ID          uint          `json:"id"`
	Type        string        `json:"type"`
	Amount      float64       `json:"amount"`
	AmountCents int64         `json:"amountCents"`
	Description string        `json:"description"`
	Date        string        `json:"date"`
	Category    *categoryResp `json:"category,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// ---------- helpers ----------

func toCents(amount float64) int64 {
	return int64(amount*100 + 0.5)
}

func centsToAmount(cents int64) float64 {
	return float64(cents) / 100.0
}

// parseTxDate accepts the formats clients actually send and normalizes
// to midnight UTC (aggregation works at day granularity). Empty means
// today.
func parseTxDate(s string) (time.Time, error) {
	day := time.Now().UTC()
	if s != "" {
		layouts := []string{
			time.RFC3339,
			"2006-01-02T15:04:05",
			"2006-01-02",
		}
		parsed := false
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				day = t
				parsed = true
				break
			}
		}
		if !parsed {
			return time.Time{}, errors.New("invalid date")
		}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC), nil
}

func toTransactionResp(t *models.Transaction) transactionResp {
	resp := transactionResp{
		ID:          t.ID,
		Type:        t.Type,
		Amount:      centsToAmount(t.AmountCents),
		AmountCents: t.AmountCents,
		Description: t.Description,
		Date:        t.Date.Format("2006-01-02"),
		CreatedAt:   t.CreatedAt,
	}
	if t.Category != nil {
		cr := toCategoryResp(t.Category)
		resp.Category = &cr
	}
	return resp
}

// ---------- endpoints ----------

// CreateTransaction records an income or expense for the current user.
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	var req createTransactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	if err := util.ValidateAmount(*req.Amount); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "amount must be a positive number")
		return
	}

	date, err := parseTxDate(req.Date)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid date, want YYYY-MM-DD")
		return
	}

	// a linked category must exist, belong to the caller and carry the
	// same type tag
	var category *models.Category
	if req.CategoryID != nil {
		var cat models.Category
		if err := h.DB.Where("id = ? AND user_id = ?", *req.CategoryID, user.ID).
			First(&cat).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "load category failed")
			}
			return
		}
		if cat.Type != req.Type {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "category type does not match transaction type")
			return
		}
		category = &cat
	}

	tx := models.Transaction{
		UserID:      user.ID,
		CategoryID:  req.CategoryID,
		Type:        req.Type,
		AmountCents: toCents(*req.Amount),
		Description: req.Description,
		Date:        date,
	}
	if err := h.DB.Create(&tx).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed, try again")
		return
	}
	tx.Category = category

	util.Success(c, util.Response{
		"transaction": toTransactionResp(&tx),
	})
}

// ListTransactions returns the current user's transactions, newest
// first, with their category. ?type=INCOME|EXPENSE filters.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	q := h.DB.Where("user_id = ?", user.ID)
	if txType := c.Query("type"); models.ValidType(txType) {
		q = q.Where("type = ?", txType)
	}

	var txs []models.Transaction
	if err := q.Preload("Category").
		Order("date DESC, id DESC").
		Find(&txs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	items := make([]transactionResp, 0, len(txs))
	for i := range txs {
		items = append(items, toTransactionResp(&txs[i]))
	}

	util.Success(c, util.Response{
		"transactions": items,
	})
}
