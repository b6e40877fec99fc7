package handler

import (
	"math"
	"net/http"
	"time"

	"github.com/thridhath-dev/brand---new-finance/internal/middleware"
	"github.com/thridhath-dev/brand---new-finance/internal/models"
	"github.com/thridhath-dev/brand---new-finance/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DashboardHandler serves the point-in-time financial summary.
type DashboardHandler struct {
	DB     *gorm.DB
	Recent int // how many recent transactions to include
}

func NewDashboardHandler(db *gorm.DB, recent int) *DashboardHandler {
	if recent <= 0 {
		recent = 5
	}
	return &DashboardHandler{DB: db, Recent: recent}
}

// summary holds the aggregates derived from one user's transactions.
// Monetary values stay in cents; only the two rates are rounded.
type summary struct {
	NetWorthCents       int64
	MonthlyIncomeCents  int64
	MonthlyExpenseCents int64
	BalanceCents        int64
	SavingsRate         int
	SavingsRateChange   int
}

// summarize partitions transactions into current-month, previous-month
// and lifetime buckets by calendar day and derives the dashboard
// figures. Current month is date >= first of this month; previous month
// is the closed interval [first, last] day of last month.
func summarize(txs []models.Transaction, now time.Time) summary {
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	startOfPrev := startOfMonth.AddDate(0, -1, 0)
	endOfPrev := startOfMonth.AddDate(0, 0, -1)

	var lifeIncome, lifeExpense int64
	var curIncome, curExpense int64
	var prevIncome, prevExpense int64

	for i := range txs {
		t := &txs[i]
		income := t.Type == models.TypeIncome

		if income {
			lifeIncome += t.AmountCents
		} else {
			lifeExpense += t.AmountCents
		}

		switch {
		case !t.Date.Before(startOfMonth):
			if income {
				curIncome += t.AmountCents
			} else {
				curExpense += t.AmountCents
			}
		case !t.Date.Before(startOfPrev) && !t.Date.After(endOfPrev):
			if income {
				prevIncome += t.AmountCents
			} else {
				prevExpense += t.AmountCents
			}
		}
	}

	rate := savingsRate(curIncome, curExpense)
	prevRate := savingsRate(prevIncome, prevExpense)

	return summary{
		NetWorthCents:       lifeIncome - lifeExpense,
		MonthlyIncomeCents:  curIncome,
		MonthlyExpenseCents: curExpense,
		BalanceCents:        curIncome - curExpense,
		SavingsRate:         int(math.Round(rate)),
		SavingsRateChange:   int(math.Round(rate - prevRate)),
	}
}

// savingsRate is the percentage of income retained after expenses, zero
// when there is no income.
func savingsRate(incomeCents, expenseCents int64) float64 {
	if incomeCents <= 0 {
		return 0
	}
	return float64(incomeCents-expenseCents) / float64(incomeCents) * 100
}

// GetSummary computes the dashboard for the current user.
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	var txs []models.Transaction
	if err := h.DB.Where("user_id = ?", user.ID).Find(&txs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	s := summarize(txs, time.Now().UTC())

	var recent []models.Transaction
	if err := h.DB.Where("user_id = ?", user.ID).
		Preload("Category").
		Order("date DESC, id DESC").
		Limit(h.Recent).
		Find(&recent).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	recentItems := make([]transactionResp, 0, len(recent))
	for i := range recent {
		recentItems = append(recentItems, toTransactionResp(&recent[i]))
	}

	util.Success(c, util.Response{
		"balance":            centsToAmount(s.BalanceCents),
		"monthlySpend":       centsToAmount(s.MonthlyExpenseCents),
		"savingsRate":        s.SavingsRate,
		"savingsRateChange":  s.SavingsRateChange,
		"netWorth":           centsToAmount(s.NetWorthCents),
		"monthlyIncome":      centsToAmount(s.MonthlyIncomeCents),
		"monthlyExpenses":    centsToAmount(s.MonthlyExpenseCents),
		"recentTransactions": recentItems,
	})
}
