package handler

import (
	"net/http"

	"github.com/thridhath-dev/brand---new-finance/internal/middleware"
	"github.com/thridhath-dev/brand---new-finance/internal/models"
	"github.com/thridhath-dev/brand---new-finance/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetMe returns the current user and their transactions, newest first.
func GetMe(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
			return
		}

		var txs []models.Transaction
		if err := db.Where("user_id = ?", user.ID).
			Preload("Category").
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
			"user": gin.H{
				"id":         user.ID,
				"externalId": user.ExternalID,
				"email":      user.Email,
				"firstName":  user.FirstName,
				"lastName":   user.LastName,
				"imageUrl":   user.ImageURL,
				"createdAt":  user.CreatedAt,
			},
			"transactions": items,
		})
	}
}

// AuthStatus reports whether the request carries a valid session token.
// Unlike the protected routes it never rejects.
func AuthStatus(sessionSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		externalID := ""
		if tokenStr := middleware.ExtractToken(c); tokenStr != "" {
			if claims, err := util.ParseSessionToken(sessionSecret, tokenStr); err == nil {
				externalID = claims.Subject
			}
		}

		util.Success(c, util.Response{
			"authenticated": externalID != "",
			"externalId":    externalID,
		})
	}
}
