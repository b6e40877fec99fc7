package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/thridhath-dev/brand---new-finance/internal/identity"
	"github.com/thridhath-dev/brand---new-finance/internal/models"
	"github.com/thridhath-dev/brand---new-finance/internal/util"
	"github.com/thridhath-dev/brand---new-finance/internal/webhook"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// WebhookHandler receives signed change notifications from the identity
// provider and keeps local users in sync.
type WebhookHandler struct {
	DB       *gorm.DB
	Users    *identity.Service
	Verifier *webhook.Verifier
}

func NewWebhookHandler(db *gorm.DB, users *identity.Service, verifier *webhook.Verifier) *WebhookHandler {
	return &WebhookHandler{DB: db, Users: users, Verifier: verifier}
}

// identityEvent is the provider's envelope. The email may arrive in any
// of three shapes depending on the event source.
type identityEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
		EmailAddress string `json:"email_address"`
		Email        string `json:"email"`
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
		ImageURL     string `json:"image_url"`
	} `json:"data"`
}

func (e *identityEvent) email() string {
	if len(e.Data.EmailAddresses) > 0 && e.Data.EmailAddresses[0].EmailAddress != "" {
		return e.Data.EmailAddresses[0].EmailAddress
	}
	if e.Data.EmailAddress != "" {
		return e.Data.EmailAddress
	}
	return e.Data.Email
}

// HandleEvent verifies and applies one notification. Rejections happen
// before any state change; unknown event types are acknowledged and
// recorded as ignored.
func (h *WebhookHandler) HandleEvent(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil || len(payload) == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "empty payload")
		return
	}

	msgID := c.GetHeader(webhook.HeaderID)
	timestamp := c.GetHeader(webhook.HeaderTimestamp)
	signature := c.GetHeader(webhook.HeaderSignature)

	if err := h.Verifier.Verify(payload, msgID, timestamp, signature, time.Now()); err != nil {
		log.Printf("webhook rejected: %v (id=%q request=%v)", err, msgID, c.GetString("requestID"))
		if errors.Is(err, webhook.ErrMissingHeaders) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "missing signature headers")
		} else {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid signature")
		}
		return
	}

	var evt identityEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "malformed payload")
		return
	}

	switch evt.Type {
	case "user.created", "user.updated":
		if evt.Data.ID == "" {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "missing user id")
			return
		}
		_, err := h.Users.Ensure(identity.Profile{
			ExternalID: evt.Data.ID,
			Email:      evt.email(),
			FirstName:  evt.Data.FirstName,
			LastName:   evt.Data.LastName,
			ImageURL:   evt.Data.ImageURL,
		})
		if err != nil {
			log.Printf("webhook %s failed for %s: %v", evt.Type, evt.Data.ID, err)
			h.recordEvent(msgID, evt.Type, evt.Data.ID, models.WebhookFailed)
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "sync failed")
			return
		}
		h.recordEvent(msgID, evt.Type, evt.Data.ID, models.WebhookProcessed)

	case "user.deleted":
		if evt.Data.ID == "" {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "missing user id")
			return
		}
		n, err := h.Users.Delete(evt.Data.ID)
		if err != nil {
			log.Printf("webhook user.deleted failed for %s: %v", evt.Data.ID, err)
			h.recordEvent(msgID, evt.Type, evt.Data.ID, models.WebhookFailed)
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "sync failed")
			return
		}
		log.Printf("webhook user.deleted: %s (%d rows)", evt.Data.ID, n)
		h.recordEvent(msgID, evt.Type, evt.Data.ID, models.WebhookProcessed)

	default:
		// acknowledged but not acted on
		h.recordEvent(msgID, evt.Type, evt.Data.ID, models.WebhookIgnored)
	}

	util.Success(c, util.Response{"ok": true})
}

// recordEvent keeps the webhook-status trail. A failed write never
// fails the delivery, but it is logged so status gaps stay diagnosable.
func (h *WebhookHandler) recordEvent(msgID, eventType, externalID, status string) {
	if err := h.DB.Create(&models.WebhookEvent{
		MessageID:  msgID,
		EventType:  eventType,
		ExternalID: externalID,
		Status:     status,
	}).Error; err != nil {
		log.Printf("record webhook event %s (%s) failed: %v", msgID, eventType, err)
	}
}

// Status reports sync health: entity counts and the latest recorded
// envelopes.
func (h *WebhookHandler) Status(c *gin.Context) {
	var userCount, categoryCount, transactionCount, eventCount int64
	counts := []struct {
		model interface{}
		dst   *int64
	}{
		{&models.User{}, &userCount},
		{&models.Category{}, &categoryCount},
		{&models.Transaction{}, &transactionCount},
		{&models.WebhookEvent{}, &eventCount},
	}
	for _, cn := range counts {
		if err := h.DB.Model(cn.model).Count(cn.dst).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
			return
		}
	}

	var recent []models.WebhookEvent
	if err := h.DB.Order("id DESC").Limit(5).Find(&recent).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	events := make([]gin.H, 0, len(recent))
	for _, e := range recent {
		events = append(events, gin.H{
			"messageId":  e.MessageID,
			"type":       e.EventType,
			"externalId": e.ExternalID,
			"status":     e.Status,
			"receivedAt": e.CreatedAt,
		})
	}

	util.Success(c, util.Response{
		"users":        userCount,
		"categories":   categoryCount,
		"transactions": transactionCount,
		"events":       eventCount,
		"recentEvents": events,
	})
}
