// Package identity keeps local User rows in sync with the external
// identity provider. Both the webhook handler and the auth middleware
// write users through this one service, so the two paths cannot diverge.
package identity

import (
	"errors"

	"github.com/thridhath-dev/brand---new-finance/internal/models"

	"gorm.io/gorm"
)

// Profile carries the fields a sync source knows about a user. Empty
// fields never overwrite stored values.
type Profile struct {
	ExternalID string
	Email      string
	FirstName  string
	LastName   string
	ImageURL   string
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// FindByExternalID returns the local user for an external identity, or
// gorm.ErrRecordNotFound.
func (s *Service) FindByExternalID(externalID string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("external_id = ?", externalID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Ensure upserts the local user keyed by the profile's external id:
// insert if absent, otherwise overwrite only the non-empty fields.
// Replaying the same profile is a no-op, so at-least-once webhook
// delivery and the lazy bootstrap are both safe.
func (s *Service) Ensure(p Profile) (*models.User, error) {
	if p.ExternalID == "" {
		return nil, errors.New("external id is required")
	}

	var user models.User
	err := s.db.Where("external_id = ?", p.ExternalID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			ExternalID: p.ExternalID,
			Email:      p.Email,
			FirstName:  p.FirstName,
			LastName:   p.LastName,
			ImageURL:   p.ImageURL,
		}
		if createErr := s.db.Create(&user).Error; createErr != nil {
			// lost a race against a concurrent notification for the
			// same id; the unique index held, re-read and fall through
			// to the update path
			if readErr := s.db.Where("external_id = ?", p.ExternalID).First(&user).Error; readErr != nil {
				return nil, createErr
			}
		} else {
			return &user, nil
		}
	} else if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if p.Email != "" {
		updates["email"] = p.Email
	}
	if p.FirstName != "" {
		updates["first_name"] = p.FirstName
	}
	if p.LastName != "" {
		updates["last_name"] = p.LastName
	}
	if p.ImageURL != "" {
		updates["image_url"] = p.ImageURL
	}
	if len(updates) > 0 {
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &user, nil
}

// Delete removes every local user for an external identity and returns
// how many rows matched. Zero matches is not an error.
func (s *Service) Delete(externalID string) (int64, error) {
	res := s.db.Where("external_id = ?", externalID).Delete(&models.User{})
	return res.RowsAffected, res.Error
}
