package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/thridhath-dev/brand---new-finance/internal/identity"
	"github.com/thridhath-dev/brand---new-finance/internal/models"
	"github.com/thridhath-dev/brand---new-finance/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ExtractToken pulls the session token from the Authorization header,
// the query string (for download links) or the cookie, in that order.
func ExtractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	if token := c.Query("token"); token != "" {
		return token
	}

	if cookie, err := c.Cookie("bnf_token"); err == nil {
		return cookie
	}
	return ""
}

// Auth verifies the provider-issued session token and puts the current
// user into the context. A user with a valid token but no local row yet
// is bootstrapped here, the same upsert the webhook path uses.
func Auth(sessionSecret string, users *identity.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ExtractToken(c)
		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
			c.Abort()
			return
		}

		claims, err := util.ParseSessionToken(sessionSecret, tokenStr)
		if err != nil || claims.Subject == "" || claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "session expired, sign in again")
			c.Abort()
			return
		}

		user, err := users.FindByExternalID(claims.Subject)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// first authenticated access: the webhook may not have
			// arrived yet, bootstrap the local row from the claims
			user, err = users.Ensure(identity.Profile{
				ExternalID: claims.Subject,
				Email:      claims.Email,
				FirstName:  claims.FirstName,
				LastName:   claims.LastName,
			})
		}
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "load user failed")
			c.Abort()
			return
		}

		c.Set("currentUser", user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user placed by Auth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("currentUser")
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}
