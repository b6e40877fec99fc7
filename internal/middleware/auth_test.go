package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/thridhath-dev/brand---new-finance/internal/database"
	"github.com/thridhath-dev/brand---new-finance/internal/identity"
	"github.com/thridhath-dev/brand---new-finance/internal/models"
	"github.com/thridhath-dev/brand---new-finance/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "auth-test-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func sessionToken(t *testing.T, externalID string, ttl time.Duration, extra map[string]string) string {
	t.Helper()
	claims := &util.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   externalID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	if extra != nil {
		claims.Email = extra["email"]
		claims.FirstName = extra["first_name"]
		claims.LastName = extra["last_name"]
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func authTestRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.GET("/api/me", Auth(testSecret, identity.NewService(db)), func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"externalId": user.ExternalID})
	})
	return r
}

func get(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRejectsAnonymous(t *testing.T) {
	r := authTestRouter(testDB(t))
	if w := get(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: want 401, got %d", w.Code)
	}
}

func TestAuthRejectsBadTokens(t *testing.T) {
	db := testDB(t)
	r := authTestRouter(db)

	if w := get(r, "not-a-token"); w.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: want 401, got %d", w.Code)
	}

	expired := sessionToken(t, "user_1", -time.Hour, nil)
	if w := get(r, expired); w.Code != http.StatusUnauthorized {
		t.Errorf("expired token: want 401, got %d", w.Code)
	}

	// a valid token must not create users on the rejected paths
	var n int64
	if err := db.Model(&models.User{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("rejected requests created %d users", n)
	}
}

func TestAuthBootstrapsLocalUser(t *testing.T) {
	db := testDB(t)
	r := authTestRouter(db)

	token := sessionToken(t, "user_1", time.Hour, map[string]string{
		"email":      "ada@example.com",
		"first_name": "Ada",
	})
	if w := get(r, token); w.Code != http.StatusOK {
		t.Fatalf("first access: want 200, got %d (%s)", w.Code, w.Body.String())
	}

	var user models.User
	if err := db.Where("external_id = ?", "user_1").First(&user).Error; err != nil {
		t.Fatalf("user not bootstrapped: %v", err)
	}
	if user.Email != "ada@example.com" || user.FirstName != "Ada" {
		t.Errorf("claims not applied: %+v", user)
	}

	// second request reuses the row
	if w := get(r, token); w.Code != http.StatusOK {
		t.Fatalf("second access: %d", w.Code)
	}
	var n int64
	if err := db.Model(&models.User{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("want one user, got %d", n)
	}
}

func TestExtractTokenSources(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newCtx := func(req *http.Request) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = req
		return c
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	if got := ExtractToken(newCtx(req)); got != "header-token" {
		t.Errorf("header source: got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/?token=query-token", nil)
	if got := ExtractToken(newCtx(req)); got != "query-token" {
		t.Errorf("query source: got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "bnf_token", Value: "cookie-token"})
	if got := ExtractToken(newCtx(req)); got != "cookie-token" {
		t.Errorf("cookie source: got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	if got := ExtractToken(newCtx(req)); got != "" {
		t.Errorf("no source: got %q", got)
	}
}
