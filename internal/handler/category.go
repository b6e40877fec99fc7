package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/thridhath-dev/brand---new-finance/internal/middleware"
	"github.com/thridhath-dev/brand---new-finance/internal/models"
	"github.com/thridhath-dev/brand---new-finance/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoryHandler serves the category endpoints.
type CategoryHandler struct {
	DB *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{DB: db}
}

type createCategoryReq struct {
	Name  string `json:"name" binding:"required,max=64"`
	Type  string `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Color string `json:"color"`
}

type categoryResp struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

func toCategoryResp(cat *models.Category) categoryResp {
	return categoryResp{
		ID:        cat.ID,
		Name:      cat.Name,
		Type:      cat.Type,
		Color:     cat.Color,
		CreatedAt: cat.CreatedAt,
	}
}

// CreateCategory adds a category for the current user. Its type tag is
// fixed from here on.
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	var req createCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "name is required")
		return
	}

	if req.Color == "" {
		req.Color = models.DefaultCategoryColor
	}
	if err := util.ValidateColor(req.Color); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid color, want #RRGGBB")
		return
	}

	category := models.Category{
		UserID: user.ID,
		Name:   req.Name,
		Type:   req.Type,
		Color:  req.Color,
	}
	if err := h.DB.Create(&category).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed, try again")
		return
	}

	util.Success(c, util.Response{
		"category": toCategoryResp(&category),
	})
}

// ListCategories returns the current user's categories, optionally
// filtered by ?type=INCOME|EXPENSE.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	q := h.DB.Where("user_id = ?", user.ID)
	if catType := c.Query("type"); models.ValidType(catType) {
		q = q.Where("type = ?", catType)
	}

	var categories []models.Category
	if err := q.Order("name ASC").Find(&categories).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	items := make([]categoryResp, 0, len(categories))
	for i := range categories {
		items = append(items, toCategoryResp(&categories[i]))
	}

	util.Success(c, util.Response{
		"categories": items,
	})
}
