package handlers

import (
	"net/http"
	"strconv"

	"restaurant-pos-api/services"

	"github.com/gin-gonic/gin"
)

// ── Categories ──────────────────────────────────────────────────────────────

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	list(c, categories, len(categories))
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req services.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	category, err := h.Catalog.CreateCategory(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, category)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, found := paramID(c, services.ErrCategoryNotFound)
	if !found {
		return
	}
	var req services.CategoryPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	category, err := h.Catalog.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, category)
}

// DeleteCategory leaves the category's menu items in place
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, found := paramID(c, services.ErrCategoryNotFound)
	if !found {
		return
	}
	if err := h.Catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{})
}

// ── Menu items ──────────────────────────────────────────────────────────────

// ListMenuItems is public; ?category=<id> narrows to one category
func (h *Handler) ListMenuItems(c *gin.Context) {
	var categoryID uint
	if raw := c.Query("category"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			failMsg(c, http.StatusBadRequest, "Invalid category '"+raw+"'")
			return
		}
		categoryID = uint(id)
	}
	items, err := h.Catalog.ListMenuItems(c.Request.Context(), categoryID)
	if err != nil {
		h.fail(c, err)
		return
	}
	list(c, items, len(items))
}

func (h *Handler) CreateMenuItem(c *gin.Context) {
	var req services.MenuItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	item, err := h.Catalog.CreateMenuItem(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, item)
}

func (h *Handler) UpdateMenuItem(c *gin.Context) {
	id, found := paramID(c, services.ErrMenuItemNotFound)
	if !found {
		return
	}
	var req services.MenuItemPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	item, err := h.Catalog.UpdateMenuItem(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, item)
}

func (h *Handler) DeleteMenuItem(c *gin.Context) {
	id, found := paramID(c, services.ErrMenuItemNotFound)
	if !found {
		return
	}
	if err := h.Catalog.DeleteMenuItem(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{})
}
