package handlers

import (
	"net/http"

	"restaurant-pos-api/middleware"
	"restaurant-pos-api/models"
	"restaurant-pos-api/services"

	"github.com/gin-gonic/gin"
)

// ListUsers returns all users, optionally filtered by ?role=
func (h *Handler) ListUsers(c *gin.Context) {
	role := models.UserRole(c.Query("role"))
	if role != "" && !role.Valid() {
		failMsg(c, http.StatusBadRequest, "Invalid role '"+string(role)+"'")
		return
	}
	users, err := h.Accounts.ListUsers(c.Request.Context(), role)
	if err != nil {
		h.fail(c, err)
		return
	}
	list(c, users, len(users))
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req services.NewUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	user, err := h.Accounts.CreateUser(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, user)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, found := paramID(c, services.ErrUserNotFound)
	if !found {
		return
	}
	var req services.UserPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	user, err := h.Accounts.UpdateUser(c.Request.Context(), middleware.Caller(c), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, user)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, found := paramID(c, services.ErrUserNotFound)
	if !found {
		return
	}
	if err := h.Accounts.DeleteUser(c.Request.Context(), middleware.Caller(c), id); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{})
}
