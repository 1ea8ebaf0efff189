package handlers

import (
	"net/http"

	"restaurant-pos-api/middleware"
	"restaurant-pos-api/models"
	"restaurant-pos-api/services"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account. Only customers get a token straight away;
// other roles wait for an admin to activate them.
func (h *Handler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	user, err := h.Accounts.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Registration successful. Your account is pending admin approval.",
			"user":    user,
		})
		return
	}
	h.sendToken(c, http.StatusCreated, user)
}

// Login authenticates a user and returns a JWT
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	user, err := h.Accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, user)
}

func (h *Handler) sendToken(c *gin.Context, status int, user *models.User) {
	token, err := h.Tokens.Generate(user)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(status, gin.H{"success": true, "token": token, "user": user})
}

// GetMe returns the authenticated user's profile
func (h *Handler) GetMe(c *gin.Context) {
	user, err := h.Accounts.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, user)
}

// UpdateMe changes the caller's own name, email or password
func (h *Handler) UpdateMe(c *gin.Context) {
	var req services.SelfPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	user, err := h.Accounts.UpdateSelf(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, user)
}
