package handlers

import (
	"net/http"

	"restaurant-pos-api/models"
	"restaurant-pos-api/statemachine"

	"github.com/gin-gonic/gin"
)

// GetOrderFlow describes the usual order progression. Updates are not
// checked against it.
func (h *Handler) GetOrderFlow(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{
		"steps":          statemachine.Steps(),
		"terminalStates": statemachine.TerminalStates(),
		"transitions":    statemachine.Transitions(),
		"statuses":       models.AllOrderStatuses,
		"paymentMethods": models.AllPaymentMethods,
		"enforced":       false,
	})
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "Restaurant POS API",
		"version": "1.0.0",
	})
}
