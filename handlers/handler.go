// Package handlers translates HTTP requests into service calls and service
// results into the {success, data|error, count} envelope.
package handlers

import (
	"net/http"
	"strconv"

	"restaurant-pos-api/events"
	"restaurant-pos-api/middleware"
	"restaurant-pos-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler holds everything the route handlers depend on
type Handler struct {
	Orders   *services.OrderService
	Reports  *services.ReportService
	Accounts *services.AccountService
	Catalog  *services.CatalogService
	Tokens   *middleware.TokenIssuer
	Broker   *events.Broker
	Log      *zap.Logger
}

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// list adds count for collection responses
func list(c *gin.Context, data interface{}, count int) {
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count, "data": data})
}

func failMsg(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

// fail maps a service error to a status code. Internal faults are logged
// with their cause and reported as "Server Error".
func (h *Handler) fail(c *gin.Context, err error) {
	var status int
	switch services.KindOf(err) {
	case services.KindValidation:
		status = http.StatusBadRequest
	case services.KindUnauthorized:
		status = http.StatusUnauthorized
	case services.KindNotFound:
		status = http.StatusNotFound
	case services.KindConflict:
		status = http.StatusConflict
	default:
		_ = c.Error(err)
		h.Log.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		)
		failMsg(c, http.StatusInternalServerError, "Server Error")
		return
	}
	failMsg(c, status, err.Error())
}

// bindFailed reports a malformed or invalid body
func bindFailed(c *gin.Context, err error) {
	failMsg(c, http.StatusBadRequest, err.Error())
}

// paramID parses :id; on failure it writes a 404 with notFound's message
func paramID(c *gin.Context, notFound error) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		failMsg(c, http.StatusNotFound, notFound.Error())
		return 0, false
	}
	return uint(id), true
}
