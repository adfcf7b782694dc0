package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/chitchat/internal/database"
	"github.com/thereayou/chitchat/internal/services"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, database.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrNotMember), errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, database.ErrNotFound), errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, database.ErrConflict), errors.Is(err, services.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, database.ErrTransient):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError ответ с кодом по таксономии ошибок; детали 5xx наружу не отдаются
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		msg = http.StatusText(status)
	}
	c.JSON(status, gin.H{"error": msg})
}

// respondOutcome {"ok": true} при успехе, иначе ошибка из причины
func respondOutcome(c *gin.Context, out database.Outcome) {
	if out.OK {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}
	respondError(c, out.Err())
}
