package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devstore/sales-backend/internal/domain"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// RespondDomainError maps domain error codes onto HTTP statuses: bad input
// to 400, missing aggregates to 404, state/uniqueness conflicts to 409.
func RespondDomainError(c *gin.Context, err error) {
	switch domain.CodeOf(err) {
	case domain.CodeInvalidArgument:
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
	case domain.CodeValidation:
		RespondError(c, http.StatusBadRequest, "validation_failed", err)
	case domain.CodeNotFound:
		RespondError(c, http.StatusNotFound, "not_found", err)
	case domain.CodeInvalidState:
		RespondError(c, http.StatusConflict, "invalid_state", err)
	case domain.CodeConflict:
		RespondError(c, http.StatusConflict, "conflict", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
