package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Jenis kegagalan yang dikembalikan command handler ke caller sinkron.
// Kegagalan transport realtime tidak pernah masuk ke sini: broadcast
// adalah side effect best-effort, bukan bagian dari transaksi.
const (
	ErrKindValidation   = "validation"
	ErrKindNotFound     = "not_found"
	ErrKindInvalidState = "invalid_state"
	ErrKindConflict     = "conflict"
)

type AppError struct {
	Kind    string
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewValidationError(msg string) *AppError {
	return &AppError{Kind: ErrKindValidation, Message: msg}
}

func NewNotFoundError(msg string) *AppError {
	return &AppError{Kind: ErrKindNotFound, Message: msg}
}

func NewInvalidStateError(msg string) *AppError {
	return &AppError{Kind: ErrKindInvalidState, Message: msg}
}

func NewConflictError(msg string) *AppError {
	return &AppError{Kind: ErrKindConflict, Message: msg}
}

func (e *AppError) status() int {
	switch e.Kind {
	case ErrKindValidation:
		return http.StatusBadRequest
	case ErrKindNotFound:
		return http.StatusNotFound
	case ErrKindInvalidState:
		return http.StatusUnprocessableEntity
	case ErrKindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// RespondAppError memetakan AppError ke status HTTP-nya. Error lain
// dianggap kegagalan internal.
func RespondAppError(c *gin.Context, err error) {
	if appErr, ok := err.(*AppError); ok {
		RespondError(c, appErr.status(), appErr)
		return
	}
	RespondError(c, http.StatusInternalServerError, err)
}
