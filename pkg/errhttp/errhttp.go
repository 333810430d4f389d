// Package errhttp maps domain sentinel errors to HTTP responses.
// Add a case to classify for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"

	"github.com/ghuser/inventory/pkg/auth"
	"github.com/ghuser/inventory/pkg/httpx"
	"github.com/ghuser/inventory/pkg/logger"
	identitydomain "github.com/ghuser/inventory/services/identity/domain"
	itemdomain "github.com/ghuser/inventory/services/item/domain"
)

// Client-facing messages.
const (
	MsgItemNotFound       = "Item not found"
	MsgInvalidBody        = "Invalid body"
	MsgEmptyPatch         = "Provide at least one field to update"
	MsgEmailInUse         = "Email already in use"
	MsgInvalidCredentials = "Invalid email or password"
	MsgUnauthorized       = "Unauthorized"
	MsgUserNotFound       = "User not found"
)

// WriteError maps err to a status and message and writes {"message": ...}.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Unrecognized errors become 500 "Internal server error"; the original error
// is logged and reported to Sentry but never sent to the client.
func WriteError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		}
	}
	httpx.JSONError(w, status, msg)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, itemdomain.ErrItemNotFound):
		return http.StatusNotFound, MsgItemNotFound
	case errors.Is(err, itemdomain.ErrEmptyPatch):
		return http.StatusBadRequest, MsgEmptyPatch
	case errors.Is(err, itemdomain.ErrInvalidItemName),
		errors.Is(err, itemdomain.ErrInvalidQuantity):
		return http.StatusBadRequest, MsgInvalidBody
	case errors.Is(err, identitydomain.ErrEmailAlreadyInUse):
		return http.StatusConflict, MsgEmailInUse
	case errors.Is(err, identitydomain.ErrInvalidCredentials):
		return http.StatusUnauthorized, MsgInvalidCredentials
	case errors.Is(err, identitydomain.ErrUserNotFound):
		return http.StatusNotFound, MsgUserNotFound
	case errors.Is(err, auth.ErrIdentityNotFound), errors.Is(err, auth.ErrNoSession):
		return http.StatusUnauthorized, MsgUnauthorized
	default:
		return http.StatusInternalServerError, httpx.MsgInternal
	}
}
