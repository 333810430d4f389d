package errhttp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ghuser/inventory/pkg/auth"
	"github.com/ghuser/inventory/pkg/config"
	"github.com/ghuser/inventory/pkg/logger"
	identitydomain "github.com/ghuser/inventory/services/identity/domain"
	itemdomain "github.com/ghuser/inventory/services/item/domain"
)

func writeError(err error) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	WriteError(w, r, logger.Nop(), err)
	return w
}

func TestWriteError_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"ErrItemNotFound", itemdomain.ErrItemNotFound, http.StatusNotFound, MsgItemNotFound},
		{"wrapped ErrItemNotFound", fmt.Errorf("get item: %w", itemdomain.ErrItemNotFound), http.StatusNotFound, MsgItemNotFound},
		{"ErrEmptyPatch", itemdomain.ErrEmptyPatch, http.StatusBadRequest, MsgEmptyPatch},
		{"wrapped ErrInvalidItemName", fmt.Errorf("%w: too long", itemdomain.ErrInvalidItemName), http.StatusBadRequest, MsgInvalidBody},
		{"ErrInvalidQuantity", itemdomain.ErrInvalidQuantity, http.StatusBadRequest, MsgInvalidBody},
		{"ErrEmailAlreadyInUse", identitydomain.ErrEmailAlreadyInUse, http.StatusConflict, MsgEmailInUse},
		{"ErrInvalidCredentials", identitydomain.ErrInvalidCredentials, http.StatusUnauthorized, MsgInvalidCredentials},
		{"ErrIdentityNotFound", auth.ErrIdentityNotFound, http.StatusUnauthorized, MsgUnauthorized},
		{"unknown error", errors.New("something unexpected"), http.StatusInternalServerError, "Internal server error"},
		{"generic wrapped error", fmt.Errorf("context: %w", errors.New("db down")), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := writeError(tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("response body is not valid JSON: %v", err)
			}
			if body["message"] != tt.wantMsg {
				t.Fatalf("expected message %q, got %q", tt.wantMsg, body["message"])
			}
		})
	}
}

func TestWriteError_InternalDetailLoggedNotLeaked(t *testing.T) {
	var logs bytes.Buffer
	log := logger.NewWithWriter(&config.Config{LogLevel: "info"}, &logs)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	WriteError(w, r, log, errors.New("pq: relation items does not exist"))

	if strings.Contains(w.Body.String(), "relation") {
		t.Fatalf("internal detail leaked to client: %s", w.Body.String())
	}
	if !strings.Contains(logs.String(), "relation items does not exist") {
		t.Fatalf("expected internal detail in server log, got %s", logs.String())
	}
}

func TestWriteError_ContentType(t *testing.T) {
	w := writeError(itemdomain.ErrItemNotFound)

	ct := w.Header().Get("Content-Type")
	if !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected application/json content type, got %q", ct)
	}
}
