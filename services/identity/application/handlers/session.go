package handlers

import (
	"net/http"

	"github.com/ghuser/inventory/pkg/auth"
	"github.com/ghuser/inventory/pkg/errhttp"
	"github.com/ghuser/inventory/pkg/httpx"
	"github.com/ghuser/inventory/pkg/logger"
)

// SessionHandler handles GET /auth/session requests.
type SessionHandler struct {
	sessions *auth.SessionManager
	log      logger.Logger
}

func NewSessionHandler(sessions *auth.SessionManager, log logger.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, log: log}
}

// Execute returns the signed-in identity.
//
//	@Summary	Current session
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	auth.Identity
//	@Failure	401	{object}	httpx.ErrorBody
//	@Router		/auth/session [get]
func (h *SessionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := h.sessions.Identity(r)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, id)
}
