package handlers

import (
	"net/http"

	"github.com/ghuser/inventory/pkg/auth"
	"github.com/ghuser/inventory/pkg/errhttp"
	"github.com/ghuser/inventory/pkg/logger"
)

// LogoutHandler handles POST /auth/logout requests.
type LogoutHandler struct {
	sessions *auth.SessionManager
	log      logger.Logger
}

func NewLogoutHandler(sessions *auth.SessionManager, log logger.Logger) *LogoutHandler {
	return &LogoutHandler{sessions: sessions, log: log}
}

// Execute destroys the session and expires the cookie.
//
//	@Summary	Log out
//	@Tags		auth
//	@Success	204
//	@Failure	500	{object}	httpx.ErrorBody
//	@Router		/auth/logout [post]
func (h *LogoutHandler) Execute(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(w, r); err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
