package handlers

import (
	"net/http"

	"github.com/ghuser/inventory/pkg/auth"
	"github.com/ghuser/inventory/pkg/errhttp"
	"github.com/ghuser/inventory/pkg/httpx"
	"github.com/ghuser/inventory/pkg/logger"
	pkgvalidator "github.com/ghuser/inventory/pkg/validator"
	appsvcs "github.com/ghuser/inventory/services/identity/application/services"
)

// LoginHandler handles POST /auth/login requests.
type LoginHandler struct {
	svc      *appsvcs.Services
	sessions *auth.SessionManager
	log      logger.Logger
}

func NewLoginHandler(svc *appsvcs.Services, sessions *auth.SessionManager, log logger.Logger) *LoginHandler {
	return &LoginHandler{svc: svc, sessions: sessions, log: log}
}

// Execute verifies credentials and issues a fresh session cookie.
//
//	@Summary		Log in
//	@Description	Unknown emails and wrong passwords return the same 401
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	AccountResponse
//	@Failure		400		{object}	httpx.ErrorBody
//	@Failure		401		{object}	httpx.ErrorBody
//	@Failure		429		{object}	httpx.ErrorBody
//	@Failure		500		{object}	httpx.ErrorBody
//	@Router			/auth/login [post]
func (h *LoginHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[LoginRequest](w, r)
	if !ok {
		return
	}

	user, err := h.svc.Identity.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	id := auth.Identity{UserID: user.ID, Email: user.Email, TenantID: user.TenantID}
	if err := h.sessions.Start(w, r, id); err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	h.log.InfoContext(r.Context(), "user logged in", "user_id", user.ID, "tenant_id", user.TenantID)
	httpx.JSON(w, http.StatusOK, toAccount(user))
}
