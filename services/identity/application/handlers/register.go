package handlers

import (
	"net/http"

	"github.com/ghuser/inventory/pkg/errhttp"
	"github.com/ghuser/inventory/pkg/httpx"
	"github.com/ghuser/inventory/pkg/logger"
	pkgvalidator "github.com/ghuser/inventory/pkg/validator"
	appsvcs "github.com/ghuser/inventory/services/identity/application/services"
)

// RegisterHandler handles POST /register requests.
type RegisterHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

func NewRegisterHandler(svc *appsvcs.Services, log logger.Logger) *RegisterHandler {
	return &RegisterHandler{svc: svc, log: log}
}

// Execute creates a tenant and its first user. It does not sign the caller in.
//
//	@Summary		Register
//	@Description	Creates a workspace and its first user. Email is matched case-insensitively.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterRequest	true	"Registration request"
//	@Success		201		{object}	AccountResponse
//	@Failure		400		{object}	httpx.ErrorBody
//	@Failure		409		{object}	httpx.ErrorBody
//	@Failure		429		{object}	httpx.ErrorBody
//	@Failure		500		{object}	httpx.ErrorBody
//	@Router			/register [post]
func (h *RegisterHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if issues := pkgvalidator.DecodeJSON(r.Body, &req); issues != nil {
		httpx.JSONIssues(w, http.StatusBadRequest, pkgvalidator.MsgInvalidBody, issues)
		return
	}
	req.normalize()

	issues := pkgvalidator.Issues(pkgvalidator.Validate(&req))
	if is := passwordIssue(req.Password); is != nil {
		issues = append(issues, *is)
	}
	if len(issues) > 0 {
		httpx.JSONIssues(w, http.StatusBadRequest, pkgvalidator.MsgInvalidBody, issues)
		return
	}

	in := appsvcs.RegisterInput{Email: req.Email, Password: req.Password}
	if req.Name != nil {
		in.Name = *req.Name
	}
	user, err := h.svc.Identity.Register(r.Context(), in)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toAccount(user))
}
