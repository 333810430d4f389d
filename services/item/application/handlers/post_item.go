package handlers

import (
	"net/http"

	"github.com/ghuser/inventory/pkg/auth"
	"github.com/ghuser/inventory/pkg/errhttp"
	"github.com/ghuser/inventory/pkg/httpx"
	"github.com/ghuser/inventory/pkg/logger"
	pkgvalidator "github.com/ghuser/inventory/pkg/validator"
	appsvcs "github.com/ghuser/inventory/services/item/application/services"
)

// PostItemHandler handles POST /items requests.
type PostItemHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewPostItemHandler returns a PostItemHandler backed by the given services.
func NewPostItemHandler(svc *appsvcs.Services, log logger.Logger) *PostItemHandler {
	return &PostItemHandler{svc: svc, log: log}
}

// Execute creates a new item.
//
//	@Summary		Create item
//	@Description	Creates an item owned by the caller's tenant. Name is trimmed (1-100 characters); quantity defaults to 0.
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateItemRequest	true	"Item creation request"
//	@Success		201		{object}	ItemResponse
//	@Failure		400		{object}	httpx.ErrorBody
//	@Failure		401		{object}	httpx.ErrorBody
//	@Failure		500		{object}	httpx.ErrorBody
//	@Router			/items [post]
func (h *PostItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	tenantID, err := auth.TenantIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	var req CreateItemRequest
	if issues := pkgvalidator.DecodeJSON(r.Body, &req); issues != nil {
		httpx.JSONIssues(w, http.StatusBadRequest, pkgvalidator.MsgInvalidBody, issues)
		return
	}

	in, issues := normalizeCreate(req)
	if len(issues) > 0 {
		httpx.JSONIssues(w, http.StatusBadRequest, pkgvalidator.MsgInvalidBody, issues)
		return
	}

	item, err := h.svc.Item.Create(r.Context(), tenantID, in.Name, in.Quantity)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toResponse(item))
}

func normalizeCreate(req CreateItemRequest) (createItemInput, []httpx.Issue) {
	var in createItemInput
	if req.Name != nil {
		in.Name = trim(*req.Name)
	}

	q, qIssue := parseQuantity(req.Quantity)
	if q != nil {
		in.Quantity = *q
	}

	issues := pkgvalidator.Issues(pkgvalidator.Validate(&in))
	if qIssue != nil {
		issues = append(issues, *qIssue)
	}
	return in, issues
}
