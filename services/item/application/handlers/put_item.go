package handlers

import (
	"net/http"

	"github.com/ghuser/inventory/pkg/auth"
	"github.com/ghuser/inventory/pkg/errhttp"
	"github.com/ghuser/inventory/pkg/httpx"
	"github.com/ghuser/inventory/pkg/logger"
	pkgvalidator "github.com/ghuser/inventory/pkg/validator"
	appsvcs "github.com/ghuser/inventory/services/item/application/services"
	"github.com/ghuser/inventory/services/item/domain/models"
)

// PutItemHandler handles PUT /items/{id} requests.
type PutItemHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

func NewPutItemHandler(svc *appsvcs.Services, log logger.Logger) *PutItemHandler {
	return &PutItemHandler{svc: svc, log: log}
}

// Execute partially updates an item of the caller's tenant.
//
//	@Summary		Update item
//	@Description	Updates name and/or quantity in a single statement filtered by id and tenant
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Item ID"	format(uuid)
//	@Param			request	body		UpdateItemRequest	true	"Fields to change"
//	@Success		200		{object}	models.MutationResult
//	@Failure		400		{object}	httpx.ErrorBody
//	@Failure		401		{object}	httpx.ErrorBody
//	@Failure		404		{object}	httpx.ErrorBody
//	@Failure		500		{object}	httpx.ErrorBody
//	@Router			/items/{id} [put]
func (h *PutItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	tenantID, err := auth.TenantIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, MsgInvalidID)
		return
	}

	var req UpdateItemRequest
	if issues := pkgvalidator.DecodeJSON(r.Body, &req); issues != nil {
		httpx.JSONIssues(w, http.StatusBadRequest, pkgvalidator.MsgInvalidBody, issues)
		return
	}

	patch, issues := normalizeUpdate(req)
	if len(issues) > 0 {
		httpx.JSONIssues(w, http.StatusBadRequest, pkgvalidator.MsgInvalidBody, issues)
		return
	}

	res, err := h.svc.Item.Update(r.Context(), tenantID, id, patch)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	httpx.JSON(w, http.StatusOK, res)
}

func normalizeUpdate(req UpdateItemRequest) (models.ItemPatch, []httpx.Issue) {
	var in updateItemInput
	if req.Name != nil {
		n := trim(*req.Name)
		in.Name = &n
	}

	q, qIssue := parseQuantity(req.Quantity)
	in.Quantity = q

	issues := pkgvalidator.Issues(pkgvalidator.Validate(&in))
	if qIssue != nil {
		issues = append(issues, *qIssue)
	}
	if len(issues) > 0 {
		return models.ItemPatch{}, issues
	}

	var patch models.ItemPatch
	if in.Name != nil {
		name := models.ItemName(*in.Name)
		patch.Name = &name
	}
	patch.Quantity = in.Quantity
	return patch, nil
}
