package permissions

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mowems/rbac-system/internal/platform/httpx"
	"github.com/mowems/rbac-system/internal/rbac"
	"github.com/mowems/rbac-system/internal/shared"
)

// Handler manages permission CRUD endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers permission routes behind their required permissions.
func (h *Handler) MountRoutes(r chi.Router, gate rbac.Gate) {
	r.With(gate.Require(shared.PermReadPermission)).Get("/", h.list)
	r.With(gate.Require(shared.PermReadPermission)).Get("/{id}", h.getByID)
	r.With(gate.Require(shared.PermWritePermission)).Post("/", h.create)
	r.With(gate.Require(shared.PermWritePermission)).Put("/{id}", h.update)
	r.With(gate.Require(shared.PermDeletePermission)).Delete("/{id}", h.remove)
}

type permissionRequest struct {
	Action string `json:"action" validate:"required"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, perms)
}

func (h *Handler) getByID(w http.ResponseWriter, r *http.Request) {
	perm, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, perm)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req permissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "action is required")
		return
	}
	perm, err := h.service.Create(r.Context(), req.Action)
	if err != nil {
		h.logger.Warn("create permission", slog.String("action", req.Action), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, perm)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req permissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "action is required")
		return
	}
	perm, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req.Action)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, perm)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "permission deleted"})
}
