package roles

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mowems/rbac-system/internal/platform/httpx"
	"github.com/mowems/rbac-system/internal/rbac"
	"github.com/mowems/rbac-system/internal/shared"
)

// Handler manages role CRUD endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers role routes behind their required permissions.
func (h *Handler) MountRoutes(r chi.Router, gate rbac.Gate) {
	r.With(gate.Require(shared.PermReadRole)).Get("/", h.list)
	r.With(gate.Require(shared.PermReadRole)).Get("/{id}", h.getByID)
	r.With(gate.Require(shared.PermWriteRole)).Post("/", h.create)
	r.With(gate.Require(shared.PermWriteRole)).Put("/{id}", h.update)
	r.With(gate.Require(shared.PermDeleteRole)).Delete("/{id}", h.remove)
}

type roleRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, roles)
}

func (h *Handler) getByID(w http.ResponseWriter, r *http.Request) {
	role, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	role, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		h.logger.Warn("create role", slog.String("name", req.Name), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, role)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	role, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "role deleted"})
}
