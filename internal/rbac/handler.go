package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mowems/rbac-system/internal/platform/httpx"
	"github.com/mowems/rbac-system/internal/shared"
)

// Handler wires the assignment endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers assignment routes; the caller has already applied the
// authentication gate.
func (h *Handler) MountRoutes(r chi.Router, gate Gate) {
	r.With(gate.Require(shared.PermAssignRole)).
		Post("/users/{userID}/assign-role", h.assignRole)
	r.With(gate.Require(shared.PermAssignPermission)).
		Post("/roles/{roleID}/assign-permission", h.assignPermission)
	r.With(gate.Require(shared.PermReadRoleAssignments)).
		Get("/users/{userID}/roles", h.userRoles)
	r.With(gate.Require(shared.PermReadRolePermissions)).
		Get("/roles/{roleID}/permissions", h.rolePermissions)
}

type assignRoleRequest struct {
	RoleID string `json:"roleId" validate:"required"`
}

type assignPermissionRequest struct {
	PermissionID string `json:"permissionId" validate:"required"`
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var req assignRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "roleId is required")
		return
	}
	if err := h.service.AssignRole(r.Context(), userID, req.RoleID); err != nil {
		h.logger.Warn("assign role", slog.String("user_id", userID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"userId": userID, "roleId": req.RoleID})
}

func (h *Handler) assignPermission(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "roleID")
	var req assignPermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "permissionId is required")
		return
	}
	if err := h.service.AssignPermission(r.Context(), roleID, req.PermissionID); err != nil {
		h.logger.Warn("assign permission", slog.String("role_id", roleID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"roleId": roleID, "permissionId": req.PermissionID})
}

func (h *Handler) userRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.UserRoles(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, roles)
}

func (h *Handler) rolePermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.RolePermissions(r.Context(), chi.URLParam(r, "roleID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, perms)
}
