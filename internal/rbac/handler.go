package rbac

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/praetor-auth/praetor/internal/platform/httpx"
	"github.com/praetor-auth/praetor/internal/shared"
)

// Handler exposes the admin surface of the role/permission graph.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		rbac:      mw,
		validator: validator.New(),
	}
}

// MountRoutes registers the admin routes. Every endpoint requires the admin
// role on top of a valid bearer token.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAdmin)

		r.Get("/roles", h.listRoles)
		r.Post("/roles", h.createRole)
		r.Get("/roles/{roleID}", h.getRole)
		r.Put("/roles/{roleID}", h.setRolePermissions)
		r.Delete("/roles/{roleID}", h.deleteRole)

		r.Get("/permissions", h.listPermissions)
		r.Post("/permissions", h.createPermission)
		r.Get("/permissions/{permissionID}", h.getPermission)
		r.Delete("/permissions/{permissionID}", h.deletePermission)

		r.Post("/users/{userID}/roles/{roleID}", h.assignRole)
		r.Delete("/users/{userID}/roles/{roleID}", h.revokeRole)
		r.Get("/users/{userID}/permissions", h.userPermissions)
		r.Post("/users/{userID}/permissions", h.grantPermission)
		r.Delete("/users/{userID}/permissions", h.revokePermission)
	})
}

type permissionResponse struct {
	ID          int64  `json:"id"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Description string `json:"description,omitempty"`
}

type roleResponse struct {
	ID          int64                `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Permissions []permissionResponse `json:"permissions,omitempty"`
}

func toPermissionResponses(perms []Permission) []permissionResponse {
	out := make([]permissionResponse, len(perms))
	for i, p := range perms {
		out[i] = permissionResponse{ID: p.ID, Resource: p.Resource, Action: p.Action, Description: p.Description}
	}
	return out
}

func toRoleResponse(d RoleDetail) roleResponse {
	return roleResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Permissions: toPermissionResponses(d.Permissions),
	}
}

func pathID(r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]roleResponse, len(roles))
	for i, role := range roles {
		out[i] = roleResponse{ID: role.ID, Name: role.Name, Description: role.Description}
	}
	httpx.JSON(w, http.StatusOK, out)
}

type createRolePayload struct {
	Name          string  `json:"name" validate:"required,min=1,max=100"`
	Description   string  `json:"description" validate:"max=500"`
	PermissionIDs []int64 `json:"permission_ids"`
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var payload createRolePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	role, err := h.service.CreateRole(r.Context(), payload.Name, payload.Description, payload.PermissionIDs)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toRoleResponse(role))
}

func (h *Handler) getRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "roleID")
	if !ok {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	role, err := h.service.GetRole(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toRoleResponse(role))
}

type setRolePermissionsPayload struct {
	PermissionIDs []int64 `json:"permission_ids" validate:"required"`
}

func (h *Handler) setRolePermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "roleID")
	if !ok {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	var payload setRolePermissionsPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	role, err := h.service.SetRolePermissions(r.Context(), id, payload.PermissionIDs)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toRoleResponse(role))
}

func (h *Handler) deleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "roleID")
	if !ok {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	if err := h.service.DeleteRole(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "role deleted"})
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPermissionResponses(perms))
}

type createPermissionPayload struct {
	Resource    string `json:"resource" validate:"required,min=1,max=100"`
	Action      string `json:"action" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
}

func (h *Handler) createPermission(w http.ResponseWriter, r *http.Request) {
	var payload createPermissionPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	perm, err := h.service.CreatePermission(r.Context(), payload.Resource, payload.Action, payload.Description)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, permissionResponse{ID: perm.ID, Resource: perm.Resource, Action: perm.Action, Description: perm.Description})
}

func (h *Handler) getPermission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "permissionID")
	if !ok {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	perm, err := h.service.GetPermission(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, permissionResponse{ID: perm.ID, Resource: perm.Resource, Action: perm.Action, Description: perm.Description})
}

func (h *Handler) deletePermission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "permissionID")
	if !ok {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	if err := h.service.DeletePermission(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "permission deleted"})
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	userID, okUser := pathID(r, "userID")
	roleID, okRole := pathID(r, "roleID")
	if !okUser || !okRole {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	if err := h.service.AssignRole(r.Context(), userID, roleID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "role assigned"})
}

func (h *Handler) revokeRole(w http.ResponseWriter, r *http.Request) {
	userID, okUser := pathID(r, "userID")
	roleID, okRole := pathID(r, "roleID")
	if !okUser || !okRole {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	if err := h.service.RevokeRole(r.Context(), userID, roleID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "role revoked"})
}

func (h *Handler) userPermissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	perms, err := h.service.EffectivePermissions(r.Context(), userID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPermissionResponses(perms))
}

type directGrantPayload struct {
	Resource string `json:"resource" validate:"required,min=1,max=100"`
	Action   string `json:"action" validate:"required,min=1,max=100"`
}

func (h *Handler) grantPermission(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	var payload directGrantPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	if err := h.service.GrantPermission(r.Context(), userID, payload.Resource, payload.Action); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "permission granted"})
}

func (h *Handler) revokePermission(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	resource := r.URL.Query().Get("resource")
	action := r.URL.Query().Get("action")
	if resource == "" || action == "" {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", "resource and action query parameters required")
		return
	}
	if err := h.service.RevokePermission(r.Context(), userID, resource, action); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "permission revoked"})
}
