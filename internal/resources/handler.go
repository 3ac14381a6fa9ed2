package resources

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/praetor-auth/praetor/internal/platform/httpx"
	"github.com/praetor-auth/praetor/internal/rbac"
)

// Handler serves the sample collections behind per-resource permission
// checks.
type Handler struct {
	rbac rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(rbac rbac.Middleware) *Handler {
	return &Handler{rbac: rbac}
}

// MountRoutes registers the protected resource routes. Each collection
// requires the matching "<resource>:read" permission.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequirePermission("documents", "read")).Get("/documents", h.listDocuments)
	r.With(h.rbac.RequirePermission("projects", "read")).Get("/projects", h.listProjects)
	r.With(h.rbac.RequirePermission("reports", "read")).Get("/reports", h.listReports)
}

func (h *Handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, sampleDocuments)
}

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, sampleProjects)
}

func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, sampleReports)
}
