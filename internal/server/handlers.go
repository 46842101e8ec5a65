package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/pirouette/content/internal/bridge"
	"github.com/pirouette/content/internal/filestore"
	"github.com/pirouette/content/internal/registry"
	"github.com/pirouette/content/internal/schema"
	"github.com/pirouette/content/internal/service"
)

// Handler carries the HTTP handlers for the content API, the page and
// section resources, the editor bridge, and the section mappings.
type Handler struct {
	pages    *service.PageService
	sections *service.SectionService
	contents *service.ContentService
	mappings *registry.Registry
	hub      *bridge.Hub
	upgrader websocket.Upgrader
}

func NewHandler(pages *service.PageService, sections *service.SectionService, contents *service.ContentService, mappings *registry.Registry, hub *bridge.Hub) *Handler {
	return &Handler{
		pages:    pages,
		sections: sections,
		contents: contents,
		mappings: mappings,
		hub:      hub,
		upgrader: websocket.Upgrader{
			// cross-origin policy is enforced by the cors middleware
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Routes mounts every endpoint on a chi router.
func (h *Handler) Routes(r chi.Router) {
	// file-backed content API
	r.Post("/api/content/save", h.handleContentSave)
	r.Get("/api/content/load", h.handleContentLoad)
	r.Get("/api/content/versions", h.handleContentVersions)
	r.Get("/api/content/version", h.handleContentVersion)
	r.Delete("/api/content/delete", h.handleContentDelete)
	r.Get("/api/health", h.handleHealth)

	// page documents
	r.Get("/v1/pages/{slug}", h.handleGetPage)
	r.Put("/v1/pages/{slug}", h.handleSavePage)
	r.Delete("/v1/pages/{slug}", h.handleDeletePage)
	r.Get("/v1/pages/{slug}/versions", h.handleListPageVersions)
	r.Get("/v1/pages/{slug}/versions/{version}", h.handleGetPageVersion)
	r.Post("/v1/pages/{slug}/restore", h.handleRestorePageVersion)

	// section records
	r.Get("/v1/pages/{slug}/sections", h.handleListSections)
	r.Put("/v1/pages/{slug}/sections/{sectionID}", h.handleSaveSection)
	r.Delete("/v1/pages/{slug}/sections/{sectionID}", h.handleDeactivateSection)

	// editor bridge
	r.Get("/v1/bridge/{session}/page", h.handlePageSocket)
	r.Get("/v1/bridge/{session}/admin", h.handleAdminSocket)
	r.Post("/v1/bridge/{session}/navigate", h.handleBridgeNavigate)
	r.Get("/v1/bridge/{session}/snapshot", h.handleBridgeSnapshot)
	r.Post("/v1/bridge/{session}/overrides", h.handleBridgeApply)

	// section mappings
	r.Get("/v1/sections/mappings", h.handleListMappings)
	r.Get("/v1/sections/mappings/{id}", h.handleGetMapping)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("error writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"success": false, "error": message})
}

type contentSaveRequest struct {
	Schema  map[string]interface{} `json:"schema"`
	Author  string                 `json:"author"`
	Comment string                 `json:"comment"`
}

func (h *Handler) handleContentSave(w http.ResponseWriter, r *http.Request) {
	var req contentSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	version, timestamp, err := h.contents.SaveContent(req.Schema, req.Author, req.Comment)
	if err != nil {
		if errors.Is(err, service.ErrRouteMissing) {
			writeError(w, http.StatusBadRequest, "route is required")
			return
		}
		logrus.Errorf("error saving content: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save content")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"version":   version,
		"timestamp": timestamp,
	})
}

func (h *Handler) handleContentLoad(w http.ResponseWriter, r *http.Request) {
	route := r.URL.Query().Get("route")

	loaded, err := h.contents.LoadContent(route)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRouteMissing):
			writeError(w, http.StatusBadRequest, "route is required")
		case errors.Is(err, filestore.ErrNotFound):
			writeError(w, http.StatusNotFound, "content not found")
		default:
			logrus.Errorf("error loading content: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to load content")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"schema":  loaded,
	})
}

func (h *Handler) handleContentVersions(w http.ResponseWriter, r *http.Request) {
	route := r.URL.Query().Get("route")

	versions, err := h.contents.ListContentVersions(route)
	if err != nil {
		// still a JSON array for client compatibility
		logrus.Errorf("error listing versions: %v", err)
		writeJSON(w, http.StatusInternalServerError, []filestore.VersionRecord{})
		return
	}

	writeJSON(w, http.StatusOK, versions)
}

func (h *Handler) handleContentVersion(w http.ResponseWriter, r *http.Request) {
	route := r.URL.Query().Get("route")
	versionParam := r.URL.Query().Get("version")
	if route == "" || versionParam == "" {
		writeError(w, http.StatusBadRequest, "route and version are required")
		return
	}

	version, err := strconv.ParseInt(versionParam, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "version must be a number")
		return
	}

	loaded, err := h.contents.GetContentVersion(route, version)
	if err != nil {
		if errors.Is(err, filestore.ErrVersionNotFound) {
			writeError(w, http.StatusNotFound, "version not found")
			return
		}
		logrus.Errorf("error loading version: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load version")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"schema":  loaded,
	})
}

func (h *Handler) handleContentDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Route string `json:"route"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Route == "" {
		writeError(w, http.StatusBadRequest, "route is required")
		return
	}

	timestamp, err := h.contents.DeleteContent(req.Route)
	if err != nil {
		logrus.Errorf("error deleting content: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete content")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"timestamp": timestamp,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "OK",
		"timestamp": time.Now(),
	})
}

func (h *Handler) handleGetPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	clientID := r.URL.Query().Get("client_id")

	resolved, err := h.pages.GetPage(r.Context(), slug, clientID)
	if err != nil {
		if errors.Is(err, schema.ErrSlugNotRegistered) {
			writeError(w, http.StatusNotFound, "unknown page slug")
			return
		}
		logrus.Errorf("error resolving page: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to resolve page")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"slug":     resolved.Slug,
		"clientId": resolved.ClientID,
		"data":     resolved.Data,
		"version":  resolved.Version,
		"exists":   resolved.Exists,
	})
}

type savePageRequest struct {
	Data      map[string]interface{} `json:"data"`
	UpdatedBy string                 `json:"updatedBy"`
	Comment   string                 `json:"comment"`
}

func (h *Handler) handleSavePage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	clientID := r.URL.Query().Get("client_id")

	var req savePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resolved, err := h.pages.SavePage(r.Context(), slug, clientID, req.Data, req.UpdatedBy, req.Comment)
	if err != nil {
		var validation *schema.ValidationError
		switch {
		case errors.Is(err, schema.ErrSlugNotRegistered):
			writeError(w, http.StatusNotFound, "unknown page slug")
		case errors.As(err, &validation):
			writeError(w, http.StatusBadRequest, validation.Error())
		default:
			logrus.Errorf("error saving page: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to save page")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"slug":    resolved.Slug,
		"data":    resolved.Data,
		"version": resolved.Version,
		"exists":  resolved.Exists,
	})
}

func (h *Handler) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	clientID := r.URL.Query().Get("client_id")

	if err := h.pages.DeletePage(r.Context(), slug, clientID); err != nil {
		logrus.Errorf("error deleting page: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete page")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"timestamp": time.Now(),
	})
}

func (h *Handler) handleListPageVersions(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	clientID := r.URL.Query().Get("client_id")

	versions, err := h.pages.ListPageVersions(r.Context(), slug, clientID)
	if err != nil {
		if errors.Is(err, service.ErrPageNotFound) {
			writeError(w, http.StatusNotFound, "page not found")
			return
		}
		logrus.Errorf("error listing page versions: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list versions")
		return
	}

	writeJSON(w, http.StatusOK, versions)
}

func (h *Handler) handleGetPageVersion(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	clientID := r.URL.Query().Get("client_id")

	version, err := strconv.ParseInt(chi.URLParam(r, "version"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "version must be a number")
		return
	}

	data, err := h.pages.GetPageVersion(r.Context(), slug, clientID, version)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPageNotFound), errors.Is(err, service.ErrVersionNotFound):
			writeError(w, http.StatusNotFound, "version not found")
		default:
			logrus.Errorf("error loading page version: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to load version")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"version": version,
		"data":    data,
	})
}

func (h *Handler) handleRestorePageVersion(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	clientID := r.URL.Query().Get("client_id")

	var req struct {
		Version int64 `json:"version"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resolved, err := h.pages.RestorePageVersion(r.Context(), slug, clientID, req.Version)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPageNotFound), errors.Is(err, service.ErrVersionNotFound):
			writeError(w, http.StatusNotFound, "version not found")
		default:
			logrus.Errorf("error restoring page version: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to restore version")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"slug":    resolved.Slug,
		"data":    resolved.Data,
		"version": resolved.Version,
	})
}

func (h *Handler) handleListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.sections.ListSections(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		logrus.Errorf("error listing sections: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list sections")
		return
	}

	writeJSON(w, http.StatusOK, sections)
}

func (h *Handler) handleSaveSection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content    map[string]interface{} `json:"content"`
		OrderIndex int                    `json:"orderIndex"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	section := service.Section{
		PageID:     chi.URLParam(r, "slug"),
		SectionID:  chi.URLParam(r, "sectionID"),
		Content:    req.Content,
		OrderIndex: req.OrderIndex,
	}

	if err := h.sections.SaveSection(r.Context(), section); err != nil {
		logrus.Errorf("error saving section: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save section")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) handleDeactivateSection(w http.ResponseWriter, r *http.Request) {
	err := h.sections.DeactivateSection(r.Context(), chi.URLParam(r, "slug"), chi.URLParam(r, "sectionID"))
	if err != nil {
		if errors.Is(err, service.ErrSectionNotFound) {
			writeError(w, http.StatusNotFound, "section not found")
			return
		}
		logrus.Errorf("error deactivating section: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to deactivate section")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// handlePageSocket registers the embedded page of a bridge session. The
// first text frame carries the rendered HTML; the connection then joins
// the relay until it closes.
func (h *Handler) handlePageSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session")
	location := r.URL.Query().Get("location")

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Errorf("bridge page upgrade failed: %v", err)
		return
	}
	defer ws.Close()

	_, rendered, err := ws.ReadMessage()
	if err != nil {
		return
	}

	h.hub.JoinPage(sessionID, ws, string(rendered), location)
}

func (h *Handler) handleAdminSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session")

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Errorf("bridge admin upgrade failed: %v", err)
		return
	}
	defer ws.Close()

	h.hub.JoinAdmin(sessionID, ws)
}

func (h *Handler) handleBridgeNavigate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Location string `json:"location"`
		HTML     string `json:"html"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.hub.Navigate(chi.URLParam(r, "session"), req.Location, req.HTML); err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) handleBridgeSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.hub.Snapshot(chi.URLParam(r, "session"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) handleBridgeApply(w http.ResponseWriter, r *http.Request) {
	var overrides bridge.Overrides
	// a malformed body degrades to empty override maps
	_ = json.NewDecoder(r.Body).Decode(&overrides)
	overrides.Normalize()

	if err := h.hub.Apply(chi.URLParam(r, "session"), overrides); err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) handleListMappings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.mappings.All())
}

func (h *Handler) handleGetMapping(w http.ResponseWriter, r *http.Request) {
	mapping, ok := h.mappings.Lookup(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "mapping not found")
		return
	}

	writeJSON(w, http.StatusOK, mapping)
}
