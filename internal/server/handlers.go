package server

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"

	"github.com/mvp-joe/patternbox/internal/repackage"
	"github.com/mvp-joe/patternbox/internal/sandbox"
	"github.com/mvp-joe/patternbox/internal/source"
)

// Handler serves the HTTP routes.
type Handler struct {
	resolver   *source.Resolver
	repackager *repackage.Repackager
}

// NewHandler creates the route handlers.
func NewHandler(resolver *source.Resolver, repackager *repackage.Repackager) *Handler {
	return &Handler{resolver: resolver, repackager: repackager}
}

type errorBody struct {
	Error     string `json:"error"`
	Component string `json:"component,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Message   string `json:"message,omitempty"`
	Details   string `json:"details,omitempty"`
}

// HandleSource returns the raw source text for an identifier. Each failure
// kind maps to its own status so callers can tell them apart.
func (h *Handler) HandleSource(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("identifier")

	text, err := h.resolver.Resolve(r.Context(), id)
	if err != nil {
		switch kind := source.KindOf(err); kind {
		case source.KindUnknown, source.KindMissing:
			writeJSON(w, http.StatusNotFound, errorBody{
				Error:     "Component not found",
				Component: id,
				Reason:    kind.String(),
			})
		case source.KindUnavailable:
			writeJSON(w, http.StatusServiceUnavailable, errorBody{
				Error:     "Source unavailable",
				Message:   "Direct source access is disabled in this deployment",
				Component: id,
			})
		default:
			log.Printf("[server] failed to load source for %s: %v", id, err)
			writeJSON(w, http.StatusInternalServerError, errorBody{
				Error:   "Failed to load source code",
				Details: err.Error(),
			})
		}
		return
	}

	w.Header().Set("Content-Type", text.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text.Content))
}

// HandleList returns every registered identifier.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"components": h.resolver.Table().IDs(),
	})
}

type descriptorResponse struct {
	*sandbox.Descriptor
	DeclarationName string   `json:"declarationName"`
	Degraded        bool     `json:"degraded"`
	DroppedImports  []string `json:"droppedImports,omitempty"`
}

// HandleDescriptor previews the project a sandbox hand-off would create.
func (h *Handler) HandleDescriptor(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("identifier")

	d, snippet, err := h.repackager.Descriptor(r.Context(), id)
	if err != nil {
		log.Printf("[server] failed to assemble descriptor for %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:   "Failed to assemble sandbox project",
			Details: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, descriptorResponse{
		Descriptor:      d,
		DeclarationName: snippet.DeclarationName,
		Degraded:        snippet.Degraded,
		DroppedImports:  snippet.DroppedImports,
	})
}

// HandleSandbox answers with a page that posts the repackaged project to the
// sandbox from the visitor's browser.
func (h *Handler) HandleSandbox(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("identifier")

	var page bytes.Buffer
	if !h.repackager.WithSubmitter(&sandbox.FormPage{W: &page}).Repackage(r.Context(), id) {
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:     "Failed to open sandbox",
			Component: id,
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page.Bytes())
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"inFlight": h.repackager.InFlight(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[server] failed to encode response: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
