package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/arenaclock/go/internal/clock"
	"github.com/mcdev12/arenaclock/go/internal/display"
)

// ClockProvider reads clock state.
type ClockProvider interface {
	Snapshot(side clock.Side) (clock.Snapshot, error)
}

// SurfaceProvider looks up display surfaces.
type SurfaceProvider interface {
	Lookup(id uuid.UUID) (display.Entry, error)
	List() []display.Entry
}

// SurfaceInfo describes a surface for the visual layer.
type SurfaceInfo struct {
	ID          string            `json:"id"`
	Side        string            `json:"side"`
	Name        string            `json:"name"`
	Placement   display.Placement `json:"placement"`
	Version     uint64            `json:"version"`
	NeedsUpdate bool              `json:"needs_update"`
	TextureURL  string            `json:"texture_url"`
}

type ClocksResponse struct {
	Clocks []clock.Snapshot `json:"clocks"`
}

type SurfacesResponse struct {
	Surfaces []SurfaceInfo `json:"surfaces"`
}

// StateHandler serves clock state and textures over HTTP.
type StateHandler struct {
	clocks   ClockProvider
	surfaces SurfaceProvider
}

func NewStateHandler(clocks ClockProvider, surfaces SurfaceProvider) *StateHandler {
	return &StateHandler{
		clocks:   clocks,
		surfaces: surfaces,
	}
}

// HandleGetClocks handles GET /api/clocks
func (h *StateHandler) HandleGetClocks(w http.ResponseWriter, r *http.Request) {
	resp := ClocksResponse{Clocks: make([]clock.Snapshot, 0, len(clock.Sides))}
	for _, side := range clock.Sides {
		snap, err := h.clocks.Snapshot(side)
		if err != nil {
			log.Error().Err(err).Str("side", side.String()).Msg("failed to read clock state")
			http.Error(w, "Failed to read clock state", http.StatusInternalServerError)
			return
		}
		resp.Clocks = append(resp.Clocks, snap)
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGetClock handles GET /api/clocks/{side}
func (h *StateHandler) HandleGetClock(w http.ResponseWriter, r *http.Request) {
	side, err := clock.ParseSide(r.PathValue("side"))
	if err != nil {
		http.Error(w, "side must be left or right", http.StatusBadRequest)
		return
	}
	snap, err := h.clocks.Snapshot(side)
	if err != nil {
		log.Error().Err(err).Str("side", side.String()).Msg("failed to read clock state")
		http.Error(w, "Failed to read clock state", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleListSurfaces handles GET /api/surfaces
func (h *StateHandler) HandleListSurfaces(w http.ResponseWriter, r *http.Request) {
	entries := h.surfaces.List()
	resp := SurfacesResponse{Surfaces: make([]SurfaceInfo, 0, len(entries))}
	for _, e := range entries {
		resp.Surfaces = append(resp.Surfaces, surfaceInfo(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGetTexture handles GET /api/surfaces/{id}/texture.png
func (h *StateHandler) HandleGetTexture(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid surface ID format", http.StatusBadRequest)
		return
	}

	entry, err := h.surfaces.Lookup(id)
	if errors.Is(err, display.ErrSurfaceNotFound) {
		http.Error(w, "Surface not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("surface_id", id.String()).Msg("failed to look up surface")
		http.Error(w, "Failed to look up surface", http.StatusInternalServerError)
		return
	}

	tex, ok := entry.Surface.Current()
	if !ok {
		http.Error(w, "Texture not rendered yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := tex.EncodePNG(w); err != nil {
		log.Error().Err(err).Str("surface_id", id.String()).Msg("failed to write texture")
	}
}

func (h *StateHandler) RegisterStateRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/clocks", h.HandleGetClocks)
	mux.HandleFunc("GET /api/clocks/{side}", h.HandleGetClock)
	mux.HandleFunc("GET /api/surfaces", h.HandleListSurfaces)
	mux.HandleFunc("GET /api/surfaces/{id}/texture.png", h.HandleGetTexture)
}

func surfaceInfo(e display.Entry) SurfaceInfo {
	s := e.Surface
	return SurfaceInfo{
		ID:          s.ID.String(),
		Side:        e.Label,
		Name:        s.Name,
		Placement:   s.Placement,
		Version:     s.Version(),
		NeedsUpdate: s.NeedsUpdate(),
		TextureURL:  TextureURL(s.ID),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
