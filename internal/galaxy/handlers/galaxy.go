package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"galaxy-server/internal/galaxy"
	apperrors "galaxy-server/internal/shared/errors"
	"galaxy-server/internal/shared/response"
)

const (
	maxRequestBytes  = 1 << 20 // 1 MB
	defaultPageLimit = 50
	maxPageLimit     = 200
)

type GalaxyHandler struct {
	service *galaxy.Service
}

func NewGalaxyHandler(service *galaxy.Service) *GalaxyHandler {
	return &GalaxyHandler{service: service}
}

func (h *GalaxyHandler) Preview(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "preview_galaxy")

	req, err := h.decodeRequest(w, r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	result, err := h.service.Preview(r.Context(), req)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, result)
}

func (h *GalaxyHandler) Create(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "create_galaxy")

	req, err := h.decodeRequest(w, r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	result, err := h.service.Create(r.Context(), req)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	w.Header().Set("Location", "/api/galaxies/"+result.Galaxy.ID)
	response.Success(w, http.StatusCreated, result)
}

func (h *GalaxyHandler) List(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_galaxies")

	limit, err := queryInt(r, "limit", defaultPageLimit)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	galaxies, err := h.service.ListGalaxies(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, galaxies)
}

func (h *GalaxyHandler) Get(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_galaxy")

	g, err := h.service.GetGalaxy(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, g)
}

func (h *GalaxyHandler) Bodies(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	logger := slog.With("handler", "get_bodies", "galaxy_id", id)

	bodies, err := h.service.GetBodies(r.Context(), id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		response.Success(w, http.StatusOK, bodies)
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="galaxy-%s.csv"`, id))
		w.WriteHeader(http.StatusOK)
		if err := galaxy.WriteCSV(w, bodies); err != nil {
			// Headers are already sent
			logger.Error("Failed to write csv", "error", err)
		}
	default:
		response.Error(w, r, logger, apperrors.Validationf("unsupported format %q", format))
	}
}

func (h *GalaxyHandler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_diagnostics")

	summary, err := h.service.GetDiagnostics(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, summary)
}

func (h *GalaxyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "delete_galaxy")

	if err := h.service.DeleteGalaxy(r.Context(), r.PathValue("id")); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusNoContent, nil)
}

// decodeRequest overlays the JSON body on the configured defaults. An empty
// body keeps every default.
func (h *GalaxyHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (galaxy.GenerateRequest, error) {
	req := h.service.DefaultRequest()

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, nil
		}
		return req, apperrors.WrapValidation("invalid JSON in request body", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return req, apperrors.Validation("request body must contain a single JSON object")
	}
	return req, nil
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.WrapValidation(fmt.Sprintf("invalid %s", name), err)
	}
	return v, nil
}
