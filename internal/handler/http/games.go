package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Es-saiydy/webService/internal/games"
	"github.com/Es-saiydy/webService/pkg/httputil"
)

// GamesHandler proxies the free-to-play games catalog.
type GamesHandler struct {
	client *games.Client
	logger *slog.Logger
}

// NewGamesHandler creates a new GamesHandler.
func NewGamesHandler(client *games.Client, logger *slog.Logger) *GamesHandler {
	return &GamesHandler{client: client, logger: logger}
}

// ListGames handles GET /f2p-games
// @Summary List free-to-play games
// @Description Proxies the upstream games catalog. The upstream body is
// @Description served as-is.
// @Tags games
// @Produce json
// @Success 200 {array} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /f2p-games [get]
func (h *GamesHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	body, err := h.client.ListGames(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	writeRawJSON(w, body)
}

// GetGame handles GET /f2p-games/{id}
// @Summary Get a free-to-play game by ID
// @Tags games
// @Produce json
// @Param id path int true "Game ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /f2p-games/{id} [get]
func (h *GamesHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	body, err := h.client.GetGame(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	writeRawJSON(w, body)
}

// writeRawJSON writes an upstream JSON body without re-encoding it.
func writeRawJSON(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
