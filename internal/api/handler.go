package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/galzzz/drops-exporter/internal/biz/domain"
	"github.com/galzzz/drops-exporter/internal/biz/usecase"
)

// Server is the local HTTP API the host pushes game events to. It also
// serves whitelist and drop status for drops-mcp.
type Server struct {
	plugin  *usecase.PluginUsecase
	history *usecase.HistoryUsecase // optional
	logger  *slog.Logger

	server *http.Server
	port   int
}

// WhitelistResponse describes the current snapshot
type WhitelistResponse struct {
	Items      []string `json:"items"`
	Count      int      `json:"count"`
	Unique     int      `json:"unique"`
	UpdatedAt  string   `json:"updated_at,omitempty"`
	LoadedAt   string   `json:"loaded_at,omitempty"`
	LoadedAgo  string   `json:"loaded_ago"`
	Configured bool     `json:"endpoint_configured"`
}

// RefreshResponse is the outcome of a synchronous refresh
type RefreshResponse struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

// DropResponse is one matched drop
type DropResponse struct {
	ID         string `json:"id"`
	Item       string `json:"item"`
	Quantity   int    `json:"quantity"`
	MatchedAt  string `json:"matched_at"`
	MatchedAgo string `json:"matched_ago"`
	Status     string `json:"status"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ItemSpawnedResponse reports whether a spawned item matched the whitelist
type ItemSpawnedResponse struct {
	Matched bool `json:"matched"`
}

// NewServer creates a new API server
func NewServer(plugin *usecase.PluginUsecase, history *usecase.HistoryUsecase, port int, logger *slog.Logger) *Server {
	return &Server{
		plugin:  plugin,
		history: history,
		logger:  logger.With("component", "API"),
		port:    port,
	}
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Host events
	mux.HandleFunc("/api/events/game-state", s.handleGameState)
	mux.HandleFunc("/api/events/item-spawned", s.handleItemSpawned)

	// Whitelist
	mux.HandleFunc("/api/whitelist", s.handleWhitelist)
	mux.HandleFunc("/api/whitelist/refresh", s.handleWhitelistRefresh)

	// Drop history
	mux.HandleFunc("/api/drops", s.handleDrops)

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return mux
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info("starting HTTP server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// GetPort returns the server port
func (s *Server) GetPort() int {
	return s.port
}

// ============ Event Handlers ============

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var event domain.GameStateChanged
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	event.State = domain.GameState(strings.ToUpper(strings.TrimSpace(string(event.State))))
	if event.State == "" {
		http.Error(w, "state is required", http.StatusBadRequest)
		return
	}

	s.plugin.OnGameStateChanged(event)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleItemSpawned(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var event domain.ItemSpawned
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if event.ItemID <= 0 && strings.TrimSpace(event.ItemName) == "" {
		http.Error(w, "item_id or item_name is required", http.StatusBadRequest)
		return
	}

	matched := s.plugin.OnItemSpawned(event)
	s.writeJSONStatus(w, http.StatusAccepted, ItemSpawnedResponse{Matched: matched})
}

// ============ Whitelist Handlers ============

func (s *Server) handleWhitelist(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := s.plugin.Snapshot()
	resp := WhitelistResponse{
		Items:      snap.Items(),
		Count:      snap.Count(),
		Unique:     snap.SetSize(),
		UpdatedAt:  snap.UpdatedAt(),
		LoadedAgo:  "never",
		Configured: strings.TrimSpace(s.plugin.EndpointURL()) != "",
	}
	if loaded := snap.LoadedAt(); !loaded.IsZero() {
		resp.LoadedAt = loaded.Format(time.RFC3339)
		resp.LoadedAgo = humanize.Time(loaded)
	}
	s.writeJSON(w, resp)
}

func (s *Server) handleWhitelistRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap, err := s.plugin.RefreshNow(r.Context())
	if err != nil {
		s.writeJSON(w, RefreshResponse{
			Success: false,
			Count:   s.plugin.Snapshot().Count(),
			Error:   err.Error(),
			Kind:    string(domain.ErrorKind(err)),
		})
		return
	}
	s.writeJSON(w, RefreshResponse{Success: true, Count: snap.Count()})
}

// ============ Drop Handlers ============

func (s *Server) handleDrops(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.history == nil {
		http.Error(w, "drop history not available", http.StatusServiceUnavailable)
		return
	}

	limit := 0
	if val := r.URL.Query().Get("limit"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	records, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	drops := make([]DropResponse, len(records))
	for i, rec := range records {
		drops[i] = ConvertDrop(rec)
	}
	s.writeJSON(w, map[string]interface{}{"drops": drops})
}

// ============ Helpers ============

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	s.writeJSONStatus(w, http.StatusOK, data)
}

func (s *Server) writeJSONStatus(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// ConvertDrop converts domain.DropRecord to api.DropResponse
func ConvertDrop(rec *domain.DropRecord) DropResponse {
	return DropResponse{
		ID:         rec.ID,
		Item:       rec.ItemName,
		Quantity:   rec.Quantity,
		MatchedAt:  rec.MatchedAt.Format(time.RFC3339),
		MatchedAgo: humanize.Time(rec.MatchedAt),
		Status:     string(rec.Status),
		StatusCode: rec.StatusCode,
		Error:      rec.Error,
	}
}
