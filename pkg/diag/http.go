package diag

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HandlerConfig configures the diagnostics HTTP handler.
type HandlerConfig struct {
	// Gatherer serves /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer

	// Logger receives stream errors.
	// Default: slog.Default().With("component", "diag").
	Logger *slog.Logger

	// WriteTimeout bounds each WebSocket write.
	// Default: 10s.
	WriteTimeout time.Duration

	// StreamBuffer is the per-connection event buffer.
	// Default: 64.
	StreamBuffer int

	// CheckOrigin validates WebSocket upgrade requests.
	// Default: same origin only (gorilla/websocket default).
	CheckOrigin func(r *http.Request) bool
}

// HandlerOption configures the diagnostics HTTP handler.
type HandlerOption func(*HandlerConfig)

// WithGatherer enables GET /metrics.
func WithGatherer(g prometheus.Gatherer) HandlerOption {
	return func(c *HandlerConfig) {
		c.Gatherer = g
	}
}

// WithHandlerLogger sets the handler's logger.
func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(c *HandlerConfig) {
		c.Logger = l
	}
}

// WithWriteTimeout sets the WebSocket write timeout.
func WithWriteTimeout(d time.Duration) HandlerOption {
	return func(c *HandlerConfig) {
		c.WriteTimeout = d
	}
}

// WithCheckOrigin sets the WebSocket origin check.
func WithCheckOrigin(fn func(r *http.Request) bool) HandlerOption {
	return func(c *HandlerConfig) {
		c.CheckOrigin = fn
	}
}

// nodeJSON is the wire form of a Record.
type nodeJSON struct {
	ID       string    `json:"id"`
	NodeID   uint64    `json:"nodeId"`
	Type     string    `json:"type"`
	Created  time.Time `json:"created"`
	Disposed bool      `json:"disposed"`
	Stack    string    `json:"stack,omitempty"`
}

type eventJSON struct {
	Kind EventKind `json:"kind"`
	At   time.Time `json:"at"`
	Node nodeJSON  `json:"node"`
}

func toJSON(rec Record) nodeJSON {
	return nodeJSON{
		ID:       rec.ID.String(),
		NodeID:   rec.NodeID,
		Type:     rec.Type,
		Created:  rec.Created,
		Disposed: rec.Node.IsDisposed(),
		Stack:    rec.Stack,
	}
}

type handler struct {
	reg      *Registry
	config   HandlerConfig
	upgrader websocket.Upgrader
}

// NewHandler returns a router serving the registry:
//
//	GET /         text dump
//	GET /types    live count per type (JSON)
//	GET /nodes    live records, ?type= filters (JSON)
//	GET /stream   creation and disposal events over WebSocket
//	GET /metrics  Prometheus metrics, when a gatherer is configured
func NewHandler(reg *Registry, opts ...HandlerOption) http.Handler {
	config := HandlerConfig{
		WriteTimeout: 10 * time.Second,
		StreamBuffer: 64,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		config.Logger = slog.Default().With("component", "diag")
	}

	h := &handler{
		reg:    reg,
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", h.dump)
	r.Get("/types", h.types)
	r.Get("/nodes", h.nodes)
	r.Get("/stream", h.stream)
	if config.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(config.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (h *handler) dump(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := h.reg.Dump(w); err != nil {
		h.config.Logger.Warn("dump write failed", "error", err)
	}
}

func (h *handler) types(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.reg.Types())
}

func (h *handler) nodes(w http.ResponseWriter, r *http.Request) {
	var records []Record
	if typ := r.URL.Query().Get("type"); typ != "" {
		records = h.reg.ByType(typ)
	} else {
		records = h.reg.All()
	}

	out := make([]nodeJSON, 0, len(records))
	for _, rec := range records {
		out = append(out, toJSON(rec))
	}
	h.writeJSON(w, out)
}

func (h *handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.config.Logger.Warn("json write failed", "error", err)
	}
}

// stream upgrades to WebSocket and writes one JSON text message per event
// until the client goes away.
func (h *handler) stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.config.Logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	events, stop := h.reg.Watch(ctx, h.config.StreamBuffer)
	defer stop()

	// Read loop detects the client closing the connection
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseNormalClosure) {
					h.config.Logger.Debug("stream read error", "error", err)
				}
				return
			}
		}
	}()

	for ev := range events {
		msg := eventJSON{Kind: ev.Kind, At: ev.At, Node: toJSON(ev.Record)}
		conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			h.config.Logger.Debug("stream write failed", "error", err)
			return
		}
	}

	conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
