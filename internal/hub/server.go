package hub

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/skillsync/skillsync/internal/activation"
)

// maxReadyWait caps a single ready poll over HTTP.
const maxReadyWait = 60 * time.Second

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	pongWait   = pingPeriod * 2
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Pages are served from the target origin, not from the hub.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Handler returns the hub's HTTP routes.
func (h *Hub) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/healthz", h.healthCheck)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/pages/ws", h.servePage)
		r.Get("/tabs", h.listTabs)
		r.Post("/tabs", h.createTab)
		r.Post("/tabs/{id}/activate", h.activateTab)
		r.Post("/tabs/{id}/messages", h.sendMessage)
		r.Get("/tabs/{id}/ready", h.awaitReady)
	})
	return r
}

func (h *Hub) healthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"tabs":   len(h.Tabs()),
	})
}

func (h *Hub) listTabs(w http.ResponseWriter, r *http.Request) {
	tabs, err := h.Query(r.Context(), r.URL.Query().Get("match"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tabs)
}

func (h *Hub) createTab(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "url is required"})
		return
	}
	tab, err := h.Create(r.Context(), req.URL)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, tab)
}

func (h *Hub) activateTab(w http.ResponseWriter, r *http.Request) {
	if err := h.Activate(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Hub) sendMessage(w http.ResponseWriter, r *http.Request) {
	var msg activation.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if msg.Action == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "action is required"})
		return
	}
	if err := h.Send(r.Context(), chi.URLParam(r, "id"), msg); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// awaitReady holds the request until the tab's page connects, the timeout
// query parameter elapses, or the client goes away.
func (h *Hub) awaitReady(w http.ResponseWriter, r *http.Request) {
	wait := maxReadyWait
	if v := r.URL.Query().Get("timeout"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid timeout"})
			return
		}
		wait = min(d, maxReadyWait)
	}

	ctx, cancel := context.WithTimeout(r.Context(), wait)
	defer cancel()

	err := h.AwaitReady(ctx, chi.URLParam(r, "id"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"ready": true})
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, errorBody{Error: "tab not ready"})
	default:
		writeError(w, err)
	}
}

// servePage upgrades a target page's connection. The first frame must be a
// ready message; after that the hub writes messages from the tab's outbox
// and reads until the page goes away.
func (h *Hub) servePage(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(h.cfg.HandshakeTimeout))
	var hello activation.Message
	if err := conn.ReadJSON(&hello); err != nil {
		h.logger.Warn("page handshake failed", zap.Error(err))
		return
	}
	if hello.Action != activation.ActionReady || hello.URL == "" {
		h.logger.Warn("page handshake rejected", zap.String("action", hello.Action))
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected ready"),
			time.Now().Add(writeWait))
		return
	}

	id, outbox := h.attach(hello)
	defer h.detach(id)
	h.logger.Info("page connected", zap.String("tab", id), zap.String("url", hello.URL))

	// Tell the page which tab it is.
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(activation.Message{Action: activation.ActionReady, Tab: id}); err != nil {
		return
	}

	done := make(chan struct{})
	go h.writePump(conn, id, outbox, done)
	defer close(done)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var msg activation.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("page read failed", zap.String("tab", id), zap.Error(err))
			}
			return
		}
		h.logger.Debug("page message", zap.String("tab", id), zap.String("action", msg.Action))
	}
}

func (h *Hub) writePump(conn *websocket.Conn, id string, outbox <-chan activation.Message, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-outbox:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Warn("page write failed", zap.String("tab", id), zap.Error(err))
				conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				conn.Close()
				return
			}
		case <-done:
			return
		}
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrUnknownTab):
		status = http.StatusNotFound
	case errors.Is(err, ErrTabNotConnected):
		status = http.StatusConflict
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
