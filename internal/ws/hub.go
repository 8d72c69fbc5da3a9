package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	diag "github.com/coreman2200/funtimes-ledfader/internal/diagnostics"
	"github.com/coreman2200/funtimes-ledfader/internal/led"
)

const (
	writeWait   = 200 * time.Millisecond
	diagBacklog = 32
)

// Controls are the actions a control client may trigger. Nil fields are
// ignored.
type Controls struct {
	Advance       func()
	SetBrightness func(float64) error
}

// client is one websocket connection. mu serializes writes; a conn allows
// one writer at a time.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// Hub mirrors every frame sent to the strip to websocket clients. It is a
// led.WaveformTransmitter and is normally teed with the hardware.
type Hub struct {
	mu          sync.RWMutex
	clients     map[*client]bool
	diagClients map[*client]bool
	diags       *diag.Backlog
	frameID     uint64
	last        []string
	count       int
	driver      string
	startTime   time.Time

	Controls Controls
}

func NewHub(count int, driver string) *Hub {
	return &Hub{
		clients:     map[*client]bool{},
		diagClients: map[*client]bool{},
		diags:       diag.NewBacklog(diagBacklog),
		count:       count,
		driver:      driver,
		startTime:   time.Now(),
	}
}

// FrameMsg is what clients receive for each frame.
type FrameMsg struct {
	Frame uint64   `json:"frame"`
	RGB   []string `json:"rgb"`
}

type controlMsg struct {
	Advance    bool     `json:"advance"`
	Brightness *float64 `json:"brightness"`
}

func (h *Hub) Send(bits []bool, t led.BitTiming) error {
	colors, err := led.Frame{Bits: bits, Timing: t}.Colors()
	if err != nil {
		return err
	}
	hex := make([]string, len(colors))
	for i, c := range colors {
		hex[i] = c.String()
	}
	h.mu.Lock()
	h.frameID++
	h.last = hex
	msg := FrameMsg{Frame: h.frameID, RGB: hex}
	h.mu.Unlock()
	h.broadcast(msg)
	return nil
}

func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		_ = c.conn.Close()
		delete(h.clients, c)
	}
	for c := range h.diagClients {
		_ = c.conn.Close()
		delete(h.diagClients, c)
	}
	return nil
}

// Clients is the number of connected frame clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/frames", h.HandleFramesWS)
	mux.HandleFunc("/diag", h.HandleDiagWS)
	mux.HandleFunc("/control", h.HandleControlWS)
	mux.HandleFunc("/health", h.HandleHealth)
	return mux
}

// Serve listens on addr until ctx is done.
func (h *Hub) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: h.Handler()}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()
	log.Info().Str("addr", addr).Msg("preview listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return h.Close()
}

func (h *Hub) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn}
	h.mu.Lock()
	if h.last != nil {
		err = c.send(FrameMsg{Frame: h.frameID, RGB: h.last})
	}
	if err == nil {
		h.clients[c] = true
	}
	h.mu.Unlock()
	if err != nil {
		log.Debug().Err(err).Msg("websocket write")
		conn.Close()
		return
	}
	go h.readUntilClosed(c, h.clients)
}

// HandleDiagWS replays the diagnostic backlog and then streams new ones.
// Replay and registration share one critical section with Push.
func (h *Hub) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn}
	h.mu.Lock()
	for _, d := range h.diags.Items() {
		if err = c.send(d); err != nil {
			break
		}
	}
	if err == nil {
		h.diagClients[c] = true
	}
	h.mu.Unlock()
	if err != nil {
		log.Debug().Err(err).Msg("websocket write")
		conn.Close()
		return
	}
	go h.readUntilClosed(c, h.diagClients)
}

// readUntilClosed drains c until the peer goes away, then unregisters it
// from set.
func (h *Hub) readUntilClosed(c *client, set map[*client]bool) {
	defer h.drop(c, set)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) drop(c *client, set map[*client]bool) {
	h.mu.Lock()
	delete(set, c)
	h.mu.Unlock()
	c.conn.Close()
}

// Push records d and sends it to every diagnostics client.
func (h *Hub) Push(d diag.Diagnostic) {
	h.mu.Lock()
	h.diags.Add(d)
	conns := h.snapshot(h.diagClients)
	h.mu.Unlock()
	h.sendAll(conns, h.diagClients, d)
}

func (h *Hub) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg controlMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug().Err(err).Msg("bad control message")
			continue
		}
		h.applyControl(msg)
	}
}

func (h *Hub) applyControl(msg controlMsg) {
	if msg.Brightness != nil && h.Controls.SetBrightness != nil {
		if err := h.Controls.SetBrightness(*msg.Brightness); err != nil {
			log.Warn().Err(err).Msg("control brightness")
		}
	}
	if msg.Advance && h.Controls.Advance != nil {
		h.Controls.Advance()
	}
}

func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	resp := map[string]any{
		"frame_id": h.frameID,
		"uptime_s": time.Since(h.startTime).Seconds(),
		"count":    h.count,
		"driver":   h.driver,
		"clients":  len(h.clients),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Hub) broadcast(msg FrameMsg) {
	h.mu.RLock()
	conns := h.snapshot(h.clients)
	h.mu.RUnlock()
	h.sendAll(conns, h.clients, msg)
}

func (h *Hub) snapshot(set map[*client]bool) []*client {
	conns := make([]*client, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	return conns
}

// sendAll writes v to every conn and drops the ones that fail.
func (h *Hub) sendAll(conns []*client, set map[*client]bool, v any) {
	for _, c := range conns {
		if err := c.send(v); err != nil {
			log.Debug().Err(err).Msg("websocket write; dropping client")
			h.drop(c, set)
		}
	}
}
