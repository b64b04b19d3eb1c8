// Package preview provides headless transports: a websocket hub that
// broadcasts every rendered frame to browser clients, and a console sink
// painting channel 0 as a row of ANSI color cells. Both implement
// ws281x.Transport, so a program can swap them in for the hardware
// transports without touching its render loop.
package preview

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	ws281x "github.com/coreman2200/funtimes-ws281x"
)

type channelPayload struct {
	Pixels int    `json:"pixels"`
	Colors int    `json:"colors"`
	Data   []byte `json:"data"` // wire-ordered component bytes
}

type framePayload struct {
	Frame    uint64           `json:"frame"`
	Channels []channelPayload `json:"channels"`
}

// Web serves rendered frames over a websocket at /frames.
type Web struct {
	addr string

	mu      sync.Mutex
	cfg     ws281x.TransportConfig
	srv     *http.Server
	clients map[*websocket.Conn]bool
	frameID uint64
	up      bool
}

// NewWeb prepares a web preview listening on addr, e.g. ":8080".
func NewWeb(addr string) *Web {
	return &Web{addr: addr, clients: map[*websocket.Conn]bool{}}
}

func (w *Web) Init(cfg ws281x.TransportConfig) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.up {
		return fmt.Errorf("%w: transport already initialized", ws281x.ErrInvalidConfiguration)
	}
	w.cfg = cfg
	mux := http.NewServeMux()
	mux.HandleFunc("/frames", w.handleFrames)
	w.srv = &http.Server{Addr: w.addr, Handler: mux}
	go func(srv *http.Server) {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Str("addr", w.addr).Msg("preview server stopped")
		}
	}(w.srv)
	w.up = true
	log.Info().Str("addr", w.addr).Msg("frame preview at ws://" + w.addr + "/frames")
	return nil
}

func (w *Web) handleFrames(rw http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	w.mu.Lock()
	w.clients[conn] = true
	w.mu.Unlock()

	// Drain the client until it goes away.
	go func() {
		defer func() {
			w.mu.Lock()
			delete(w.clients, conn)
			w.mu.Unlock()
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (w *Web) Render(f *ws281x.Frame) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.up {
		return ws281x.ErrNotInitialized
	}
	w.frameID++
	p := framePayload{Frame: w.frameID}
	for i, data := range f.Channels {
		p.Channels = append(p.Channels, channelPayload{
			Pixels: w.cfg.Channels[i].Count,
			Colors: w.cfg.Channels[i].Colors,
			Data:   data,
		})
	}
	msg, err := json.Marshal(p)
	if err != nil {
		return err
	}
	for conn := range w.clients {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			delete(w.clients, conn)
			_ = conn.Close()
		}
	}
	return nil
}

func (w *Web) Wait() error { return nil }

func (w *Web) Fini() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.up {
		return nil
	}
	for conn := range w.clients {
		_ = conn.Close()
		delete(w.clients, conn)
	}
	_ = w.srv.Close()
	w.srv = nil
	w.up = false
	return nil
}
