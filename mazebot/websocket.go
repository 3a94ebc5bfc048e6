package mazebot

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Pushes snapshots as JSON to every connected websocket client. Clients
// connect from HTTP goroutines, so unlike the rest of the package this is
// locked.
type WebsocketHub struct {
	upgrader websocket.Upgrader
	server   *http.Server
	mutex    sync.Mutex
	clients  map[*websocket.Conn]bool
}

func NewWebsocketHub() *WebsocketHub {
	return &WebsocketHub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]bool),
	}
}

// Serve /telemetry on addr in the background
func (hub *WebsocketHub) ListenAndServe(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("telemetry listen on %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/telemetry", hub)
	hub.server = &http.Server{Handler: mux}
	go func() {
		if err := hub.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			Logger.Errorf("Telemetry server stopped: %v", err)
		}
	}()
	Logger.Infof("Telemetry websocket on %v/telemetry", listener.Addr())
	return nil
}

func (hub *WebsocketHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		Logger.Warningf("Websocket upgrade failed: %v", err)
		return
	}
	hub.mutex.Lock()
	hub.clients[conn] = true
	hub.mutex.Unlock()

	// Nothing is expected from clients; reading notices when they go away
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				hub.remove(conn)
				return
			}
		}
	}()
}

func (hub *WebsocketHub) remove(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	if hub.clients[conn] {
		delete(hub.clients, conn)
		conn.Close()
	}
}

func (hub *WebsocketHub) ClientCount() int {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	return len(hub.clients)
}

func (hub *WebsocketHub) Publish(snapshot Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	hub.mutex.Lock()
	var failed []*websocket.Conn
	for conn := range hub.clients {
		if err := conn.SetWriteDeadline(time.Now().Add(20 * time.Millisecond)); err != nil {
			failed = append(failed, conn)
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			failed = append(failed, conn)
		}
	}
	hub.mutex.Unlock()
	for _, conn := range failed {
		hub.remove(conn)
	}
	return nil
}

func (hub *WebsocketHub) Close() error {
	hub.mutex.Lock()
	for conn := range hub.clients {
		conn.Close()
		delete(hub.clients, conn)
	}
	hub.mutex.Unlock()
	if hub.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return hub.server.Shutdown(ctx)
}
