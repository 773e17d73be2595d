package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"campusBack/internal/models"
)

const (
	readLimit     = 1 << 20
	readDeadline  = 120 * time.Second
	writeDeadline = 5 * time.Second
	pingInterval  = 15 * time.Second
)

type statusPush struct {
	userID int
	event  models.StatusEvent
}

type unreg struct {
	userID int
	conn   *websocket.Conn
}

// StatusHub pushes request status changes to connected students. One socket
// per user; a newer connection replaces the old one.
type StatusHub struct {
	clients    map[int]*websocket.Conn
	push       chan statusPush
	register   chan wsClient
	unregister chan unreg
}

type wsClient struct {
	ID     int
	Socket *websocket.Conn
}

func NewStatusHub() *StatusHub {
	return &StatusHub{
		clients:    make(map[int]*websocket.Conn),
		push:       make(chan statusPush, 64),
		register:   make(chan wsClient),
		unregister: make(chan unreg),
	}
}

// Push implements services.StatusHub. Never blocks the caller: if the hub is
// saturated the event is dropped, the student still has the persisted inbox.
func (hub *StatusHub) Push(userID int, event models.StatusEvent) {
	select {
	case hub.push <- statusPush{userID: userID, event: event}:
	default:
	}
}

// All access to clients happens here.
func (hub *StatusHub) Run() {
	for {
		select {
		case client := <-hub.register:
			if old, ok := hub.clients[client.ID]; ok && old != nil && old != client.Socket {
				_ = old.Close()
			}
			hub.clients[client.ID] = client.Socket
			log.Printf("WS register user=%d", client.ID)

		case u := <-hub.unregister:
			if cur, ok := hub.clients[u.userID]; ok && cur == u.conn {
				_ = cur.Close()
				delete(hub.clients, u.userID)
				log.Printf("WS unregister user=%d", u.userID)
			}

		case p := <-hub.push:
			conn, ok := hub.clients[p.userID]
			if !ok {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteJSON(p.event); err != nil {
				log.Printf("WS push error to=%d: %v", p.userID, err)
				_ = conn.Close()
				delete(hub.clients, p.userID)
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// StatusSocketHandler upgrades an authenticated request to a push stream. The
// user identity comes from the JWT middleware, no hello frame is needed.
func (app *application) StatusSocketHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(int)
	if userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}

	conn.SetReadLimit(readLimit)
	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	app.statusHub.register <- wsClient{ID: userID, Socket: conn}

	go pingLoop(app.statusHub, conn, userID)
	go drainSocket(app.statusHub, conn, userID)
}

func pingLoop(hub *StatusHub, conn *websocket.Conn, uid int) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for range t.C {
		_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			hub.unregister <- unreg{userID: uid, conn: conn}
			return
		}
	}
}

// drainSocket keeps reading so pongs and close frames are handled. The stream
// is push-only; client frames are discarded.
func drainSocket(hub *StatusHub, conn *websocket.Conn, uid int) {
	defer func() {
		hub.unregister <- unreg{userID: uid, conn: conn}
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
