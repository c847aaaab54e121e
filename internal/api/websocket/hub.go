// Package websocket implements the hub behind Reel's activity socket.
// Clients connecting to it receive a push message for every job
// transition and progress report, removing the need to poll.
package websocket

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/hbomb79/Reel/pkg/logger"
)

var socketLogger = logger.Get("WebSocket")

// SocketMessage is the envelope pushed to every connected client.
type SocketMessage struct {
	Title string         `json:"title"`
	Body  map[string]any `json:"arguments"`
}

// SocketHub is responsible for websocket upgrading, client tracking
// and the broadcasting of messages to all connected clients.
type SocketHub struct {
	mu       sync.Mutex
	upgrader *websocket.Upgrader
	clients  map[*socketClient]struct{}
	sendCh   chan *SocketMessage
	running  bool
}

type socketClient struct {
	conn   *websocket.Conn
	sendCh chan *SocketMessage
}

func New() *SocketHub {
	return &SocketHub{
		upgrader: &websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*socketClient]struct{}),
		sendCh:  make(chan *SocketMessage, 64),
	}
}

// UpgradeToSocket upgrades the request provided to a websocket
// connection and registers the resulting client with this hub. The
// client is deregistered automatically when its connection drops.
func (hub *SocketHub) UpgradeToSocket(w http.ResponseWriter, r *http.Request) error {
	conn, err := hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &socketClient{conn: conn, sendCh: make(chan *SocketMessage, 16)}
	hub.register(client)
	socketLogger.Emit(logger.NEW, "Registered new activity client %s\n", conn.RemoteAddr())

	go client.writeLoop()
	go func() {
		// Clients send nothing we care about; the read loop exists
		// only to notice the connection closing.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				hub.deregister(client)
				socketLogger.Emit(logger.REMOVE, "Activity client %s disconnected\n", conn.RemoteAddr())
				return
			}
		}
	}()

	return nil
}

// Broadcast queues the message provided for delivery to all connected
// clients. Delivery is best-effort; a slow client has its message
// dropped rather than blocking the hub.
func (hub *SocketHub) Broadcast(message *SocketMessage) {
	select {
	case hub.sendCh <- message:
	default:
		socketLogger.Warnf("Broadcast queue full, dropping %s message\n", message.Title)
	}
}

// Start runs the hub's dispatch loop, blocking until the provided
// context is cancelled, at which point all client connections are
// closed.
func (hub *SocketHub) Start(ctx context.Context) {
	hub.mu.Lock()
	if hub.running {
		hub.mu.Unlock()
		socketLogger.Warnf("Attempting to start SocketHub when already running! Ignoring request.\n")
		return
	}
	hub.running = true
	hub.mu.Unlock()

	defer hub.closeAll()
	for {
		select {
		case message := <-hub.sendCh:
			hub.mu.Lock()
			for client := range hub.clients {
				select {
				case client.sendCh <- message:
				default:
				}
			}
			hub.mu.Unlock()
		case <-ctx.Done():
			socketLogger.Emit(logger.STOP, "SocketHub closing (context cancelled)\n")
			return
		}
	}
}

func (hub *SocketHub) register(client *socketClient) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.clients[client] = struct{}{}
}

func (hub *SocketHub) deregister(client *socketClient) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	if _, ok := hub.clients[client]; ok {
		delete(hub.clients, client)
		close(client.sendCh)
	}
}

func (hub *SocketHub) closeAll() {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	for client := range hub.clients {
		delete(hub.clients, client)
		close(client.sendCh)
	}
	hub.running = false
}

func (client *socketClient) writeLoop() {
	defer client.conn.Close()
	for message := range client.sendCh {
		if err := client.conn.WriteJSON(message); err != nil {
			socketLogger.Warnf("Failed to send message to client %s: %v\n", client.conn.RemoteAddr(), err)
			return
		}
	}
}
