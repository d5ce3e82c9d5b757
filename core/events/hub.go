package events

import (
	"encoding/json"
	"sync"
	"time"

	"groovy/logger"
)

// Type 事件类型
type Type string

const (
	Created Type = "created"
	Updated Type = "updated"
	Deleted Type = "deleted"
)

// Entity 事件实体
type Entity string

const (
	EntityArtist   Entity = "artist"
	EntityAlbum    Entity = "album"
	EntitySong     Entity = "song"
	EntityPlaylist Entity = "playlist"
)

// Event is pushed to every websocket subscriber after a catalog mutation.
type Event struct {
	Type      Type   `json:"type"`
	Entity    Entity `json:"entity"`
	ID        int64  `json:"id"`
	Timestamp int64  `json:"timestamp"` // unix millis
}

// Publisher is what services depend on.
type Publisher interface {
	Publish(t Type, entity Entity, id int64)
}

// Discard drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Type, Entity, int64) {}

const sendBuffer = 64

// Hub 事件推送中心
type Hub struct {
	clients map[*Client]bool

	// 注册/注销通道
	register   chan *Client
	unregister chan *Client

	// 广播通道
	broadcast chan []byte

	mu   sync.RWMutex
	done chan struct{}
	once sync.Once
}

// NewHub 创建 Hub，调用方负责 go hub.Run()
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run 启动 Hub 主循环
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logger.Debug("event subscriber registered", logger.String("remote", client.remote))

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeClient(client)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.fanOut(msg)

		case <-h.done:
			h.cleanup()
			return
		}
	}
}

// Stop 停止 Hub
func (h *Hub) Stop() {
	h.once.Do(func() { close(h.done) })
}

// removeClient 移除客户端（需要持有锁）
func (h *Hub) removeClient(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		logger.Debug("event subscriber unregistered", logger.String("remote", client.remote))
	}
}

// fanOut drops any client whose buffer is full instead of blocking the hub.
func (h *Hub) fanOut(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			logger.Warn("dropping slow event subscriber", logger.String("remote", client.remote))
			h.removeClient(client)
		}
	}
}

// cleanup 清理所有连接
func (h *Hub) cleanup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
	}
	h.clients = make(map[*Client]bool)
}

// Register 注册客户端
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

// Unregister 注销客户端
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish encodes an event and queues it for every subscriber. It never
// blocks the caller; when the queue is full the event is dropped.
func (h *Hub) Publish(t Type, entity Entity, id int64) {
	data, err := json.Marshal(Event{Type: t, Entity: entity, ID: id, Timestamp: time.Now().UnixMilli()})
	if err != nil {
		logger.Error("failed to encode event", logger.ErrorField(err))
		return
	}
	select {
	case h.broadcast <- data:
	default:
		logger.Warn("event queue full, dropping event",
			logger.String("type", string(t)), logger.String("entity", string(entity)), logger.Int64("id", id))
	}
}

// ClientCount 获取客户端数量
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
