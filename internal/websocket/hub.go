// internal/websocket/hub.go
package websocket

import (
	"context"
	"fmt"
	"sync"

	"edman-service/internal/domain/user"
	wstypes "edman-service/internal/domain/websocket"
	"edman-service/internal/pkg/jwt"

	"go.uber.org/zap"
)

// TokenChecker reports revoked session tokens.
type TokenChecker interface {
	IsTokenBlacklisted(ctx context.Context, jti string) (bool, error)
}

type Hub struct {
	// Registered clients by user ID
	clients map[string]map[*Client]bool
	mu      sync.RWMutex

	Register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage
	done       chan struct{}

	jwtVerifier *jwt.Verifier
	tokens      TokenChecker
	logger      *zap.Logger
}

// BroadcastMessage targets either explicit users or every user with Role.
type BroadcastMessage struct {
	UserIDs []string
	Role    user.Role
	Message *wstypes.WSMessage
}

func NewHub(jwtVerifier *jwt.Verifier, tokens TokenChecker, logger *zap.Logger) *Hub {
	return &Hub{
		clients:     make(map[string]map[*Client]bool),
		Register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *BroadcastMessage, 256),
		done:        make(chan struct{}),
		jwtVerifier: jwtVerifier,
		tokens:      tokens,
		logger:      logger,
	}
}

// AuthenticateClient validates the session token and returns the identity it
// carries.
func (h *Hub) AuthenticateClient(ctx context.Context, token string) (*ClientAuth, error) {
	claims, err := h.jwtVerifier.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	blacklisted, err := h.tokens.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if blacklisted {
		return nil, ErrTokenBlacklisted
	}

	return &ClientAuth{
		Principal: claims.Principal(),
		SessionID: claims.ID,
	}, nil
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.BroadcastMessage(msg)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := client.principal.ID
	if h.clients[id] == nil {
		h.clients[id] = make(map[*Client]bool)
	}
	h.clients[id][client] = true

	h.logger.Info("websocket client connected",
		zap.String("user_id", id),
		zap.String("role", string(client.principal.Role)),
		zap.Int("total", h.totalClients()),
	)

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeConnected, map[string]interface{}{
		"user_id":  id,
		"role":     client.principal.Role,
		"channels": wstypes.DefaultChannels,
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := client.principal.ID
	if clients, ok := h.clients[id]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			client.Close()

			if len(clients) == 0 {
				delete(h.clients, id)
			}

			h.logger.Info("websocket client disconnected",
				zap.String("user_id", id),
				zap.Int("total", h.totalClients()),
			)
		}
	}
}

// BroadcastMessage delivers msg to the matching connected clients that are
// subscribed to the event's channel.
func (h *Hub) BroadcastMessage(msg *BroadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	channel := wstypes.ChannelFor(msg.Message.Type)
	deliver := func(client *Client) {
		if client.IsSubscribed(channel) {
			client.SendMessage(msg.Message)
		}
	}

	if msg.Role != "" {
		for _, clients := range h.clients {
			for client := range clients {
				if client.principal.Role == msg.Role {
					deliver(client)
				}
			}
		}
		return
	}

	for _, id := range msg.UserIDs {
		for client := range h.clients[id] {
			deliver(client)
		}
	}
}

// NotifyUser queues an event for every connection of userID. Delivery is best
// effort: when the queue is full the event is dropped.
func (h *Hub) NotifyUser(userID string, event wstypes.EventType, data interface{}) {
	h.enqueue(&BroadcastMessage{UserIDs: []string{userID}, Message: wstypes.NewMessage(event, data)})
}

// NotifyRole queues an event for every connected user with role.
func (h *Hub) NotifyRole(role user.Role, event wstypes.EventType, data interface{}) {
	h.enqueue(&BroadcastMessage{Role: role, Message: wstypes.NewMessage(event, data)})
}

func (h *Hub) enqueue(msg *BroadcastMessage) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("websocket broadcast queue full, dropping event",
			zap.String("type", string(msg.Message.Type)))
	}
}

func (h *Hub) GetConnectedClients(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalClients()
}

func (h *Hub) totalClients() int {
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	close(h.done)
	for id, clients := range h.clients {
		for client := range clients {
			client.Close()
		}
		delete(h.clients, id)
	}
}
