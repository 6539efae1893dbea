package ws

import (
	"context"
	"sync"

	"rentproof_backend/internal/logger"
	"rentproof_backend/internal/services"
)

const MessageRentalStatusChanged = "rental_status_changed"

// OutgoingMessage - конверт для всех сообщений сервер -> клиент
type OutgoingMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type delivery struct {
	partyIDs []string
	rentalID string
	message  OutgoingMessage
}

// WebSocketManager держит подключения по partyID. Одна сторона может быть
// подключена с нескольких устройств.
type WebSocketManager struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan delivery
	done       chan struct{}
	mu         sync.RWMutex
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan delivery, 256),
		done:       make(chan struct{}),
	}
}

// Run обслуживает регистрацию и рассылку до отмены ctx.
func (manager *WebSocketManager) Run(ctx context.Context) {
	defer close(manager.done)
	for {
		select {
		case <-ctx.Done():
			manager.closeAll()
			return

		case client := <-manager.register:
			manager.mu.Lock()
			set, ok := manager.clients[client.PartyID]
			if !ok {
				set = make(map[*Client]struct{})
				manager.clients[client.PartyID] = set
			}
			set[client] = struct{}{}
			manager.mu.Unlock()
			logger.Debug("ws client registered", "party_id", client.PartyID, "rental_filter", client.RentalID)

		case client := <-manager.unregister:
			manager.remove(client)

		case d := <-manager.broadcast:
			manager.deliver(d)
		}
	}
}

// PublishStatus реализует services.StatusNotifier. Never blocks: when the queue
// is full the event is dropped, clients can still long-poll the status.
func (manager *WebSocketManager) PublishStatus(ctx context.Context, event services.StatusEvent) {
	parties := []string{event.OwnerID}
	if event.RenterID != event.OwnerID {
		parties = append(parties, event.RenterID)
	}

	d := delivery{
		partyIDs: parties,
		rentalID: event.RentalID,
		message:  OutgoingMessage{Type: MessageRentalStatusChanged, Data: event},
	}
	select {
	case manager.broadcast <- d:
	default:
		logger.CtxWarn(ctx, "ws broadcast queue full, status event dropped",
			"rental_id", event.RentalID, "to", event.To)
	}
}

func (manager *WebSocketManager) deliver(d delivery) {
	manager.mu.RLock()
	var slow []*Client
	for _, partyID := range d.partyIDs {
		for client := range manager.clients[partyID] {
			if !client.wants(d.rentalID) {
				continue
			}
			select {
			case client.Send <- d.message:
			default:
				slow = append(slow, client)
			}
		}
	}
	manager.mu.RUnlock()

	// Канал заполнен, клиент отключается
	for _, client := range slow {
		logger.Warn("ws client disconnected due to full send channel", "party_id", client.PartyID)
		manager.remove(client)
	}
}

// reply пишет одному подключению, если оно еще зарегистрировано.
func (manager *WebSocketManager) reply(client *Client, message OutgoingMessage) {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	if _, ok := manager.clients[client.PartyID][client]; !ok {
		return
	}
	select {
	case client.Send <- message:
	default:
	}
}

func (manager *WebSocketManager) remove(client *Client) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	set, ok := manager.clients[client.PartyID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.Send)
	if len(set) == 0 {
		delete(manager.clients, client.PartyID)
	}
	logger.Debug("ws client unregistered", "party_id", client.PartyID)
}

func (manager *WebSocketManager) closeAll() {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	for partyID, set := range manager.clients {
		for client := range set {
			close(client.Send)
		}
		delete(manager.clients, partyID)
	}
}

// GetClientCount возвращает количество подключений
func (manager *WebSocketManager) GetClientCount() int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	n := 0
	for _, set := range manager.clients {
		n += len(set)
	}
	return n
}

// IsPartyConnected проверяет, есть ли у стороны хотя бы одно подключение
func (manager *WebSocketManager) IsPartyConnected(partyID string) bool {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.clients[partyID]) > 0
}
