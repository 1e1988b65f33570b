package services

import (
	"log"
	"sync"
)

// ============================================================
// SSE Hub
// ============================================================

// SSEClient represents a connected SSE client. Department and doctor are
// optional filters; a display board typically subscribes to a whole
// department, a doctor's console to one doctor.
type SSEClient struct {
	ID           string
	HospitalID   uint
	DepartmentID uint // 0 = all departments
	DoctorID     uint // 0 = all doctors
	Channel      chan QueueEvent
	IsDisplay    bool // true = waiting-room display board
}

// SSEHub fans queue events out to all connected SSE clients
type SSEHub struct {
	mu      sync.RWMutex
	clients map[string]*SSEClient
}

// NewSSEHub creates a new SSE hub
func NewSSEHub() *SSEHub {
	return &SSEHub{
		clients: make(map[string]*SSEClient),
	}
}

// Register adds a new SSE client
func (h *SSEHub) Register(client *SSEClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	log.Printf("📡 SSE client registered: %s (hospital=%d, department=%d, doctor=%d, display=%v) | total=%d",
		client.ID, client.HospitalID, client.DepartmentID, client.DoctorID, client.IsDisplay, len(h.clients))
}

// Unregister removes an SSE client
func (h *SSEHub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Channel)
		delete(h.clients, clientID)
		log.Printf("📡 SSE client unregistered: %s | total=%d", clientID, len(h.clients))
	}
}

// Publish implements EventPublisher. Delivery to a slow client never blocks
// the queue operation; a client whose channel is full misses that event and
// catches up from the snapshot carried by the next one.
func (h *SSEHub) Publish(event QueueEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for _, client := range h.clients {
		if !h.matches(client, event) {
			continue
		}
		select {
		case client.Channel <- event:
			sent++
		default:
			log.Printf("⚠️ SSE channel full for client %s, skipping", client.ID)
		}
	}
	if sent > 0 {
		log.Printf("📡 SSE broadcast [%s] hospital=%d → %d clients", event.Action, event.HospitalID, sent)
	}
}

func (h *SSEHub) matches(client *SSEClient, event QueueEvent) bool {
	if client.HospitalID != event.HospitalID {
		return false
	}
	if client.DepartmentID != 0 && client.DepartmentID != event.DepartmentID {
		return false
	}
	if client.DoctorID != 0 {
		if event.DoctorID == nil || *event.DoctorID != client.DoctorID {
			return false
		}
	}
	return true
}

// GetClientCount returns the number of connected clients
func (h *SSEHub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
