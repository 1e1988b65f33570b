package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"clinicq/internal/core/services"
	"clinicq/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// QueueDisplayHandler handles waiting-room display endpoints (public, no auth)
type QueueDisplayHandler struct {
	queueService *services.QueueService
	hub          *services.SSEHub
}

// NewQueueDisplayHandler creates a new display handler
func NewQueueDisplayHandler(queueService *services.QueueService, hub *services.SSEHub) *QueueDisplayHandler {
	return &QueueDisplayHandler{
		queueService: queueService,
		hub:          hub,
	}
}

// ============================================================
// GET /api/v1/display/departments/:id — snapshot for the board
// ============================================================
func (h *QueueDisplayHandler) GetDepartmentBoard(c *fiber.Ctx) error {
	departmentID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	snapshot, err := h.queueService.CurrentDepartmentQueue(departmentID)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "Display data retrieved", snapshot)
}

// ============================================================
// GET /api/v1/display/hospitals/:id/events — SSE stream (Public)
//   ?department_id=  filter to one department
//   ?doctor_id=      filter to one doctor
// ============================================================
func (h *QueueDisplayHandler) StreamEvents(c *fiber.Ctx) error {
	hospitalID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	departmentID := uint(c.QueryInt("department_id", 0))
	doctorID := uint(c.QueryInt("doctor_id", 0))

	clientID := fmt.Sprintf("display-%d-%d", hospitalID, time.Now().UnixNano())

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")
	c.Set("Access-Control-Allow-Origin", "*")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		client := &services.SSEClient{
			ID:           clientID,
			HospitalID:   hospitalID,
			DepartmentID: departmentID,
			DoctorID:     doctorID,
			Channel:      make(chan services.QueueEvent, 50),
			IsDisplay:    true,
		}

		h.hub.Register(client)
		defer h.hub.Unregister(clientID)

		fmt.Fprintf(w, "event: connected\ndata: {\"client_id\":%q,\"hospital_id\":%d}\n\n", clientID, hospitalID)
		if err := w.Flush(); err != nil {
			return
		}

		heartbeat := time.NewTicker(30 * time.Second)
		defer heartbeat.Stop()

		for {
			select {
			case event, ok := <-client.Channel:
				if !ok {
					return
				}
				writeQueueEvent(w, event)
				if err := w.Flush(); err != nil {
					return
				}

			case <-heartbeat.C:
				fmt.Fprintf(w, ": heartbeat\n\n")
				if err := w.Flush(); err != nil {
					log.Printf("📡 SSE display client disconnected: %s", clientID)
					return
				}
			}
		}
	})

	return nil
}

// writeQueueEvent writes a formatted SSE event to the writer
func writeQueueEvent(w *bufio.Writer, event services.QueueEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("❌ SSE marshal error: %v", err)
		return
	}
	fmt.Fprintf(w, "event: %s\nid: %s\ndata: %s\n\n", event.Action, event.ID, data)
}
