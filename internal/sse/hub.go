package sse

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dimitrije/taskflow-api/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	EventTasksReassigned = "tasks_reassigned"
	EventTaskCreated     = "task_created"
	EventTaskUpdated     = "task_updated"
	EventTaskDeleted     = "task_deleted"
)

type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type TasksReassignedEvent struct {
	ProjectID uuid.UUID     `json:"projectId"`
	Count     int           `json:"count"`
	Tasks     []models.Task `json:"tasks"`
}

type TaskEvent struct {
	ProjectID uuid.UUID    `json:"projectId"`
	TaskID    uuid.UUID    `json:"taskId"`
	Task      *models.Task `json:"task,omitempty"`
}

type Client struct {
	ID       string
	UserID   uuid.UUID
	Projects map[uuid.UUID]bool
	Send     chan []byte
}

type ProjectMessage struct {
	ProjectID uuid.UUID
	Event     Event
}

// Hub fans project events out to connected clients. Run must be running for
// Register, Unregister and the Broadcast methods to make progress.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *ProjectMessage
	done       chan struct{}
	logger     *zap.Logger
	mu         sync.RWMutex
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *ProjectMessage, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Event)
			if err != nil {
				h.logger.Error("failed to encode event", zap.String("type", msg.Event.Type), zap.Error(err))
				continue
			}
			h.mu.RLock()
			for _, client := range h.clients {
				if !client.Projects[msg.ProjectID] {
					continue
				}
				select {
				case client.Send <- data:
				default:
					h.logger.Debug("client buffer full, event dropped", zap.String("client_id", client.ID))
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register and Unregister are no-ops once Run has returned.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) publish(msg *ProjectMessage) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// ClientCount reports how many clients are listening to a project.
func (h *Hub) ClientCount(projectID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, client := range h.clients {
		if client.Projects[projectID] {
			n++
		}
	}
	return n
}

func (h *Hub) BroadcastTasksReassigned(projectID uuid.UUID, tasks []models.Task) {
	h.publish(&ProjectMessage{
		ProjectID: projectID,
		Event: Event{
			Type: EventTasksReassigned,
			Data: TasksReassignedEvent{ProjectID: projectID, Count: len(tasks), Tasks: tasks},
		},
	})
}

// BroadcastTaskEvent publishes a single task change. task may be nil for deletions.
func (h *Hub) BroadcastTaskEvent(eventType string, projectID, taskID uuid.UUID, task *models.Task) {
	h.publish(&ProjectMessage{
		ProjectID: projectID,
		Event: Event{
			Type: eventType,
			Data: TaskEvent{ProjectID: projectID, TaskID: taskID, Task: task},
		},
	})
}
