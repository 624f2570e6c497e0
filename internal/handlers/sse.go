package handlers

import (
	"github.com/dimitrije/taskflow-api/internal/middleware"
	"github.com/dimitrije/taskflow-api/internal/sse"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type SSEHandler struct {
	hub            HubInterface
	projectService ProjectServiceInterface
	logger         *zap.Logger
}

func NewSSEHandler(hub HubInterface, projectService ProjectServiceInterface, logger *zap.Logger) *SSEHandler {
	return &SSEHandler{
		hub:            hub,
		projectService: projectService,
		logger:         logger,
	}
}

// Connect streams task events for one project until the client goes away.
func (h *SSEHandler) Connect(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	ctx := c.Request.Context()

	if _, err := h.projectService.GetOwned(ctx, projectID, userID); err != nil {
		respondError(c, h.logger, err, "failed to open event stream")
		return
	}

	sseCtx := c.SSE()

	clientID := uuid.New().String()
	client := &sse.Client{
		ID:       clientID,
		UserID:   userID,
		Projects: map[uuid.UUID]bool{projectID: true},
		Send:     make(chan []byte, 64),
	}

	h.hub.Register(client)
	defer h.hub.Unregister(client)

	if err := sseCtx.SendJSON(map[string]string{
		"type":      "connected",
		"clientId":  clientID,
		"projectId": projectID.String(),
	}, "system", ""); err != nil {
		return
	}

	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := sseCtx.Send(string(msg), "message", ""); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
