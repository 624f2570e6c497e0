package sse

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dimitrije/taskflow-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func newClient(id string, projects ...uuid.UUID) *Client {
	c := &Client{
		ID:       id,
		UserID:   uuid.New(),
		Projects: make(map[uuid.UUID]bool),
		Send:     make(chan []byte, 256),
	}
	for _, p := range projects {
		c.Projects[p] = true
	}
	return c
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := startHub(t)
	projectID := uuid.New()
	client := newClient("client-1", projectID)

	hub.Register(client)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 1, hub.ClientCount(projectID))

	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 0, hub.ClientCount(projectID))

	_, ok := <-client.Send
	assert.False(t, ok)
}

func TestHub_UnregisterUnknownClient(t *testing.T) {
	hub := startHub(t)

	hub.Unregister(newClient("nonexistent"))
	time.Sleep(10 * time.Millisecond)
}

func TestHub_BroadcastTasksReassigned(t *testing.T) {
	hub := startHub(t)
	projectID := uuid.New()
	listener := newClient("listener", projectID)
	other := newClient("other", uuid.New())

	hub.Register(listener)
	hub.Register(other)
	time.Sleep(10 * time.Millisecond)

	name := "B"
	tasks := []models.Task{{ID: uuid.New(), ProjectID: projectID, Title: "T1", AssignedMemberName: &name}}
	hub.BroadcastTasksReassigned(projectID, tasks)

	select {
	case msg := <-listener.Send:
		var event struct {
			Type string               `json:"type"`
			Data TasksReassignedEvent `json:"data"`
		}
		require.NoError(t, json.Unmarshal(msg, &event))
		assert.Equal(t, EventTasksReassigned, event.Type)
		assert.Equal(t, projectID, event.Data.ProjectID)
		assert.Equal(t, 1, event.Data.Count)
		assert.Equal(t, "B", event.Data.Tasks[0].AssigneeName())
	case <-time.After(100 * time.Millisecond):
		t.Fatal("did not receive message")
	}

	select {
	case <-other.Send:
		t.Fatal("client on another project should not receive message")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_BroadcastTaskEvent_Deleted(t *testing.T) {
	hub := startHub(t)
	projectID := uuid.New()
	taskID := uuid.New()
	client := newClient("client-1", projectID)

	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastTaskEvent(EventTaskDeleted, projectID, taskID, nil)

	select {
	case msg := <-client.Send:
		var event struct {
			Type string    `json:"type"`
			Data TaskEvent `json:"data"`
		}
		require.NoError(t, json.Unmarshal(msg, &event))
		assert.Equal(t, EventTaskDeleted, event.Type)
		assert.Equal(t, taskID, event.Data.TaskID)
		assert.Nil(t, event.Data.Task)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("did not receive message")
	}
}

func TestHub_FullBufferDropped(t *testing.T) {
	hub := startHub(t)
	projectID := uuid.New()
	client := newClient("client-1", projectID)
	client.Send = make(chan []byte, 1)

	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	client.Send <- []byte("fill")
	hub.BroadcastTaskEvent(EventTaskUpdated, projectID, uuid.New(), nil)
	time.Sleep(10 * time.Millisecond)

	<-client.Send
	select {
	case <-client.Send:
		t.Fatal("should not receive dropped message")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_RunStopsOnContextCancel(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	client := newClient("client-1")
	hub.Register(client)
	cancel()

	select {
	case <-stopped:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("hub did not stop")
	}
	_, ok := <-client.Send
	assert.False(t, ok)
}

func TestHub_CallsAfterStopDoNotBlock(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	done := make(chan struct{})
	go func() {
		client := newClient("late")
		hub.Register(client)
		hub.Unregister(client)
		for i := 0; i < 300; i++ {
			hub.BroadcastTaskEvent(EventTaskUpdated, uuid.New(), uuid.New(), nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub calls blocked after Run returned")
	}
}
