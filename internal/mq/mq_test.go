package mq

import (
	"testing"

	"github.com/google/uuid"
)

func TestMessageType_Known(t *testing.T) {
	tests := []struct {
		msgType MessageType
		known   bool
	}{
		{MessageTypeRunPending, true},
		{MessageTypeTaskReady, true},
		{MessageTypeTaskCompleted, true},
		{MessageType("flow.created"), false},
		{MessageType(""), false},
	}

	for _, tt := range tests {
		if got := tt.msgType.Known(); got != tt.known {
			t.Errorf("%q: expected Known()=%v, got %v", tt.msgType, tt.known, got)
		}
	}
}

func TestParsePayload_TaskCompleted(t *testing.T) {
	taskID := uuid.New()
	runID := uuid.New()

	// Payload приходит распарсенным в map (JSON round-trip consumer'а)
	msg := &Message{
		Type: MessageTypeTaskCompleted,
		Payload: map[string]any{
			"task_id": taskID.String(),
			"run_id":  runID.String(),
			"step_id": "rollout:Breakout",
			"game":    "Breakout",
			"type":    "rollout",
			"status":  "SUCCEEDED",
			"attempt": float64(1),
		},
	}

	payload, err := ParsePayload[TaskCompletedPayload](msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payload.TaskID != taskID {
		t.Errorf("expected task_id %s, got %s", taskID, payload.TaskID)
	}
	if payload.StepID != "rollout:Breakout" {
		t.Errorf("unexpected step_id: %s", payload.StepID)
	}
	if payload.Game != "Breakout" || payload.Type != "rollout" {
		t.Errorf("game/type should survive the round trip: %q %q", payload.Game, payload.Type)
	}
	if payload.Status != "SUCCEEDED" {
		t.Errorf("unexpected status: %s", payload.Status)
	}
}

func TestParsePayload_BadShape(t *testing.T) {
	msg := &Message{
		Type:    MessageTypeTaskReady,
		Payload: map[string]any{"task_id": "not-a-uuid"},
	}

	if _, err := ParsePayload[TaskReadyPayload](msg); err == nil {
		t.Error("expected error for malformed task_id")
	}
}
