package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCommands answers echo commands and fails the rest
type stubCommands struct {
	accountID uuid.UUID
	seen      []Command
}

func (s *stubCommands) HandleCommand(ctx context.Context, accountID uuid.UUID, cmd Command) (Event, error) {
	s.accountID = accountID
	s.seen = append(s.seen, cmd)
	switch cmd.Type {
	case "echo":
		return CommandAccepted(cmd.Payload), nil
	case "broken":
		return Event{}, errors.New("store down")
	default:
		return Event{}, ErrUnknownCommand
	}
}

func rejectionCode(t *testing.T, event Event) string {
	t.Helper()
	require.Equal(t, "command.rejected", event.Type)
	r, ok := event.Payload.(Rejection)
	require.True(t, ok, "payload %T", event.Payload)
	return r.Code
}

func TestClient_Handle(t *testing.T) {
	accountID := uuid.New()
	commands := &stubCommands{}
	c := NewClient(nil, accountID, NewHub(), commands)
	ctx := context.Background()

	event := c.handle(ctx, []byte(`{"id":"a1","type":"echo","payload":{"n":1}}`))
	assert.Equal(t, "command.accepted", event.Type)
	assert.Equal(t, "a1", event.RequestID)
	assert.JSONEq(t, `{"n":1}`, string(event.Payload.(json.RawMessage)))
	assert.Equal(t, accountID, commands.accountID)

	tests := []struct {
		name  string
		input string
		code  string
		id    string
	}{
		{"not json", `hello`, "invalid_command", ""},
		{"missing type", `{"id":"x"}`, "invalid_command", ""},
		{"unknown", `{"id":"u1","type":"goal.delete"}`, "unknown_command", "u1"},
		{"handler failure", `{"id":"b1","type":"broken"}`, "command_failed", "b1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := c.handle(ctx, []byte(tt.input))
			assert.Equal(t, tt.code, rejectionCode(t, event))
			assert.Equal(t, tt.id, event.RequestID)
		})
	}
}

func TestClient_HandleWithoutCommands(t *testing.T) {
	c := NewClient(nil, uuid.New(), NewHub(), nil)

	event := c.handle(context.Background(), []byte(`{"id":"r1","type":"report.request"}`))
	assert.Equal(t, "unknown_command", rejectionCode(t, event))
	assert.Equal(t, "r1", event.RequestID)
}

func TestClient_ReplyAfterClose(t *testing.T) {
	c := NewClient(nil, uuid.New(), NewHub(), nil)
	c.reply(CommandAccepted(nil))
	require.Len(t, c.send, 1)

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	// dropped without panicking
	c.reply(CommandAccepted(nil))
	assert.Len(t, c.send, 1)
}
