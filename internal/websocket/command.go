package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// Commands a client may send over its connection
const (
	CommandReport    = "report.request"
	CommandSetFilter = "filter.set"
)

// ErrUnknownCommand is returned by a CommandHandler for a type it does not serve
var ErrUnknownCommand = errors.New("unknown command")

// Command is an inbound client message. ID is echoed on the reply so the
// client can match it to the request.
type Command struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// CommandHandler runs a client's commands against its account. The returned
// event goes to the issuing client only; an error means the command could
// not be processed at all.
type CommandHandler interface {
	HandleCommand(ctx context.Context, accountID uuid.UUID, cmd Command) (Event, error)
}

// Rejection is the payload of a command.rejected reply
type Rejection struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ReportResult carries a computed report, or its empty state, to the client that asked
func ReportResult(payload interface{}) Event {
	return NewEvent(EventTypeResult, EntityTypeReport, payload)
}

func CommandAccepted(payload interface{}) Event {
	return NewEvent(EventTypeAccepted, EntityTypeCommand, payload)
}

func CommandRejected(code, message string) Event {
	return NewEvent(EventTypeRejected, EntityTypeCommand, Rejection{Code: code, Message: message})
}

// decodeCommand parses a raw client message
func decodeCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, err
	}
	if cmd.Type == "" {
		return Command{}, errors.New("missing command type")
	}
	return cmd, nil
}
