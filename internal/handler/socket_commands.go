package handler

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/granaevo/granaevo-backend/internal/domain"
	"github.com/granaevo/granaevo-backend/internal/service"
	"github.com/granaevo/granaevo-backend/internal/websocket"
)

// SocketCommands answers report and filter commands sent over a websocket
type SocketCommands struct {
	reports *service.ReportService
}

// NewSocketCommands creates a new SocketCommands
func NewSocketCommands(reports *service.ReportService) *SocketCommands {
	return &SocketCommands{reports: reports}
}

var _ websocket.CommandHandler = (*SocketCommands)(nil)

// reportCommand is the payload of report.request. Omitted fields fall back
// to the stored filter and all profiles.
type reportCommand struct {
	ProfileIDs []int32        `json:"profileIds,omitempty"`
	Filter     *domain.Filter `json:"filter,omitempty"`
}

// HandleCommand implements websocket.CommandHandler
func (h *SocketCommands) HandleCommand(ctx context.Context, accountID uuid.UUID, cmd websocket.Command) (websocket.Event, error) {
	switch cmd.Type {
	case websocket.CommandReport:
		var req reportCommand
		if !decodeCommandPayload(cmd.Payload, &req) {
			return invalidPayload(), nil
		}
		out, err := h.reports.Build(ctx, accountID, domain.ReportRequest{ProfileIDs: req.ProfileIDs, Filter: req.Filter})
		if err != nil {
			return websocket.Event{}, err
		}
		return outcomeEvent(out, websocket.ReportResult), nil

	case websocket.CommandSetFilter:
		var filter domain.Filter
		if len(cmd.Payload) == 0 || !decodeCommandPayload(cmd.Payload, &filter) {
			return invalidPayload(), nil
		}
		out, err := h.reports.SetFilter(ctx, accountID, filter)
		if err != nil {
			return websocket.Event{}, err
		}
		return outcomeEvent(out, websocket.CommandAccepted), nil

	default:
		return websocket.Event{}, websocket.ErrUnknownCommand
	}
}

func decodeCommandPayload(raw json.RawMessage, v any) bool {
	if len(raw) == 0 {
		return true
	}
	return json.Unmarshal(raw, v) == nil
}

func invalidPayload() websocket.Event {
	return websocket.CommandRejected("invalid_payload", "Parâmetros do comando inválidos.")
}

// outcomeEvent mirrors writeOutcome: values and empty states go out through
// ok, everything else is a rejection
func outcomeEvent[T any](out domain.Outcome[T], ok func(interface{}) websocket.Event) websocket.Event {
	switch out.Kind {
	case domain.OutcomeOK:
		return ok(out.Value)
	case domain.OutcomeEmpty:
		return ok(EmptyState{State: string(domain.OutcomeEmpty), Code: out.Code, Message: out.Message})
	default:
		return websocket.CommandRejected(out.Code, out.Message)
	}
}
