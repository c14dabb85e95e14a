package notify

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoalCompletedMessage is consumed by the email function that congratulates
// the account holder. It carries everything needed to render the message.
type GoalCompletedMessage struct {
	AccountID   uuid.UUID       `json:"accountId"`
	GoalID      int32           `json:"goalId"`
	Description string          `json:"description"`
	Target      decimal.Decimal `json:"target"`
	Saved       decimal.Decimal `json:"saved"`
	CompletedAt time.Time       `json:"completedAt"`
}

func NewGoalCompletedMessage(accountID uuid.UUID, goalID int32, description string, target, saved decimal.Decimal) *GoalCompletedMessage {
	return &GoalCompletedMessage{
		AccountID:   accountID,
		GoalID:      goalID,
		Description: description,
		Target:      target,
		Saved:       saved,
		CompletedAt: time.Now().UTC(),
	}
}

func (m *GoalCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func GoalCompletedMessageFromJSON(data []byte) (*GoalCompletedMessage, error) {
	var msg GoalCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
