package domain

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ProfileData is the per-profile document holding its transactions
type ProfileData struct {
	Transactions []Transaction `json:"transactions"`
}

// DecodeProfileData parses a stored profile document. A nil document is an
// empty profile; unparsable content returns ErrMalformedDocument.
func DecodeProfileData(raw []byte) (*ProfileData, error) {
	data := &ProfileData{Transactions: []Transaction{}}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, data); err != nil {
		return &ProfileData{Transactions: []Transaction{}}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if data.Transactions == nil {
		data.Transactions = []Transaction{}
	}
	return data, nil
}

func (d *ProfileData) Encode() ([]byte, error) {
	return json.Marshal(d)
}

// Find returns the index of the transaction with the given id, or -1
func (d *ProfileData) Find(id uuid.UUID) int {
	for i := range d.Transactions {
		if d.Transactions[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *ProfileData) Append(tx Transaction) {
	d.Transactions = append(d.Transactions, tx)
}

// Remove deletes the transaction with the given id, preserving order
func (d *ProfileData) Remove(id uuid.UUID) bool {
	idx := d.Find(id)
	if idx < 0 {
		return false
	}
	d.Transactions = append(d.Transactions[:idx], d.Transactions[idx+1:]...)
	return true
}

// ClearGoalReference unsets metaId on every transaction referencing goalID.
// Returns the number of transactions changed.
func (d *ProfileData) ClearGoalReference(goalID int32) int {
	cleared := 0
	for i := range d.Transactions {
		if d.Transactions[i].MetaID != nil && *d.Transactions[i].MetaID == goalID {
			d.Transactions[i].MetaID = nil
			cleared++
		}
	}
	return cleared
}
