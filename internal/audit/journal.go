// Package audit records a journal entry for every state-mutating action.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/fentz26/focus/internal/models"
)

// ChangeWriter persists journal records.
type ChangeWriter interface {
	WriteChange(action, inputsHash, entityID string) (*models.Change, error)
}

// Journal writes change records for audit trails.
type Journal struct {
	store ChangeWriter
}

// NewJournal creates a new journal backed by w.
func NewJournal(w ChangeWriter) *Journal {
	return &Journal{store: w}
}

// Record writes a change entry for a state-mutating action.
func (j *Journal) Record(action string, inputs interface{}, entityID string) (*models.Change, error) {
	return j.store.WriteChange(action, hashInputs(inputs), entityID)
}

// hashInputs creates a SHA256 hash of the inputs for reproducibility.
func hashInputs(inputs interface{}) string {
	data, err := json.Marshal(inputs)
	if err != nil {
		return "hash_error"
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
