package audit

import (
	"testing"

	"github.com/fentz26/focus/internal/models"
)

type recordingWriter struct {
	changes []models.Change
}

func (w *recordingWriter) WriteChange(action, inputsHash, entityID string) (*models.Change, error) {
	c := models.Change{Action: action, InputsHash: inputsHash, EntityID: entityID}
	w.changes = append(w.changes, c)
	return &c, nil
}

func TestRecord(t *testing.T) {
	w := &recordingWriter{}
	j := NewJournal(w)

	if _, err := j.Record("task.create", map[string]string{"title": "a"}, "t1"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	j.Record("task.create", map[string]string{"title": "a"}, "t2")
	j.Record("task.create", map[string]string{"title": "b"}, "t3")

	if len(w.changes) != 3 {
		t.Fatalf("Expected 3 changes, got %d", len(w.changes))
	}
	if w.changes[0].InputsHash != w.changes[1].InputsHash {
		t.Error("Identical inputs must hash identically")
	}
	if w.changes[0].InputsHash == w.changes[2].InputsHash {
		t.Error("Different inputs must hash differently")
	}
	if len(w.changes[0].InputsHash) != 64 {
		t.Errorf("Expected hex sha256, got %q", w.changes[0].InputsHash)
	}
}

func TestHashInputs_Unmarshalable(t *testing.T) {
	if got := hashInputs(make(chan int)); got != "hash_error" {
		t.Errorf("Expected hash_error, got %q", got)
	}
}
