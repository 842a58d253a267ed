package tracker

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/ironpath/internal/models"
)

// ErrImportInvalid rejects an import whose document shape is wrong. The
// import is refused wholesale; existing state is untouched.
var ErrImportInvalid = errors.New("import data has invalid shape")

// Export flushes any queued writes and returns the full state document.
// Flushing first keeps the exported snapshot and the persisted one identical.
func (t *Tracker) Export() (models.Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.store.Flush(); err != nil {
		return models.Snapshot{}, fmt.Errorf("flushing before export: %w", err)
	}
	return t.snapshot(), nil
}

// Import replaces the full state with a previously exported document. The
// shape is validated before anything is touched: history, currentSession and
// personalRecords must be present with the right types, totalXp must be
// numeric, profile must be an object or null/absent. The XP total is
// recomputed from the imported history, not trusted from the document.
func (t *Tracker) Import(data []byte) error {
	if err := validateImportShape(data); err != nil {
		return err
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: %v", ErrImportInvalid, err)
	}
	if snap.Profile != nil {
		if err := snap.Profile.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrImportInvalid, err)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.restore(snap)
	t.queue()
	if err := t.store.Flush(); err != nil {
		return fmt.Errorf("persisting import: %w", err)
	}
	return nil
}

func validateImportShape(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: not a JSON object", ErrImportInvalid)
	}

	if raw, ok := doc["profile"]; ok && !isNull(raw) {
		var profile map[string]json.RawMessage
		if err := json.Unmarshal(raw, &profile); err != nil {
			return fmt.Errorf("%w: profile must be an object or null", ErrImportInvalid)
		}
	}

	for _, key := range []string{"history", "currentSession"} {
		raw, ok := doc[key]
		if !ok {
			return fmt.Errorf("%w: %s is missing", ErrImportInvalid, key)
		}
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil {
			return fmt.Errorf("%w: %s must be an array", ErrImportInvalid, key)
		}
	}

	raw, ok := doc["personalRecords"]
	if !ok {
		return fmt.Errorf("%w: personalRecords is missing", ErrImportInvalid)
	}
	var prs map[string]json.RawMessage
	if err := json.Unmarshal(raw, &prs); err != nil {
		return fmt.Errorf("%w: personalRecords must be a map", ErrImportInvalid)
	}

	raw, ok = doc["totalXp"]
	if !ok {
		return fmt.Errorf("%w: totalXp is missing", ErrImportInvalid)
	}
	var xp float64
	if err := json.Unmarshal(raw, &xp); err != nil {
		return fmt.Errorf("%w: totalXp must be numeric", ErrImportInvalid)
	}

	return nil
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}
