package session

import (
	"encoding/json"
	"os"

	"taskdeck/internal/service"
	"taskdeck/internal/taskview"
)

// State is the slice of session that must survive between CLI invocations:
// the active list, the sort key and the single-slot undo buffer. It is the
// process-per-action analogue of page-lifetime UI state.
type State struct {
	ActiveListID string           `json:"activeListId,omitempty"`
	SortKey      taskview.SortKey `json:"sortKey,omitempty"`
	LastDeleted  *service.Task    `json:"lastDeleted,omitempty"`
}

// LoadState reads the persisted state. A missing file yields the zero state;
// a corrupt file is treated the same so a bad write can't brick the CLI.
func LoadState(path string) State {
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}
	}
	return s
}

// Save writes the state with mode 0600, beside the token file.
func (s State) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
