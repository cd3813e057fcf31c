package collection

import (
	"encoding/json"
	"fmt"
)

type ModeKind string

const (
	ModeClosed           ModeKind = "closed"
	ModeViewing          ModeKind = "viewing"
	ModeEditing          ModeKind = "editing"
	ModeCreating         ModeKind = "creating"
	ModeConfirmingDelete ModeKind = "confirming_delete"
)

// Mode is the panel's dialog state as a single discriminated value, so an
// entity id can only be present for the kinds that reference one.
type Mode struct {
	kind ModeKind
	id   string
}

func Closed() Mode              { return Mode{kind: ModeClosed} }
func Creating() Mode            { return Mode{kind: ModeCreating} }
func Viewing(id string) Mode    { return Mode{kind: ModeViewing, id: id} }
func Editing(id string) Mode    { return Mode{kind: ModeEditing, id: id} }
func ConfirmingDelete(id string) Mode {
	return Mode{kind: ModeConfirmingDelete, id: id}
}

func (m Mode) Kind() ModeKind {
	if m.kind == "" {
		return ModeClosed
	}
	return m.kind
}

// EntityID returns the referenced entity id for viewing, editing, and
// delete-confirmation modes.
func (m Mode) EntityID() (string, bool) {
	switch m.kind {
	case ModeViewing, ModeEditing, ModeConfirmingDelete:
		return m.id, true
	default:
		return "", false
	}
}

type modeJSON struct {
	Mode ModeKind `json:"mode"`
	ID   string   `json:"id,omitempty"`
}

func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(modeJSON{Mode: m.Kind(), ID: m.id})
}

func (m *Mode) UnmarshalJSON(data []byte) error {
	var raw modeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Mode {
	case ModeClosed, ModeCreating, "":
		if raw.ID != "" {
			return fmt.Errorf("mode %q does not reference an entity", raw.Mode)
		}
		if raw.Mode == "" {
			raw.Mode = ModeClosed
		}
		*m = Mode{kind: raw.Mode}
	case ModeViewing, ModeEditing, ModeConfirmingDelete:
		if raw.ID == "" {
			return fmt.Errorf("mode %q requires an entity id", raw.Mode)
		}
		*m = Mode{kind: raw.Mode, id: raw.ID}
	default:
		return fmt.Errorf("unknown mode %q", raw.Mode)
	}
	return nil
}
