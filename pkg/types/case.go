package types

import (
	"strings"
	"time"
)

// Case is one docketed matter as extracted from a detail view.
// JSON field names match the staging files written by earlier scraper runs,
// so existing buffers stay loadable.
type Case struct {
	Number       string `json:"expediente"`       // External case identifier (required).
	Jurisdiction string `json:"jurisdiccion"`     // Chamber or jurisdiction label (required).
	Dependency   string `json:"dependencia"`      // Office label (required).
	Status       string `json:"situacion_actual"` // Current status label.
	Caption      string `json:"caratula"`         // Title text.

	Movements  []Movement `json:"registros_tabla"`
	Actors     []string   `json:"actores"`
	Defendants []string   `json:"demandados"`

	StagedID    string     `json:"staged_id,omitempty"`    // UUID v7, set when staged.
	ExtractedAt *time.Time `json:"extracted_at,omitempty"` // Set when staged.
}

// Movement is one entry of a case's procedural history.
type Movement struct {
	RawDate string `json:"fecha"`
	Type    string `json:"tipo"`
	Detail  string `json:"detalle"`
}

// Participant is a named party with its role.
type Participant struct {
	Role Role
	Name string
}

// MissingField returns the name of the first required field that is empty,
// or "" when the case carries all of them.
func (c *Case) MissingField() string {
	switch {
	case strings.TrimSpace(c.Number) == "":
		return "expediente"
	case strings.TrimSpace(c.Jurisdiction) == "":
		return "jurisdiccion"
	case strings.TrimSpace(c.Dependency) == "":
		return "dependencia"
	}
	return ""
}

// AddParticipant classifies roleText and records name under the matching
// role. It reports false, leaving the case untouched, when the role is not
// recognized.
func (c *Case) AddParticipant(roleText, name string) bool {
	role, ok := ClassifyRole(roleText)
	if !ok {
		return false
	}
	switch role {
	case RoleActor:
		c.Actors = append(c.Actors, name)
	case RoleDefendant:
		c.Defendants = append(c.Defendants, name)
	}
	return true
}

// Participants returns actors first, then defendants, in extraction order.
func (c *Case) Participants() []Participant {
	out := make([]Participant, 0, len(c.Actors)+len(c.Defendants))
	for _, name := range c.Actors {
		out = append(out, Participant{Role: RoleActor, Name: name})
	}
	for _, name := range c.Defendants {
		out = append(out, Participant{Role: RoleDefendant, Name: name})
	}
	return out
}
