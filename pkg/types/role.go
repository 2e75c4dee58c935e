package types

import "strings"

// Role tags a participant. The set is closed: only actors and defendants
// are stored.
type Role string

// Known participant roles.
const (
	RoleActor     Role = "ACTOR"
	RoleDefendant Role = "DEMANDADO"
)

// ClassifyRole maps free role text such as "Parte Actora" or
// "Demandado Principal" to a Role. Matching is a case-insensitive substring
// test, actor first. Text matching neither role reports false.
func ClassifyRole(text string) (Role, bool) {
	upper := strings.ToUpper(strings.TrimSpace(text))
	switch {
	case strings.Contains(upper, string(RoleActor)):
		return RoleActor, true
	case strings.Contains(upper, string(RoleDefendant)):
		return RoleDefendant, true
	}
	return "", false
}
