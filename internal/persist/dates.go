package persist

import (
	"database/sql"
	"time"

	"github.com/mesh-intelligence/docket/pkg/types"
)

// NormalizeDate converts a raw movement date to a nullable ISO date.
// Empty or malformed input yields a null value; the movement is still
// written.
func NormalizeDate(raw string) sql.NullString {
	t, ok := types.ParseDate(raw)
	if !ok {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.DateOnly), Valid: true}
}
