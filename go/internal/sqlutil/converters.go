package sqlutil

import (
	"encoding/json"
	"strings"

	"github.com/sqlc-dev/pqtype"
)

// ToNullRawMessage wraps raw JSON for a nullable jsonb column. Empty input stores NULL.
func ToNullRawMessage(raw []byte) pqtype.NullRawMessage {
	if len(raw) == 0 {
		return pqtype.NullRawMessage{Valid: false}
	}
	return pqtype.NullRawMessage{RawMessage: json.RawMessage(raw), Valid: true}
}

// FromNullRawMessage unwraps a nullable jsonb column, nil when NULL.
func FromNullRawMessage(val pqtype.NullRawMessage) json.RawMessage {
	if !val.Valid {
		return nil
	}
	return val.RawMessage
}

// TrimPtr trims a nullable string and maps blank values to nil.
func TrimPtr(val *string) *string {
	if val == nil {
		return nil
	}
	t := strings.TrimSpace(*val)
	if t == "" {
		return nil
	}
	return &t
}
