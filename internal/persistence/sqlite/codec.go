package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// TimeLayout stores timestamps as fixed-width UTC text so that lexical index
// order matches chronological order. RFC3339Nano is unsuitable here: it trims
// trailing fractional zeros, and a whole-second value ("...:00Z") then sorts
// after a later sub-second one ("...:00.5Z").
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func encodeTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func decodeTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: failed to parse timestamp %q: %w", value, err)
	}
	return t, nil
}

func encodeNullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return encodeTime(*t)
}

func decodeNullTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid {
		return nil, nil
	}
	t, err := decodeTime(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func fromNullString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}

// encodeJSON marshals embedded document fields (tags, notes, metadata).
// A nil value encodes as the given zero literal so columns stay non-null.
func encodeJSON(value any, zero string) (string, error) {
	if value == nil {
		return zero, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("sqlite: failed to encode document field: %w", err)
	}
	return string(raw), nil
}

func decodeJSON(raw string, out any) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("sqlite: failed to decode document field: %w", err)
	}
	return nil
}
