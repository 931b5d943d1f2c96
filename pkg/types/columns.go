package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is fixed width so stored values sort lexically.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// Timestamp is a UTC instant stored as TEXT.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Microsecond)}
}

func (t Timestamp) Value() (driver.Value, error) {
	return t.UTC().Format(TimestampLayout), nil
}

func (t *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	}

	data, ok := columnBytes(src)
	if !ok {
		return fmt.Errorf("unsupported timestamp column type %T", src)
	}

	parsed, err := time.Parse(time.RFC3339Nano, string(data))
	if err != nil {
		return fmt.Errorf("failed to parse timestamp %q: %w", string(data), err)
	}

	t.Time = parsed.UTC()
	return nil
}

// StringList is a JSON array column. Malformed or absent JSON scans as an
// empty list.
type StringList []string

func (l *StringList) Scan(src any) error {
	*l = StringList{}

	data, ok := columnBytes(src)
	if !ok {
		return nil
	}

	var out []string
	if err := json.Unmarshal(data, &out); err != nil || out == nil {
		return nil
	}

	*l = out
	return nil
}

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}

	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal string list: %w", err)
	}

	return string(data), nil
}

func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// Contains reports whether v is in the list.
func (l StringList) Contains(v string) bool {
	for _, s := range l {
		if s == v {
			return true
		}
	}
	return false
}

// JSONObject is a JSON object column. Anything that is not an object scans as
// an empty map.
type JSONObject map[string]any

func (o *JSONObject) Scan(src any) error {
	*o = JSONObject{}

	data, ok := columnBytes(src)
	if !ok {
		return nil
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil || out == nil {
		return nil
	}

	*o = out
	return nil
}

func (o JSONObject) Value() (driver.Value, error) {
	if o == nil {
		return "{}", nil
	}

	data, err := json.Marshal(map[string]any(o))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json object: %w", err)
	}

	return string(data), nil
}

func (o JSONObject) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(o))
}

func columnBytes(src any) ([]byte, bool) {
	switch v := src.(type) {
	case string:
		return []byte(v), true
	case []byte:
		return v, true
	}
	return nil, false
}
