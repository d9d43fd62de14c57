package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"gopkg.in/yaml.v3"
)

// referenceEpoch is the zero point of numeric timestamps written by the legacy
// client (seconds since 2001-01-01 UTC).
var referenceEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// maxLegacySeconds keeps numeric timestamps within what a time.Duration can hold.
const maxLegacySeconds = float64(math.MaxInt64/int64(time.Second)) - 1

// decodeTime accepts either an RFC 3339 string or a legacy numeric timestamp.
func decodeTime(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, nil
	}
	if raw[0] == '"' {
		var t time.Time
		if err := json.Unmarshal(raw, &t); err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp %s: %w", raw, err)
		}
		return t, nil
	}
	var secs float64
	if err := json.Unmarshal(raw, &secs); err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %s: %w", raw, err)
	}
	if math.Abs(secs) > maxLegacySeconds {
		return time.Time{}, fmt.Errorf("timestamp %s out of range", raw)
	}
	whole, frac := math.Modf(secs)
	return referenceEpoch.Add(time.Duration(whole)*time.Second + time.Duration(frac*float64(time.Second))), nil
}

func (n *Note) UnmarshalJSON(data []byte) error {
	type alias Note
	aux := struct {
		*alias
		CreatedAt json.RawMessage `json:"createdAt"`
	}{alias: (*alias)(n)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t, err := decodeTime(aux.CreatedAt)
	if err != nil {
		return fmt.Errorf("note %s: %w", n.ID, err)
	}
	n.CreatedAt = t
	return nil
}

func (r *Reminder) UnmarshalJSON(data []byte) error {
	type alias Reminder
	aux := struct {
		*alias
		Time json.RawMessage `json:"time"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t, err := decodeTime(aux.Time)
	if err != nil {
		return fmt.Errorf("reminder %s: %w", r.ID, err)
	}
	r.Time = t
	return nil
}

func (e *Event) UnmarshalJSON(data []byte) error {
	type alias Event
	aux := struct {
		*alias
		Date json.RawMessage `json:"date"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t, err := decodeTime(aux.Date)
	if err != nil {
		return fmt.Errorf("event %s: %w", e.ID, err)
	}
	e.Date = t
	return nil
}

// UnmarshalJSON fills fields missing from the blob with their defaults.
func (s *Settings) UnmarshalJSON(data []byte) error {
	type alias Settings
	a := alias(DefaultSettings())
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*s = Settings(a)
	return nil
}

// UnmarshalYAML fills fields missing from the blob with their defaults.
func (s *Settings) UnmarshalYAML(value *yaml.Node) error {
	type alias Settings
	a := alias(DefaultSettings())
	if err := value.Decode(&a); err != nil {
		return err
	}
	*s = Settings(a)
	return nil
}
