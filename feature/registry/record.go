package registry

import (
	"fmt"
	"time"

	"ixp-tracker/core/utils"
)

// Record is one raw object of a registry "data" array.
// Values are decoded as json.Number, string, bool, nil, []any or map[string]any.
type Record map[string]any

// Int returns the integer value of key.
func (r Record) Int(key string) (int, error) {
	v, ok := r[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	i, err := utils.ToInt(v)
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", key, err)
	}
	return i, nil
}

// String returns the string value of key, empty when absent or null.
func (r Record) String(key string) string {
	return utils.ToString(r[key])
}

// Bool returns the boolean value of key, false when absent.
func (r Record) Bool(key string) bool {
	return utils.ToBool(r[key])
}

// Time parses the ISO 8601 timestamp stored under key.
func (r Record) Time(key string) (time.Time, error) {
	v, ok := r[key]
	if !ok {
		return time.Time{}, fmt.Errorf("missing field %q", key)
	}
	t, err := utils.ToTime(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("field %q: %w", key, err)
	}
	return t, nil
}
