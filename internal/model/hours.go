package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Hours is an aggregate hour total, rendered as a two-decimal string ("5.50").
type Hours float64

func (h Hours) String() string {
	return fmt.Sprintf("%.2f", float64(h))
}

func (h Hours) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON accepts both the string form and a bare number.
func (h *Hours) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("hours must be a number or numeric string: %w", err)
		}
		*h = Hours(f)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*h = Hours(f)
	return nil
}
