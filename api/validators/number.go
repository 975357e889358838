package validators

import (
	"encoding/json"
	"math"
)

// WholeNumber converts a decoded JSON number to int64. Fractions and values
// outside the int64 range fail with invalid. An absent field reads as zero.
func WholeNumber(n json.Number, invalid error) (int64, error) {
	if n == "" {
		return 0, nil
	}
	if v, err := n.Int64(); err == nil {
		return v, nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f < -(1<<63) || f >= 1<<63 {
		return 0, invalid
	}
	return int64(f), nil
}
