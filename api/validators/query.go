package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/partnerz-backend/pkg/errors"
)

// IntRange bounds an integer query parameter. Default applies when absent.
type IntRange struct {
	Default int
	Min     int
	Max     int
}

// QueryInt reads key from the query string and enforces bounds.
func QueryInt(r *http.Request, key string, bounds IntRange) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return bounds.Default, nil
	}
	details := map[string]any{"field": key, "min": bounds.Min, "max": bounds.Max}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, key+" must be an integer").WithDetails(details)
	}
	if value < bounds.Min || value > bounds.Max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, key+" is out of range").WithDetails(details)
	}
	return value, nil
}
