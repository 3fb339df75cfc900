package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Arcano33sa/suitea33-sub002/internal/daykey"
	pkgerrors "github.com/Arcano33sa/suitea33-sub002/pkg/errors"
	"github.com/go-chi/chi/v5"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseIDParam reads a positive integer route parameter.
func ParseIDParam(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "path parameter must be a positive integer").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// ParseQueryDay reads an optional YYYY-MM-DD query parameter, defaulting to
// fallback when absent.
func ParseQueryDay(r *http.Request, key, fallback string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	if !daykey.Valid(raw) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "day must be YYYY-MM-DD").WithDetails(map[string]any{"field": key})
	}
	return raw, nil
}
