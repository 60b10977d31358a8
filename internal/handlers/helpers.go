package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

var errMissingParam = errors.New("missing parameter")

// queryInt parses an optional integer query parameter, returning def when absent
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// queryFloat parses an optional float query parameter, returning def when absent
func queryFloat(r *http.Request, name string, def float64) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	return strconv.ParseFloat(raw, 64)
}

// queryCoordinates parses the required lat and lon query parameters
func queryCoordinates(r *http.Request) (lat, lon float64, err error) {
	q := r.URL.Query()
	latRaw, lonRaw := strings.TrimSpace(q.Get("lat")), strings.TrimSpace(q.Get("lon"))
	if latRaw == "" || lonRaw == "" {
		return 0, 0, errMissingParam
	}

	if lat, err = strconv.ParseFloat(latRaw, 64); err != nil {
		return 0, 0, err
	}
	if lon, err = strconv.ParseFloat(lonRaw, 64); err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}
