package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/dialectdeck/ledger/internal/api/respond"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a single JSON object into dst and writes a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			respond.WriteBadRequest(w, "request body is required")
			return false
		}
		respond.WriteBadRequest(w, "invalid json: "+err.Error())
		return false
	}
	return true
}

// queryInt parses an optional integer query parameter; missing yields 0.
func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
