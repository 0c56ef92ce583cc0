package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// MaxBodyBytes caps JSON request bodies. Auth payloads are tiny; anything
// bigger is either a mistake or abuse.
const MaxBodyBytes = 64 << 10

// ErrBadJSON is returned by ReadJSON for bodies that cannot be decoded.
var ErrBadJSON = errors.New("httpx: malformed json body")

// ReadJSON decodes a JSON request body into dst, enforcing MaxBodyBytes and
// rejecting unknown fields.
func ReadJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return ErrBadJSON
	}
	if dec.More() {
		return ErrBadJSON
	}
	_, _ = io.Copy(io.Discard, r.Body)
	return nil
}
