package httputils

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// Envelope is the JSON body shape shared by every API response: a success flag plus
// arbitrary top-level keys (msg, data, token, or per-field validation messages).
type Envelope map[string]any

// WriteJSON writes v as a JSON response with the given status
func WriteJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"success":false,"msg":"encoding error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// OK writes {"success": true, ...fields}
func OK(w http.ResponseWriter, status int, fields Envelope) {
	out := Envelope{"success": true}
	for k, v := range fields {
		out[k] = v
	}
	WriteJSON(w, status, out)
}

// Fail writes {"success": false, "msg": msg}
func Fail(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Envelope{"success": false, "msg": msg})
}

// FailFields writes {"success": false, ...fields}, used for per-field validation errors
func FailFields(w http.ResponseWriter, status int, fields map[string]string) {
	out := Envelope{"success": false}
	for k, v := range fields {
		out[k] = v
	}
	WriteJSON(w, status, out)
}

// DecodeJSON reads a JSON request body into v. An empty body leaves v untouched.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return errors.New("request body too large")
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}
