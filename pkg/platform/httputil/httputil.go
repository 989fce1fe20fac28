// Package httputil holds the JSON response helpers shared by every handler.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"causelist/pkg/platform/sentinel"
)

// CodedError is implemented by errors that know their API error code and
// HTTP status.
type CodedError interface {
	error
	ErrorCode() string
	HTTPStatus() int
}

// userFacing errors carry a message that is safe to return to clients.
type userFacing interface {
	UserMessage() string
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates err into the JSON error envelope. Descriptions are
// only included for client errors; 5xx responses carry the code alone.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"

	var coded CodedError
	switch {
	case errors.As(err, &coded):
		status = coded.HTTPStatus()
		code = coded.ErrorCode()
	case errors.Is(err, sentinel.ErrNotFound):
		status = http.StatusNotFound
		code = "not_found"
	}

	body := map[string]string{"error": code}
	if status < http.StatusInternalServerError {
		var uf userFacing
		if errors.As(err, &uf) {
			body["error_description"] = uf.UserMessage()
		} else {
			body["error_description"] = err.Error()
		}
	}
	WriteJSON(w, status, body)
}
