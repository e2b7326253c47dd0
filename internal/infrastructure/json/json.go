// Package json wraps encoding/json with the small set of HTTP helpers the
// presentation layer uses for every response.
package json

import (
	"encoding/json"
	"net/http"
)

type envelope struct {
	Error string `json:"error"`
}

func Write(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(data)
}

func WriteError(w http.ResponseWriter, status int, err error, message string) {
	if message == "" && err != nil {
		message = err.Error()
	}

	_ = Write(w, status, envelope{Error: message})
}
