package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sandevgo/zhipukit/internal/core"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func statusFor(err error) int {
	var e *core.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch {
	case e.IsValidation():
		return http.StatusBadRequest
	case e.IsParse(), e.Kind == core.KindSchemaMismatch:
		return http.StatusUnprocessableEntity
	case e.IsTransport(), e.Kind == core.KindHTTP:
		return http.StatusBadGateway
	case e.Kind == core.KindCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage keeps vendor codes visible without leaking response bodies.
func errorMessage(err error) string {
	var e *core.Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Kind == core.KindHTTP {
		msg := e.Detail
		if e.Code != "" {
			msg = "vendor error " + e.Code + ": " + msg
		}
		return msg
	}
	return e.Error()
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
