// Provides the generic adapter from typed handler functions to http.Handler.

package server

import (
	"bytes"
	"context"
	"encoding"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"

	"github.com/maruel/jokedb/internal/server/dto"
)

// Wrap wraps a handler function to work as an http.Handler.
// The function must have signature: func(context.Context, *In) (*Out, error)
// where In can be unmarshalled from JSON.
// Path parameters can be extracted by tagging struct fields with `path:"name"`
// and query parameters with `query:"name"`.
// *In must implement dto.Validatable.
//
// Bodies larger than maxBodyBytes are rejected when maxBodyBytes is positive.
// Unknown JSON fields are ignored.
//
// The output is rendered as JSON with status 200, or the status returned by a
// StatusCode() method on *Out. A *dto.Text output is sent as text/plain.
//
// Example:
//
//	type JokeIDRequest struct {
//	    ID string `path:"id"`
//	}
//
//	func (h *Handler) GetJoke(ctx context.Context, req *JokeIDRequest) (*dto.Joke, error)
func Wrap[In any, PtrIn interface {
	*In
	dto.Validatable
}, Out any](fn func(context.Context, PtrIn) (*Out, error), maxBodyBytes int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		input := new(In)
		if !readAndDecodeBody(ctx, w, r, input, maxBodyBytes) {
			return
		}
		populatePathParams(r, input)
		populateQueryParams(r, input)
		if err := PtrIn(input).Validate(); err != nil {
			handleValidationError(ctx, w, err)
			return
		}
		output, err := fn(ctx, PtrIn(input))
		writeResponse(ctx, w, output, err)
	})
}

// readAndDecodeBody reads the request body with size limit and decodes JSON into input.
// Returns false if an error occurred and was written to the response.
func readAndDecodeBody[In any](ctx context.Context, w http.ResponseWriter, r *http.Request, input *In, maxBodyBytes int64) bool {
	if maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	}
	body, err := io.ReadAll(r.Body)
	if err2 := r.Body.Close(); err == nil {
		err = err2
	}
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			apiErr := dto.PayloadTooLarge(maxBytesErr.Limit)
			writeErrorResponse(w, apiErr.StatusCode(), apiErr.Error(), apiErr.Details())
			return false
		}
		slog.ErrorContext(ctx, "Failed to read request body", "err", err)
		writeErrorResponse(w, http.StatusBadRequest, "Failed to read request body", nil)
		return false
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, input); err != nil {
			slog.WarnContext(ctx, "Failed to decode request body", "err", err)
			writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", nil)
			return false
		}
	}
	return true
}

// writeResponse writes the handler output or its error.
func writeResponse[Out any](ctx context.Context, w http.ResponseWriter, output *Out, err error) {
	if err != nil {
		writeError(ctx, w, err, http.StatusInternalServerError, dto.ErrorCodeInternal)
		return
	}
	status := http.StatusOK
	if output != nil {
		if s, ok := any(output).(interface{ StatusCode() int }); ok {
			status = s.StatusCode()
		}
	}
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	if t, ok := any(output).(*dto.Text); ok && t != nil {
		writeText(w, status, string(*t))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	e := json.NewEncoder(w)
	e.SetEscapeHTML(false)
	if err := e.Encode(output); err != nil {
		slog.ErrorContext(ctx, "Failed to encode response", "err", err)
	}
}

// handleValidationError handles a validation error from a request's Validate method.
func handleValidationError(ctx context.Context, w http.ResponseWriter, err error) {
	writeError(ctx, w, err, http.StatusBadRequest, dto.ErrorCodeValidationFailed)
}

// writeError renders err with its own status when it is a
// dto.ErrorWithStatus, otherwise with the given fallback.
func writeError(ctx context.Context, w http.ResponseWriter, err error, statusCode int, errorCode dto.ErrorCode) {
	var details map[string]any
	text := false
	var ewsErr dto.ErrorWithStatus
	if errors.As(err, &ewsErr) {
		statusCode = ewsErr.StatusCode()
		errorCode = ewsErr.Code()
		details = ewsErr.Details()
		text = ewsErr.Text()
	}
	if statusCode >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "Handler error", "err", err, "cause", errors.Unwrap(err), "statusCode", statusCode, "code", errorCode)
	} else {
		slog.DebugContext(ctx, "Handler error", "err", err, "statusCode", statusCode, "code", errorCode)
	}
	message := err.Error()
	if ewsErr != nil {
		message = ewsErr.Error()
	}
	if text {
		writeText(w, statusCode, message)
		return
	}
	writeErrorResponse(w, statusCode, message, details)
}

// writeErrorResponse writes {"type": "error", "message": ...}.
func writeErrorResponse(w http.ResponseWriter, statusCode int, message string, details map[string]any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(dto.NewErrorResponse(message, details)); err != nil {
		slog.Error("Failed to encode error response", "err", err)
	}
}

func writeText(w http.ResponseWriter, statusCode int, s string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = io.WriteString(w, s)
}

// populatePathParams extracts path parameters from the request and populates
// struct fields tagged with `path:"paramName"`.
func populatePathParams(r *http.Request, input any) {
	val := reflect.ValueOf(input)
	if val.Kind() != reflect.Pointer {
		return
	}
	elem := val.Elem()
	if elem.Kind() != reflect.Struct {
		return
	}
	typ := elem.Type()
	for i := range typ.NumField() {
		field := typ.Field(i)
		tag := field.Tag.Get("path")
		if tag == "" {
			continue
		}
		paramValue := r.PathValue(tag)
		if paramValue == "" {
			continue
		}
		setField(elem.Field(i), paramValue)
	}
}

// populateQueryParams extracts query parameters from the request and populates
// struct fields tagged with `query:"paramName"`.
func populateQueryParams(r *http.Request, input any) {
	val := reflect.ValueOf(input)
	if val.Kind() != reflect.Pointer {
		return
	}
	elem := val.Elem()
	if elem.Kind() != reflect.Struct {
		return
	}
	query := r.URL.Query()
	typ := elem.Type()
	for i := range typ.NumField() {
		field := typ.Field(i)
		tag := field.Tag.Get("query")
		if tag == "" {
			continue
		}
		paramValue := query.Get(tag)
		if paramValue == "" {
			continue
		}
		setField(elem.Field(i), paramValue)
	}
}

func setField(fieldVal reflect.Value, value string) {
	switch fieldVal.Kind() {
	case reflect.String:
		fieldVal.SetString(value)
	case reflect.Int:
		if intVal, err := strconv.Atoi(value); err == nil {
			fieldVal.SetInt(int64(intVal))
		}
	default:
		if fieldVal.CanAddr() {
			if unmarshaler, ok := fieldVal.Addr().Interface().(encoding.TextUnmarshaler); ok {
				_ = unmarshaler.UnmarshalText([]byte(value))
			}
		}
	}
}
