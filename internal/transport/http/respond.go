package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"

	"voting/internal/domain"
	"voting/internal/dto"
	"voting/internal/observability/middleware"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrState),
		errors.Is(err, domain.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the error's kind mapped to a status. Unclassified
// errors are logged and hidden behind a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", append([]any{
			"method", r.Method, "path", r.URL.Path, "error", err,
		}, middleware.LogAttrs(r.Context())...)...)
		writeJSON(w, status, dto.ErrorResponse{Error: "internal server error"})
		return
	}

	body := dto.ErrorResponse{Error: err.Error()}
	var derr *domain.Error
	if errors.As(err, &derr) {
		body.Error = derr.Msg
		body.Details = derr.Fields
	}
	writeJSON(w, status, body)
}

// decodeJSON reads the request body into v. An empty body leaves v at its
// zero value so missing fields are reported by validation. A value of the
// wrong JSON type is reported on its field.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var ute *json.UnmarshalTypeError
		if errors.As(err, &ute) {
			field := ute.Field
			if field == "" {
				field = "non_field_errors"
			}
			return domain.FieldError(field, typeMessage(ute.Type.Kind()))
		}
		return domain.Validation("invalid JSON body", nil)
	}
	return nil
}

func typeMessage(k reflect.Kind) string {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "A valid integer is required."
	case reflect.Bool:
		return "Must be a valid boolean."
	case reflect.String:
		return "Not a valid string."
	default:
		return "Invalid data."
	}
}

func topicID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.NotFound("topic not found")
	}
	return uint(id), nil
}
