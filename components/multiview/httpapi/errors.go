package httpapi

import (
	"encoding/json"
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-multiview/components/multiview"
)

// MapMultiviewError converts the multiview error kinds into categorized
// go-errors values carrying an HTTP status.
func MapMultiviewError(err error) *goerrors.Error {
	var (
		category goerrors.Category
		code     int
		text     string
	)
	switch {
	case multiview.IsValidation(err):
		category, code, text = goerrors.CategoryValidation, http.StatusBadRequest, "VALIDATION_FAILED"
	case multiview.IsNotFound(err):
		category, code, text = goerrors.CategoryNotFound, http.StatusNotFound, "NOT_FOUND"
	case multiview.IsPrecondition(err):
		category, code, text = goerrors.CategoryConflict, http.StatusConflict, "PRECONDITION_FAILED"
	default:
		return nil
	}
	return goerrors.Wrap(err, category, err.Error()).WithCode(code).WithTextCode(text)
}

// ErrorMappers lists the mappers applied by AsError.
func ErrorMappers() []goerrors.ErrorMapper {
	return []goerrors.ErrorMapper{MapMultiviewError, goerrors.MapHTTPErrors}
}

// AsError normalizes err into a go-errors value. Unknown errors become 500s.
func AsError(err error) *goerrors.Error {
	return goerrors.MapToError(err, ErrorMappers())
}

// StatusCode returns the HTTP status for err.
func StatusCode(err error) int {
	mapped := AsError(err)
	if mapped == nil || mapped.Code == 0 {
		return http.StatusInternalServerError
	}
	return mapped.Code
}

// BadRequest marks a transport level decode failure.
func BadRequest(err error) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body").
		WithCode(http.StatusBadRequest).
		WithTextCode("BAD_REQUEST")
}

// ErrorResponse builds the JSON error envelope for err.
func ErrorResponse(err error) goerrors.ErrorResponse {
	return AsError(err).ToErrorResponse(false, nil)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusCode(err), ErrorResponse(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
