package api

import (
	"encoding/json"
	"net/http"

	"github.com/mvollan/stirlingforge/pkg/design"
	"github.com/mvollan/stirlingforge/pkg/errors"
)

// errorBody is the JSON error envelope.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// statusFor maps error codes to HTTP status codes. Validation problems are
// the caller's fault; physics and layout violations are unprocessable
// parameter sets rather than malformed requests.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidOptions, errors.ErrCodeInvalidParameter,
		errors.ErrCodeDuplicateParameter, errors.ErrCodeUnitMismatch:
		return http.StatusBadRequest
	case errors.ErrCodePhysicallyInvalid, errors.ErrCodeLayoutOverlap:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeSnapshotNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	var body errorBody
	body.Error.Code = string(errors.GetCode(err))
	body.Error.Message = errors.UserMessage(err)
	writeJSON(w, statusFor(err), body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeSnapshot uses the deterministic snapshot encoding so API responses
// match exported files byte for byte.
func writeSnapshot(w http.ResponseWriter, status int, snap *design.Snapshot) {
	data, err := design.MarshalSnapshot(snap)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "encode snapshot"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
