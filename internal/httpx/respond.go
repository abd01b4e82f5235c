package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/lucasvieira/go-stock-orders/internal/fault"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps engine error kinds onto status codes: not-found 404,
// validation and insufficient stock 400, conflicts 409, everything else 500.
func writeError(w http.ResponseWriter, log *zap.SugaredLogger, err error) {
	var (
		nf *fault.NotFound
		ve *fault.Validation
		is *fault.InsufficientStock
		cf *fault.Conflict
	)
	switch {
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": err.Error()})
	case errors.As(err, &ve), errors.As(err, &is):
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
	case errors.As(err, &cf):
		writeJSON(w, http.StatusConflict, map[string]string{"detail": err.Error()})
	default:
		log.Errorw("internal error", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "internal server error"})
	}
}

// pagination reads offset/limit query params, empty values defaulting to 0
// and 100.
func pagination(r *http.Request) (offset, limit int, err error) {
	offset, err = intParam(r.URL.Query().Get("offset"), 0)
	if err != nil {
		return 0, 0, fault.Validationf("offset must be an integer")
	}
	limit, err = intParam(r.URL.Query().Get("limit"), 100)
	if err != nil {
		return 0, 0, fault.Validationf("limit must be an integer")
	}
	return offset, limit, nil
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
