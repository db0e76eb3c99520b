package response

import (
	"encoding/json"
	"net/http"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/logger"
	"go.uber.org/zap"
)

type ErrorBody struct {
	Response       string            `json:"response"`
	HTTPStatusCode int               `json:"http_status_code"`
	ResStatus      string            `json:"res_status"`
	Errors         map[string]string `json:"errors,omitempty"`
}

func JSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

func OK(w http.ResponseWriter, body interface{}) {
	JSON(w, http.StatusOK, body)
}

func Created(w http.ResponseWriter, body interface{}) {
	JSON(w, http.StatusCreated, body)
}

// Error writes err in the catalog error envelope. Unexpected errors are logged
// and masked as INTERNAL.
func Error(w http.ResponseWriter, r *http.Request, log logger.ZapLogger, err error) {
	e, ok := apperror.As(err)
	if !ok {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		e = apperror.Internal()
	}

	status := apperror.HTTPStatus(e.Code)
	JSON(w, status, ErrorBody{
		Response:       e.Message,
		HTTPStatusCode: status,
		ResStatus:      string(e.Code),
		Errors:         e.Fields,
	})
}

// DecodeJSON decodes the request body into dst and reports a malformed body as
// INVALID_ARGUMENT.
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return apperror.InvalidArgument("invalid JSON body: %v", err)
	}
	return nil
}
