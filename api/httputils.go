package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"balloting-backend/errors"
)

const contentTypeApplicationJSON = "application/json"

var ErrorsToStatus = map[uint]int{
	100: http.StatusForbidden,
	101: http.StatusConflict,
	102: http.StatusConflict,
	103: http.StatusConflict,
	104: http.StatusConflict,
	105: http.StatusConflict,
	106: http.StatusConflict,
	107: http.StatusConflict,
	108: http.StatusConflict,
	109: http.StatusConflict,
	110: http.StatusConflict,
	200: http.StatusBadRequest,
	201: http.StatusForbidden,
	202: http.StatusConflict,
	203: http.StatusBadRequest,
	204: http.StatusInternalServerError,
	205: http.StatusInternalServerError,
	206: http.StatusServiceUnavailable,
	207: http.StatusInternalServerError,
	208: http.StatusServiceUnavailable,
	300: http.StatusBadRequest,
	301: http.StatusInternalServerError,
	302: http.StatusBadGateway,
	303: http.StatusNotFound,
}

func StatusCode(err error) int {
	var e *errors.Error
	if stderrors.As(err, &e) {
		if code, found := ErrorsToStatus[e.Code]; found {
			return code
		}
	}
	return http.StatusInternalServerError
}

// WriteJSON writes the value v to the http response as json encoding
func WriteJSON(w http.ResponseWriter, code int, v interface{}) error {
	w.Header().Set("Content-Type", contentTypeApplicationJSON)
	w.WriteHeader(code)

	bs, err := json.Marshal(v)
	if err != nil {
		return err
	}

	if _, err := w.Write(bs); err != nil {
		return err
	}

	return nil
}

func MustWriteJSON(w http.ResponseWriter, code int, v interface{}) {
	if err := WriteJSON(w, code, v); err != nil {
		log.Error("failed to write response", "error", err)
	}
}

// WriteJSONError writes err as a coded error body. Errors without a code
// are reported with code 0.
func WriteJSONError(w http.ResponseWriter, err error) {
	var e *errors.Error
	if !stderrors.As(err, &e) {
		e = errors.NewError(0, err.Error())
	}
	MustWriteJSON(w, StatusCode(err), e)
}
