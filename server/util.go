package server

import (
	"encoding/json"
	"net/http"
)

// newEnvelope builds the {success,data,error} JSON shape every plan
// introspection handler responds with.
func newEnvelope(success bool, data interface{}, errorMsg string) ResponseModel {
	return ResponseModel{Success: success, Data: data, Error: errorMsg}
}

// SendResponse writes a 200 envelope. Handlers that need a non-200 failure
// status use SendResponseWithHeader instead.
func SendResponse(w http.ResponseWriter, success bool, data interface{}, errorMsg string) {
	env := newEnvelope(success, data, errorMsg)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(env); err != nil {
		http.Error(w, `{"success":false,"error":"Internal Server Error"}`, http.StatusInternalServerError)
	}
}

// SendResponseWithHeader is SendResponse plus caller-supplied response
// headers and an explicit failure status code (400 if statusCode is 0).
func SendResponseWithHeader(w http.ResponseWriter, success bool, data interface{}, errorMsg string, statusCode int, extraHeaders map[string]string) {
	env := newEnvelope(success, data, errorMsg)
	w.Header().Set("Content-Type", "application/json")
	for key, value := range extraHeaders {
		w.Header().Set(key, value)
	}
	w.WriteHeader(responseStatus(success, statusCode))
	if err := json.NewEncoder(w).Encode(env); err != nil {
		http.Error(w, `{"success":false,"error":"Internal Server Error"}`, http.StatusInternalServerError)
	}
}

func responseStatus(success bool, statusCode int) int {
	if success {
		return http.StatusOK
	}
	if statusCode != 0 {
		return statusCode
	}
	return http.StatusBadRequest
}
