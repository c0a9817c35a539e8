package api

import (
	"encoding/json"
	"net/http"
)

// Response 成功回應的統一外殼
type Response struct {
	Data any `json:"data"`
	Meta any `json:"meta,omitempty"`
}

// ResponseError 錯誤回應的統一外殼
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func SuccessJSON(w http.ResponseWriter, data any, meta any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(Response{Data: data, Meta: meta})
}

func CreatedJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(Response{Data: data})
}

func ErrorJSON(w http.ResponseWriter, status int, err error, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := ResponseError{
		Code:    status,
		Message: message,
	}
	if err != nil {
		resp.Detail = err.Error()
	}
	json.NewEncoder(w).Encode(resp)
}
