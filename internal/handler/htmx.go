package handler

import (
	"encoding/json"
	"net/http"
)

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func htmxError(w http.ResponseWriter, msg string, status int) {
	htmxToast(w, msg, "error")
	w.WriteHeader(status)
}

func htmxToast(w http.ResponseWriter, msg string, toastType string) {
	showToast := map[string]string{
		"message": msg,
	}
	if toastType != "" {
		showToast["type"] = toastType
	}

	payload := map[string]map[string]string{
		"showToast": showToast,
	}
	if data, err := json.Marshal(payload); err == nil {
		w.Header().Set("HX-Trigger", string(data))
	}
}
