package handlers

import (
	"io"
	"net/http"
)

const rootBanner = "Api de Catálogos -- 2024"

// Root answers with a plain text banner. It needs no authentication.
func Root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, rootBanner)
}
