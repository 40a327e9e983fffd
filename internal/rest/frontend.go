package rest

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// FrontendHandler serves the built single-page client. Unknown paths fall
// back to index.html so client-side routing keeps working after a reload.
type FrontendHandler struct {
	dir   string
	index string
}

func NewFrontendHandler(dir, index string) *FrontendHandler {
	return &FrontendHandler{dir: dir, index: index}
}

func (h *FrontendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqPath := strings.TrimPrefix(filepath.Clean(r.URL.Path), "/")
	if reqPath == "" || reqPath == "." {
		reqPath = h.index
	}

	full := filepath.Join(h.dir, reqPath)
	if !strings.HasPrefix(full, filepath.Clean(h.dir)) {
		http.NotFound(w, r)
		return
	}

	if info, err := os.Stat(full); err != nil || info.IsDir() {
		full = filepath.Join(h.dir, h.index)
	}
	http.ServeFile(w, r, full)
}
