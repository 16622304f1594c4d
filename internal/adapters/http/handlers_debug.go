package web

import (
	"net/http"
	"strconv"
	"time"
)

// handleHealthz reports liveness.
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// handlePerf returns request and query timing stats as JSON.
// ?minutes= sets the window (default 15), ?top= the list length (default 10).
func handlePerf(w http.ResponseWriter, r *http.Request) {
	if perfCollector == nil {
		http.NotFound(w, r)
		return
	}
	minutes := queryInt(r, "minutes", 15)
	top := queryInt(r, "top", 10)
	since := time.Now().Add(-time.Duration(minutes) * time.Minute)
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(since, top))
}

func queryInt(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
