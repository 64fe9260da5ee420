// Package http holds the REST handlers. Each handler is a closure over
// its dependencies (store, selection engine, cache) so the router in
// cmd/server wires everything explicitly.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mathquest/practice/internal/question"
	"github.com/mathquest/practice/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, question.ErrNotFound), errors.Is(err, session.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		// Storage failures surface as a generic retry message; the
		// detail goes to the log, not to the client.
		slog.Error("request failed", "err", err)
		http.Error(w, "something went wrong, please try again", http.StatusInternalServerError)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
