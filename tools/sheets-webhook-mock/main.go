package main

import (
	"encoding/json"
	"net/http"
	"os"
	"sync"

	"breaktime.service/internal/worker/sheets"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// rowStore remembers appended rows by RowID so redelivered events are acknowledged
// without being written twice.
type rowStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
	rows int
}

func (s *rowStore) handler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req sheets.AppendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	if len(req.Header) != len(req.Values) {
		http.Error(w, "Header and values differ in length", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	_, dup := s.seen[req.RowID]
	if !dup {
		s.seen[req.RowID] = struct{}{}
		s.rows++
	}
	total := s.rows
	s.mu.Unlock()

	event := log.Info().Str("sheet", req.Sheet).Str("row_id", req.RowID).Int("rows", total)
	if dup {
		event.Msg("Duplicate row ignored")
	} else {
		row := zerolog.Dict()
		for i, h := range req.Header {
			row = row.Interface(h, req.Values[i])
		}
		event.Dict("row", row).Msg("Row appended")
	}
	w.WriteHeader(http.StatusOK)
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	addr := ":8081"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	store := &rowStore{seen: map[string]struct{}{}}
	http.HandleFunc("/", store.handler)

	log.Info().Str("addr", addr).Msg("Sheets webhook mock starting")
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatal().Err(err).Msg("Sheets webhook mock stopped")
	}
}
