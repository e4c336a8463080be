package server

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/timeslice/pkg/errors"
	"github.com/matzehuels/timeslice/pkg/stats"
)

// DayResponse is the body returned for a single day.
type DayResponse struct {
	Date    string       `json:"date"`
	Minutes stats.Record `json:"minutes"`
	Total   int          `json:"total"`
}

func newDayResponse(key string, rec stats.Record) DayResponse {
	return DayResponse{Date: key, Minutes: rec, Total: rec.Total()}
}

func (s *Server) dayKey(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "date")
	day, err := stats.ParseDay(raw, s.now())
	if err != nil {
		return "", errors.New(errors.ErrCodeInvalidDate, "invalid date %q (want YYYY.MM.DD)", raw)
	}
	return stats.DateKey(day), nil
}

func (s *Server) handleGetDay(w http.ResponseWriter, r *http.Request) {
	key, err := s.dayKey(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	rec, err := s.runner.Store.Get(r.Context(), key)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newDayResponse(key, rec))
}

func (s *Server) handlePutDay(w http.ResponseWriter, r *http.Request) {
	key, err := s.dayKey(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, s.logger, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	rec, err := decodeDay(body)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.runner.PutDay(r.Context(), key, rec); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newDayResponse(key, rec))
}

func (s *Server) handleDeleteDay(w http.ResponseWriter, r *http.Request) {
	key, err := s.dayKey(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.runner.DeleteDay(r.Context(), key); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeDay reads a JSON object of category to duration, keeping key order.
// String values are parsed as durations ("1h30m", "45m", "1.5"); numbers are
// minutes.
func decodeDay(body []byte) (stats.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	invalid := func(format string, args ...any) error {
		return errors.New(errors.ErrCodeInvalidInput, format, args...)
	}

	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return stats.Record{}, invalid("body must be a JSON object of category to duration")
	}
	rec := stats.NewRecord()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return stats.Record{}, invalid("invalid JSON body: %v", err)
		}
		category, _ := tok.(string)

		tok, err = dec.Token()
		if err != nil {
			return stats.Record{}, invalid("invalid JSON body: %v", err)
		}
		var minutes int
		switch v := tok.(type) {
		case string:
			minutes = stats.ParseDuration(v)
		case json.Number:
			f, err := v.Float64()
			if err != nil || f < 0 {
				return stats.Record{}, invalid("invalid minutes for %q: %s", category, v)
			}
			minutes = int(math.Round(f))
		default:
			return stats.Record{}, invalid("value for %q must be a duration string or minutes", category)
		}
		rec.Set(category, minutes)
	}
	if _, err := dec.Token(); err != nil {
		return stats.Record{}, invalid("invalid JSON body: %v", err)
	}
	return rec, nil
}
