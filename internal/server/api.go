// ABOUTME: HTTP JSON handlers for the note table
// ABOUTME: Serves table entries, single lookups and the table/calculator cross-check
package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/Resonate-Protocol/tonetable/internal/protocol"
	"github.com/Resonate-Protocol/tonetable/internal/version"
	"github.com/Resonate-Protocol/tonetable/pkg/notes"
)

// FrequencyResponse answers /api/frequency
type FrequencyResponse struct {
	Note      string  `json:"note"`
	Octave    int     `json:"octave"`
	Name      string  `json:"name"`
	Frequency float64 `json:"frequency"`
	Method    string  `json:"method"`
}

// VerifyResponse answers /api/verify
type VerifyResponse struct {
	Entries    int              `json:"entries"`
	Tolerance  float64          `json:"tolerance"`
	Mismatches []notes.Mismatch `json:"mismatches"`
}

// ErrorResponse is the JSON body of failed requests
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"server_id": s.serverID,
		"version":   version.Version,
	})
}

func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, notes.Entries())
}

func (s *Server) handleFrequency(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	note := q.Get("note")
	method := q.Get("method")
	if method == "" {
		method = protocol.MethodTable
	}

	octave, err := strconv.Atoi(q.Get("octave"))
	if note == "" || err != nil {
		writeError(w, http.StatusBadRequest, protocol.ErrorBadRequest, "note and integer octave are required")
		return
	}

	hz, ok, valid := resolve(note, octave, method)
	if !valid {
		writeError(w, http.StatusBadRequest, protocol.ErrorBadRequest, "method must be table or calculated")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, protocol.ErrorNotFound, (&notes.NotFoundError{Note: note, Octave: octave}).Error())
		return
	}

	writeJSON(w, http.StatusOK, FrequencyResponse{
		Note:      note,
		Octave:    octave,
		Name:      notes.Name(note, octave),
		Frequency: hz,
		Method:    method,
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	mismatches := notes.Verify()
	if mismatches == nil {
		mismatches = []notes.Mismatch{}
	}
	writeJSON(w, http.StatusOK, VerifyResponse{
		Entries:    len(notes.Entries()),
		Tolerance:  notes.Tolerance,
		Mismatches: mismatches,
	})
}

// resolve looks a pair up by method; valid is false for unknown methods
func resolve(note string, octave int, method string) (hz float64, ok, valid bool) {
	switch method {
	case protocol.MethodTable, "":
		hz, ok = notes.Lookup(note, octave)
	case protocol.MethodCalculated:
		hz, ok = notes.Calculate(note, octave)
	default:
		return 0, false, false
	}
	return hz, ok, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("error encoding response")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}
