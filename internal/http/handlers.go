package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"fintone/internal/core"
	"fintone/internal/log"
	"fintone/internal/transcribe"
)

const (
	maxStatementBytes = 64 << 10
	maxAudioBytes     = 16 << 20
)

type statementRequest struct {
	Statement string `json:"statement"`
}

type askRequest struct {
	Question string `json:"question"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type transcriptionResponse struct {
	Text   string      `json:"text"`
	Record core.Record `json:"record"`
	Saved  bool        `json:"saved"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// handleStatements records one natural-language money statement.
// New records return 201, duplicates 200 with saved=false.
func (s *Server) handleStatements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req statementRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxStatementBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Statement) == "" {
		writeError(w, http.StatusBadRequest, "statement is required")
		return
	}

	outcome, err := s.assistant.RecordStatement(r.Context(), req.Statement)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "record statement failed", log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "failed to record statement")
		return
	}

	status := http.StatusOK
	if outcome.Saved {
		status = http.StatusCreated
		s.ledgerGen.Add(1)
	}
	writeJSON(w, status, outcome)
}

// handleAsk answers a ledger question, serving repeated questions from the
// answer cache until the next save.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req askRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxStatementBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	cacheKey := fmt.Sprintf("%d|%s", s.ledgerGen.Load(), strings.ToLower(strings.TrimSpace(req.Question)))
	if cached, ok := s.answerCache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	result, err := s.assistant.Ask(r.Context(), req.Question)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "ask failed", log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "failed to answer question")
		return
	}
	s.answerCache.Set(cacheKey, result)
	writeJSON(w, http.StatusOK, result)
}

// handleTranscriptions accepts an audio upload ("audio" form field),
// transcribes it and records the resulting statement. Transcription
// failures return 422 with the verbatim error.
func (s *Server) handleTranscriptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read audio")
		return
	}

	text, outcome, err := s.assistant.RecordAudio(r.Context(), audio, header.Filename)
	if err != nil {
		var terr *transcribe.TranscriptionError
		if errors.As(err, &terr) {
			writeError(w, http.StatusUnprocessableEntity, terr.Error())
			return
		}
		s.logger.ErrorContext(r.Context(), "record audio failed", log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "failed to record audio")
		return
	}

	status := http.StatusOK
	if outcome.Saved {
		status = http.StatusCreated
		s.ledgerGen.Add(1)
	}
	writeJSON(w, status, transcriptionResponse{Text: text, Record: outcome.Record, Saved: outcome.Saved})
}

// handleRecords lists ledger records. Filters: type, date (ISO), or
// year+month. Filters are mutually exclusive; date wins over month.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	reader := s.assistant.Records()
	q := r.URL.Query()

	var (
		records []core.Record
		err     error
	)
	switch {
	case q.Get("date") != "":
		var d core.Date
		d, err = core.ParseDate(q.Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		records, err = reader.ReadByDate(r.Context(), d)
	case q.Get("year") != "" || q.Get("month") != "":
		year, yerr := strconv.Atoi(q.Get("year"))
		month, merr := strconv.Atoi(q.Get("month"))
		if yerr != nil || merr != nil || month < 1 || month > 12 {
			writeError(w, http.StatusBadRequest, "invalid year/month filter")
			return
		}
		records, err = reader.ReadByMonth(r.Context(), year, month)
	case q.Get("type") != "":
		t := core.TransactionType(strings.ToLower(q.Get("type")))
		if !t.Valid() {
			writeError(w, http.StatusBadRequest, "invalid type, expected profit or loss")
			return
		}
		records, err = reader.ReadByType(r.Context(), t)
	default:
		records, err = reader.ReadAll(r.Context())
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "list records failed", log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "failed to read records")
		return
	}

	// A type filter combined with date/month narrows the result further.
	if t := core.TransactionType(strings.ToLower(q.Get("type"))); t.Valid() && (q.Get("date") != "" || q.Get("month") != "") {
		filtered := records[:0:0]
		for _, rec := range records {
			if rec.Type == t {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	if records == nil {
		records = []core.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"count":   len(records),
	})
}
