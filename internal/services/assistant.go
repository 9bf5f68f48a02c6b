// Package services composes the extraction and query engines with a ledger
// store, the optional mirror publisher and the optional narrators.
package services

import (
	"context"
	"fmt"
	"time"

	"fintone/internal/amqp"
	"fintone/internal/core"
	"fintone/internal/extract"
	"fintone/internal/ledger"
	"fintone/internal/log"
	"fintone/internal/narrate"
	"fintone/internal/query"
	"fintone/internal/transcribe"
)

// Publisher announces saved records to the mirror pipeline.
type Publisher interface {
	PublishRecordSaved(ctx context.Context, msg *amqp.RecordSavedMessage) error
}

// Assistant is the application service behind the HTTP handlers and the
// CLI. Publisher, narrator and transcriber are optional; a nil narrator
// keeps the deterministic report text.
type Assistant struct {
	extractor   *extract.Engine
	queries     *query.Engine
	store       ledger.Store
	publisher   Publisher
	narrator    narrate.Summarizer
	transcriber transcribe.Transcriber
	logger      *log.Logger

	// now is swapped in tests to freeze relative dates.
	now func() time.Time
}

type Option func(*Assistant)

func WithPublisher(p Publisher) Option {
	return func(a *Assistant) { a.publisher = p }
}

func WithNarrator(n narrate.Summarizer) Option {
	return func(a *Assistant) { a.narrator = n }
}

func WithTranscriber(t transcribe.Transcriber) Option {
	return func(a *Assistant) { a.transcriber = t }
}

func WithClock(now func() time.Time) Option {
	return func(a *Assistant) { a.now = now }
}

func New(store ledger.Store, logger *log.Logger, opts ...Option) *Assistant {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	a := &Assistant{
		extractor: extract.NewEngine(logger),
		queries:   query.NewEngine(store, logger),
		store:     store,
		logger:    logger.WithComponent(log.ComponentApp),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RecordOutcome reports what happened to a submitted statement.
type RecordOutcome struct {
	Record core.Record `json:"record"`
	Saved  bool        `json:"saved"`
}

// RecordStatement extracts a record from the statement and saves it. A
// duplicate returns Saved=false without error. Publishing to the mirror
// queue is best effort; the record is already durable when it fails.
func (a *Assistant) RecordStatement(ctx context.Context, statement string) (RecordOutcome, error) {
	record := a.extractor.Extract(statement, a.now())
	saved, err := a.store.Save(ctx, record)
	if err != nil {
		return RecordOutcome{Record: record}, fmt.Errorf("save record: %w", err)
	}
	a.logger.InfoContext(ctx, "recorded statement",
		log.FieldType, string(record.Type),
		log.FieldAmount, record.Amount.String(),
		log.FieldDate, record.Date.ISO())

	if saved && a.publisher != nil {
		msg := amqp.NewRecordSavedMessage(record, "statement")
		if perr := a.publisher.PublishRecordSaved(ctx, msg); perr != nil {
			a.logger.WarnContext(ctx, "mirror publish failed", log.FieldError, perr.Error())
		}
	}
	return RecordOutcome{Record: record, Saved: saved}, nil
}

// Ask answers a ledger question. With a narrator configured the report
// prose is rephrased; the structured report stays untouched either way.
func (a *Assistant) Ask(ctx context.Context, question string) (query.Result, error) {
	result, err := a.queries.Answer(ctx, question, a.now())
	if err != nil {
		return query.Result{}, err
	}
	if a.narrator == nil || result.Report == nil {
		return result, nil
	}

	records := reportRecords(result.Report)
	if len(records) == 0 {
		return result, nil
	}
	text, nerr := a.narrator.Summarize(ctx, records, question)
	if nerr != nil {
		a.logger.WarnContext(ctx, "narration failed, keeping report text", log.FieldError, nerr.Error())
		return result, nil
	}
	result.Text = text
	return result, nil
}

// RecordAudio transcribes the audio and records the resulting statement.
// Transcription failures are fatal and surfaced verbatim; nothing is saved
// from audio the service could not understand.
func (a *Assistant) RecordAudio(ctx context.Context, audio []byte, filename string) (string, RecordOutcome, error) {
	if a.transcriber == nil {
		return "", RecordOutcome{}, &transcribe.TranscriptionError{Reason: "no transcriber configured"}
	}
	text, err := a.transcriber.Transcribe(ctx, audio, filename)
	if err != nil {
		return "", RecordOutcome{}, err
	}
	outcome, err := a.RecordStatement(ctx, text)
	return text, outcome, err
}

// Records exposes the underlying reader for listing endpoints.
func (a *Assistant) Records() ledger.Reader { return a.store }

// reportRecords collects the raw records out of whichever report shape the
// query engine produced.
func reportRecords(report any) []core.Record {
	switch r := report.(type) {
	case core.MonthlyReport:
		return append(append([]core.Record{}, r.Profits...), r.Losses...)
	case core.DateReport:
		return r.Records
	case core.TypeReport:
		return r.Records
	default:
		return nil
	}
}
