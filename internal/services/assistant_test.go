package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"fintone/internal/amqp"
	"fintone/internal/core"
	"fintone/internal/ledger/memory"
	"fintone/internal/transcribe"
)

var frozenNow = func() time.Time {
	return time.Date(2024, time.June, 10, 15, 0, 0, 0, time.UTC)
}

type capturePublisher struct {
	messages []*amqp.RecordSavedMessage
	err      error
}

func (p *capturePublisher) PublishRecordSaved(_ context.Context, msg *amqp.RecordSavedMessage) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

type stubNarrator struct {
	text string
	err  error
}

func (s stubNarrator) Summarize(_ context.Context, _ []core.Record, _ string) (string, error) {
	return s.text, s.err
}

type stubTranscriber struct {
	text string
	err  error
}

func (s stubTranscriber) Transcribe(_ context.Context, _ []byte, _ string) (string, error) {
	return s.text, s.err
}

func (s stubTranscriber) TranscribeFile(_ context.Context, _ string) (string, error) {
	return s.text, s.err
}

func TestRecordStatement(t *testing.T) {
	store := memory.New()
	pub := &capturePublisher{}
	assistant := New(store, nil, WithPublisher(pub), WithClock(frozenNow))

	outcome, err := assistant.RecordStatement(context.Background(), "I spent $50 on groceries today")
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.Saved {
		t.Error("first statement should save")
	}
	if outcome.Record.Type != core.Loss {
		t.Errorf("Type = %s", outcome.Record.Type)
	}
	if outcome.Record.Amount.String() != "50" {
		t.Errorf("Amount = %s", outcome.Record.Amount)
	}
	if outcome.Record.Date.ISO() != "2024-06-10" {
		t.Errorf("Date = %s", outcome.Record.Date.ISO())
	}
	if len(pub.messages) != 1 {
		t.Fatalf("published %d messages", len(pub.messages))
	}
	if pub.messages[0].Record.Key() != outcome.Record.Key() {
		t.Error("published record differs from saved record")
	}
}

func TestRecordStatementDuplicate(t *testing.T) {
	store := memory.New()
	pub := &capturePublisher{}
	assistant := New(store, nil, WithPublisher(pub), WithClock(frozenNow))

	ctx := context.Background()
	if _, err := assistant.RecordStatement(ctx, "I spent $50 on groceries today"); err != nil {
		t.Fatal(err)
	}
	outcome, err := assistant.RecordStatement(ctx, "I spent $50 on groceries today")
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Saved {
		t.Error("duplicate statement should not save")
	}
	if len(pub.messages) != 1 {
		t.Errorf("duplicates must not publish, got %d messages", len(pub.messages))
	}
}

func TestRecordStatementPublishFailureIsNonFatal(t *testing.T) {
	store := memory.New()
	pub := &capturePublisher{err: errors.New("broker down")}
	assistant := New(store, nil, WithPublisher(pub), WithClock(frozenNow))

	outcome, err := assistant.RecordStatement(context.Background(), "earned $200 from consulting today")
	if err != nil {
		t.Fatalf("publish failure should not fail the save: %v", err)
	}
	if !outcome.Saved {
		t.Error("record should still be saved")
	}
	all, _ := store.ReadAll(context.Background())
	if len(all) != 1 {
		t.Errorf("store holds %d records", len(all))
	}
}

func TestAskWithoutNarrator(t *testing.T) {
	store := memory.New()
	assistant := New(store, nil, WithClock(frozenNow))
	ctx := context.Background()
	if _, err := assistant.RecordStatement(ctx, "I spent $50 on groceries today"); err != nil {
		t.Fatal(err)
	}

	result, err := assistant.Ask(ctx, "How much did I spend today?")
	if err != nil {
		t.Fatal(err)
	}
	if result.Intent.Kind != core.IntentDateQuery {
		t.Errorf("Kind = %s", result.Intent.Kind)
	}
	if !strings.Contains(result.Text, "$50.00") {
		t.Errorf("answer missing amount:\n%s", result.Text)
	}
}

func TestAskNarratorRephrasesProse(t *testing.T) {
	store := memory.New()
	assistant := New(store, nil,
		WithNarrator(stubNarrator{text: "You spent fifty dollars."}),
		WithClock(frozenNow))
	ctx := context.Background()
	if _, err := assistant.RecordStatement(ctx, "I spent $50 on groceries today"); err != nil {
		t.Fatal(err)
	}

	result, err := assistant.Ask(ctx, "How much did I spend today?")
	if err != nil {
		t.Fatal(err)
	}
	if result.Text != "You spent fifty dollars." {
		t.Errorf("Text = %q", result.Text)
	}
	if result.Report == nil {
		t.Error("structured report must survive narration")
	}
}

func TestAskNarratorFailureKeepsReportText(t *testing.T) {
	store := memory.New()
	assistant := New(store, nil,
		WithNarrator(stubNarrator{err: errors.New("llm down")}),
		WithClock(frozenNow))
	ctx := context.Background()
	if _, err := assistant.RecordStatement(ctx, "I spent $50 on groceries today"); err != nil {
		t.Fatal(err)
	}

	result, err := assistant.Ask(ctx, "How much did I spend today?")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result.Text, "$50.00") {
		t.Errorf("deterministic text lost:\n%s", result.Text)
	}
}

func TestAskUnknownQuestion(t *testing.T) {
	assistant := New(memory.New(), nil, WithClock(frozenNow))
	result, err := assistant.Ask(context.Background(), "sing me a song")
	if err != nil {
		t.Fatal(err)
	}
	if result.Report != nil {
		t.Errorf("Report = %T, want nil", result.Report)
	}
	if !strings.Contains(result.Text, "I couldn't understand your query") {
		t.Errorf("Text = %q", result.Text)
	}
}

func TestRecordAudio(t *testing.T) {
	store := memory.New()
	assistant := New(store, nil,
		WithTranscriber(stubTranscriber{text: "I spent 50 dollars on groceries today"}),
		WithClock(frozenNow))

	text, outcome, err := assistant.RecordAudio(context.Background(), []byte("audio"), "a.wav")
	if err != nil {
		t.Fatal(err)
	}
	if text != "I spent 50 dollars on groceries today" {
		t.Errorf("text = %q", text)
	}
	if !outcome.Saved || outcome.Record.Type != core.Loss {
		t.Errorf("outcome = %+v", outcome)
	}
}

func TestRecordAudioTranscriptionFailureIsFatal(t *testing.T) {
	store := memory.New()
	terr := &transcribe.TranscriptionError{Reason: "endpoint returned 400"}
	assistant := New(store, nil,
		WithTranscriber(stubTranscriber{err: terr}),
		WithClock(frozenNow))

	_, _, err := assistant.RecordAudio(context.Background(), []byte("audio"), "a.wav")
	var got *transcribe.TranscriptionError
	if !errors.As(err, &got) {
		t.Fatalf("error type = %T", err)
	}
	all, _ := store.ReadAll(context.Background())
	if len(all) != 0 {
		t.Error("nothing should be recorded when transcription fails")
	}
}
