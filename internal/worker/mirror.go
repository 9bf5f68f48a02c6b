// Package worker runs the mirror pipeline: saved-record messages from the
// queue are written into a secondary ledger backend, typically the Google
// Sheets mirror.
package worker

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fintone/internal/amqp"
	"fintone/internal/ledger"
	"fintone/internal/log"
)

// Consumer is the queue side the worker drains. *amqp.Client implements it.
type Consumer interface {
	ConsumeRecordSaved(ctx context.Context, handler func(*amqp.RecordSavedMessage) error) error
}

// Mirror copies records from the primary store into the mirror store. The
// mirror's own duplicate check makes redelivered messages harmless.
type Mirror struct {
	primary  ledger.Reader
	mirror   ledger.Saver
	consumer Consumer
	logger   *log.Logger

	// backfillInterval of zero disables the periodic catch-up pass.
	backfillInterval time.Duration
}

func NewMirror(primary ledger.Reader, mirror ledger.Saver, consumer Consumer, backfillInterval time.Duration, logger *log.Logger) *Mirror {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Mirror{
		primary:          primary,
		mirror:           mirror,
		consumer:         consumer,
		backfillInterval: backfillInterval,
		logger:           logger.WithComponent(log.ComponentWorker),
	}
}

// Run consumes until the context ends. A startup backfill covers messages
// lost while the worker was down; the optional ticker repeats it.
func (m *Mirror) Run(ctx context.Context) error {
	if err := m.Backfill(ctx); err != nil {
		m.logger.WarnContext(ctx, "startup backfill failed", log.FieldError, err.Error())
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return m.consumer.ConsumeRecordSaved(ctx, func(msg *amqp.RecordSavedMessage) error {
			return m.HandleRecordSaved(ctx, msg)
		})
	})

	if m.backfillInterval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(m.backfillInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
					if err := m.Backfill(ctx); err != nil {
						m.logger.WarnContext(ctx, "periodic backfill failed", log.FieldError, err.Error())
					}
				}
			}
		})
	}

	return g.Wait()
}

// HandleRecordSaved writes one queued record into the mirror.
func (m *Mirror) HandleRecordSaved(ctx context.Context, msg *amqp.RecordSavedMessage) error {
	saved, err := m.mirror.Save(ctx, msg.Record)
	if err != nil {
		return fmt.Errorf("mirror record: %w", err)
	}
	if !saved {
		m.logger.InfoContext(ctx, "record already mirrored", log.FieldRecordKey, msg.Record.Key())
		return nil
	}
	m.logger.InfoContext(ctx, "mirrored record",
		log.FieldRecordKey, msg.Record.Key(),
		log.FieldType, string(msg.Record.Type))
	return nil
}

// Backfill copies every primary record into the mirror, relying on the
// mirror's duplicate check to skip what is already there.
func (m *Mirror) Backfill(ctx context.Context) error {
	records, err := m.primary.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("read primary records: %w", err)
	}
	var copied int
	for _, r := range records {
		saved, err := m.mirror.Save(ctx, r)
		if err != nil {
			return fmt.Errorf("backfill record %s: %w", r.Key(), err)
		}
		if saved {
			copied++
		}
	}
	if copied > 0 {
		m.logger.InfoContext(ctx, "backfill copied records", "count", copied)
	}
	return nil
}
