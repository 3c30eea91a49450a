// Package syncer bulk-submits a chat transcript to the memory service.
//
// Sync walks the transcript in order, skips entries whose body is empty
// after trimming, and ships the rest in fixed-size batches with a pacing
// delay between them so the service is never flooded. Batches are
// sequential, never concurrent, and failure isolation is per batch: a
// rejected batch counts into the error total and the run moves on.
package syncer

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/emberco/recall/pkg/chat"
	"github.com/emberco/recall/pkg/eventstream"
	"github.com/emberco/recall/pkg/gateway"
)

const (
	// DefaultBatchSize is the number of records per batch submission.
	DefaultBatchSize = 10

	// DefaultPacing is the delay between consecutive batch submissions.
	DefaultPacing = 100 * time.Millisecond
)

// Config tunes batching behavior. Zero values fall back to defaults.
type Config struct {
	BatchSize int
	Pacing    time.Duration
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Pacing <= 0 {
		c.Pacing = DefaultPacing
	}
	return c
}

// Pipeline submits transcripts to the memory service in paced batches.
type Pipeline struct {
	service gateway.Service
	events  eventstream.Publisher
	logger  *zap.Logger
	config  Config
}

// NewPipeline creates a sync pipeline.
func NewPipeline(service gateway.Service, events eventstream.Publisher, logger *zap.Logger, config Config) *Pipeline {
	return &Pipeline{
		service: service,
		events:  events,
		logger:  logger,
		config:  config.withDefaults(),
	}
}

// Sync submits every storable transcript entry for the given scope. Entries
// whose body is empty after trimming are skipped up front. A batch the
// gateway rejects counts its messages into Result.Errors and the run
// continues with the next batch; already-accepted batches are never rolled
// back. Only context cancellation stops a run early.
func (p *Pipeline) Sync(ctx context.Context, scope chat.Scope, transcript []chat.Message) (*Result, error) {
	result := &Result{TranscriptEntries: len(transcript)}

	records := collectRecords(scope, transcript)
	result.Skipped = len(transcript) - len(records)

	if len(records) == 0 {
		p.publishCompleted(ctx, scope, result)
		return result, nil
	}

	for start := 0; start < len(records); start += p.config.BatchSize {
		if start > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(p.config.Pacing):
			}
		}

		end := min(start+p.config.BatchSize, len(records))
		batch := records[start:end]

		resp, err := p.service.AddBatch(ctx, batch)
		result.Batches++
		if err != nil {
			result.Errors += len(batch)
			p.logger.Warn("sync batch failed",
				zap.Int("batch", result.Batches),
				zap.Int("batch_size", len(batch)),
				zap.Error(err),
			)
			continue
		}

		result.Processed += resp.Processed
		result.Errors += len(resp.Errors)

		p.logger.Debug("sync batch submitted",
			zap.Int("batch", result.Batches),
			zap.Int("processed", resp.Processed),
			zap.Int("errors", len(resp.Errors)),
		)
	}

	p.publishCompleted(ctx, scope, result)
	return result, nil
}

func (p *Pipeline) publishCompleted(ctx context.Context, scope chat.Scope, result *Result) {
	if err := p.events.Publish(ctx, eventstream.NewSyncCompleted(scope, result.Batches, result.Processed, result.Errors)); err != nil {
		p.logger.Warn("publishing sync event failed", zap.Error(err))
	}
}

// collectRecords converts storable transcript entries to memory records,
// preserving transcript order.
func collectRecords(scope chat.Scope, transcript []chat.Message) []gateway.MemoryRecord {
	var records []gateway.MemoryRecord
	for i := range transcript {
		msg := &transcript[i]
		text := msg.GetText()
		if strings.TrimSpace(text) == "" {
			continue
		}
		records = append(records, gateway.MemoryRecord{
			Text:        text,
			CharacterID: scope.CharacterID,
			ChatID:      scope.ChatID,
			MessageType: msg.Type(),
		})
	}
	return records
}
