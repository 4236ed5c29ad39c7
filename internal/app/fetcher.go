package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/samvad-hq/jsonhttp/internal/config"
	"github.com/samvad-hq/jsonhttp/internal/logger"
	"github.com/samvad-hq/jsonhttp/internal/requests"
	"github.com/samvad-hq/jsonhttp/internal/storage"
	"github.com/samvad-hq/jsonhttp/pkg/jsonhttp"
	"github.com/samvad-hq/jsonhttp/pkg/publishers"
)

// Summary counts the outcomes of one run.
type Summary struct {
	RunID     string `json:"run_id"`
	Total     int    `json:"total"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Changed   int    `json:"changed"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

// Fetcher runs a configured batch of JSON requests once, records each
// outcome, and forwards result events to the configured sinks.
type Fetcher struct {
	batch    *requests.Batch
	executor *jsonhttp.Executor
	fanout   *publishers.Fanout
	store    storage.Store
	out      io.Writer
	log      logger.Logger
	newRunID func() string
}

// NewFetcher builds a fetcher runtime from config files.
func NewFetcher(ctx context.Context, cfg *config.Config, log logger.Logger) (*Fetcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	batch, err := requests.Load(cfg.RequestsFile)
	if err != nil {
		return nil, fmt.Errorf("load requests: %w", err)
	}
	log.InfoObj("requests loaded", "requests_meta", map[string]any{
		"count": len(batch.Entries),
		"file":  cfg.RequestsFile,
	})

	sinkCfgs, err := publishers.LoadConfigs(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers: %w", err)
	}
	fanout, err := publishers.Build(ctx, publishers.DefaultBuilders(), sinkCfgs, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	sinkSummaries := make([]map[string]any, 0, len(sinkCfgs))
	for _, sc := range sinkCfgs {
		sinkSummaries = append(sinkSummaries, map[string]any{
			"id":           sc.ID,
			"type":         sc.Type,
			"outcomes":     sc.Outcomes,
			"changed_only": sc.ChangedOnly,
		})
	}
	log.InfoObj("publishers loaded", "publishers_meta", map[string]any{
		"count":      len(sinkSummaries),
		"publishers": sinkSummaries,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		RecordTTL:       cfg.HistoryTTL,
		CleanupInterval: cfg.HistoryCleanup,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"history_ttl_seconds":      int(cfg.HistoryTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.HistoryCleanup.Seconds()),
	})

	executor := jsonhttp.NewExecutor(
		jsonhttp.WithTimeout(cfg.RequestTimeout),
		jsonhttp.WithLogger(log),
	)

	return &Fetcher{
		batch:    batch,
		executor: executor,
		fanout:   fanout,
		store:    store,
		out:      os.Stdout,
		log:      log,
		newRunID: uuid.NewString,
	}, nil
}

// Run executes the batch once and closes the store. It returns an error when
// any request failed, after every outcome has been recorded and published.
func (f *Fetcher) Run(ctx context.Context) (Summary, error) {
	if f == nil || f.executor == nil || f.batch == nil {
		return Summary{}, fmt.Errorf("fetcher is not initialized")
	}
	defer f.closeStore()

	summary := Summary{RunID: f.newRunID(), Total: len(f.batch.Entries)}
	log := f.log.With("run_id", summary.RunID)
	start := time.Now()
	log.InfoObj("batch started", "batch_meta", map[string]any{
		"requests":   summary.Total,
		"started_at": start.UTC(),
	})

	inputs := f.batch.Inputs()
	results, err := f.executor.ExecuteMany(ctx, inputs)
	if err != nil {
		return summary, fmt.Errorf("execute batch: %w", err)
	}

	enc := json.NewEncoder(f.out)
	for i, res := range results {
		entry := f.batch.Entries[i]
		evt := publishers.NewEvent(summary.RunID, entry.ID, inputs[i], res)
		evt.Changed = f.recordOutcome(log, entry.ID, &evt)

		if res.OK() {
			summary.Succeeded++
		} else {
			summary.Failed++
			log.WarnObj("request failed", "request_result", map[string]any{
				"request_id": entry.ID,
				"outcome":    evt.Outcome,
				"error":      evt.Error,
			})
		}
		if evt.Changed {
			summary.Changed++
		}

		if err := enc.Encode(evt); err != nil {
			log.ErrorObj("write result failed", "error", err.Error())
		}
		if _, err := f.fanout.Publish(ctx, evt); err != nil {
			log.ErrorObj("publish result failed", "publish_error", map[string]any{
				"request_id": entry.ID,
				"error":      err.Error(),
			})
		}
	}

	summary.ElapsedMs = time.Since(start).Milliseconds()
	log.InfoObj("batch completed", "batch_summary", summary)
	if summary.Failed > 0 {
		return summary, fmt.Errorf("%d of %d requests failed", summary.Failed, summary.Total)
	}
	return summary, nil
}

// recordOutcome stores evt's outcome, sets its streak, and reports whether the
// outcome differs from the previous run.
func (f *Fetcher) recordOutcome(log logger.Logger, id string, evt *publishers.Event) bool {
	cur, prev, found, err := f.store.Swap(id, storage.Record{
		Outcome:    evt.Outcome,
		Message:    evt.Error,
		RecordedAt: evt.CompletedAt,
	})
	if err != nil {
		log.ErrorObj("history update failed", "history_error", map[string]any{
			"request_id": id,
			"error":      err.Error(),
		})
		return false
	}
	evt.Streak = cur.Streak

	changed := found && prev.Outcome != evt.Outcome
	if changed {
		log.WarnObj("request outcome changed", "outcome_change", map[string]any{
			"request_id":      id,
			"previous":        prev.Outcome,
			"previous_streak": prev.Streak,
			"current":         evt.Outcome,
			"since":           prev.RecordedAt,
		})
	}
	return changed
}

// closeStore safely closes the storage backend, logging any errors encountered.
func (f *Fetcher) closeStore() {
	if f == nil || f.store == nil {
		return
	}
	if err := f.store.Close(); err != nil {
		f.log.ErrorObj("storage close failed", "error", err)
	}
}
