// Package pipeline runs the loader and the summary builder against a
// configured store and records every invocation in the run history.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/vendorperf/internal/state"
	"github.com/leapstack-labs/vendorperf/pkg/adapter"
	"github.com/leapstack-labs/vendorperf/pkg/core"
)

// Commands recorded in the run history.
const (
	CommandIngest    = "ingest"
	CommandSummarize = "summarize"
	CommandRun       = "run"
)

// Config holds pipeline configuration.
type Config struct {
	// InputDir is the directory holding the source CSV files.
	InputDir string
	// StatePath is the path to the SQLite run history database.
	StatePath string
	// AdapterConfig selects and configures the analytical store.
	AdapterConfig core.AdapterConfig
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Pipeline owns the store connection and the run history for one command.
type Pipeline struct {
	// Store adapter (lazy initialized)
	db          adapter.Adapter
	dbConfig    core.AdapterConfig
	dbConnected bool
	dbMu        sync.Mutex

	logger   *slog.Logger
	history  state.Store
	inputDir string
}

// New opens the run history and prepares a pipeline. The store itself is
// only connected when a command needs it.
func New(cfg Config) (*Pipeline, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger.Debug("initializing pipeline", "input_dir", cfg.InputDir, "target", cfg.AdapterConfig.Type)

	history := state.NewSQLiteStore(logger)
	if err := history.Open(cfg.StatePath); err != nil {
		return nil, &core.IOError{Op: "open run history", Target: cfg.StatePath, Err: err}
	}
	if err := history.InitSchema(); err != nil {
		_ = history.Close()
		return nil, fmt.Errorf("failed to initialize run history: %w", err)
	}

	dbConfig := cfg.AdapterConfig
	if dbConfig.Type == "" {
		dbConfig.Type = "duckdb"
	}

	return &Pipeline{
		dbConfig: dbConfig,
		logger:   logger,
		history:  history,
		inputDir: cfg.InputDir,
	}, nil
}

// DB returns the connected store, connecting on first use.
func (p *Pipeline) DB(ctx context.Context) (adapter.Adapter, error) {
	p.dbMu.Lock()
	defer p.dbMu.Unlock()

	if p.dbConnected {
		return p.db, nil
	}

	p.logger.Debug("connecting to store", "adapter_type", p.dbConfig.Type)

	db, err := adapter.Open(ctx, p.dbConfig, p.logger)
	if err != nil {
		return nil, err
	}

	p.db = db
	p.dbConnected = true
	return db, nil
}

// History returns the run history store.
func (p *Pipeline) History() state.Store {
	return p.history
}

// Close releases the store connection and the run history.
func (p *Pipeline) Close() error {
	p.dbMu.Lock()
	defer p.dbMu.Unlock()

	var firstErr error
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			firstErr = err
		}
		p.db = nil
		p.dbConnected = false
	}
	if err := p.history.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
