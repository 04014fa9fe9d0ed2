package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/timejump/internal/index"
	"github.com/MrSnakeDoc/timejump/internal/logger"
	"github.com/MrSnakeDoc/timejump/internal/sources/ranges"
)

// RangesReloader keeps the candidate range index in sync with the ranges file.
// A failed reload keeps the previous list.
type RangesReloader struct {
	loader        *ranges.Loader
	source        string
	index         *index.RangeIndex
	logger        logger.Logger
	interval      time.Duration // <= 0 disables periodic reloads
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}
}

// NewRangesReloader creates a new reloader. An empty rangesFile reloads the built-in defaults.
func NewRangesReloader(
	rangesFile string,
	idx *index.RangeIndex,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *RangesReloader {
	source := rangesFile
	if source == "" {
		source = "defaults"
	}
	return &RangesReloader{
		loader:        ranges.NewLoader(rangesFile),
		source:        source,
		index:         idx,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the list once and then reloads it on every tick or manual trigger.
func (rr *RangesReloader) Start(ctx context.Context) error {
	if err := rr.Reload(); err != nil {
		return fmt.Errorf("initial ranges load failed: %w", err)
	}

	var tick <-chan time.Time
	var ticker *time.Ticker
	if rr.interval > 0 {
		ticker = time.NewTicker(rr.interval)
		tick = ticker.C
	}

	go func() {
		if ticker != nil {
			defer ticker.Stop()
		}
		for {
			select {
			case <-tick:
				rr.reloadLogged()
			case <-rr.manualTrigger:
				rr.logger.Info("manual ranges reload triggered")
				rr.reloadLogged()
			case <-rr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader. Safe to call more than once.
func (rr *RangesReloader) Stop() {
	rr.stopOnce.Do(func() { close(rr.stopCh) })
}

// Reload reads the ranges file and swaps the index content.
func (rr *RangesReloader) Reload() error {
	list, err := rr.loader.Load()
	if err != nil {
		return err
	}

	rr.index.Update(list, rr.source)
	rr.logger.Info("candidate ranges loaded",
		logger.String("source", rr.source),
		logger.Int("count", len(list)))
	return nil
}

func (rr *RangesReloader) reloadLogged() {
	if err := rr.Reload(); err != nil {
		rr.logger.Error("failed to reload ranges, keeping previous list",
			logger.String("source", rr.source),
			logger.Error(err))
	}
}
