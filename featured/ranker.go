// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package featured

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/feria/core"
	"github.com/poiesic/feria/storage"
)

const (
	// DefaultInterval is how often the ranker re-evaluates the featured set.
	DefaultInterval = 60 * time.Second

	// DefaultTopN is how many items carry the featured flag.
	DefaultTopN = 6
)

// ErrItemRepositoryRequired is returned when an item repository is not provided.
var ErrItemRepositoryRequired = errors.New("item repository required")

// Ranker periodically recomputes the featured set: the top-N active items
// by popularity. Expired items always lose the flag. All flag changes for
// one cycle commit in a single transaction.
type Ranker struct {
	itemRepository storage.ItemRepository
	logger         *slog.Logger
	interval       time.Duration
	topN           int
}

// Option configures a Ranker.
type Option func(*Ranker) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Ranker) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithInterval sets the re-evaluation period. Default is DefaultInterval.
func WithInterval(interval time.Duration) Option {
	return func(r *Ranker) error {
		if interval > 0 {
			r.interval = interval
		}
		return nil
	}
}

// WithTopN sets the featured set size. Default is DefaultTopN.
func WithTopN(n int) Option {
	return func(r *Ranker) error {
		if n > 0 {
			r.topN = n
		}
		return nil
	}
}

// NewRanker creates a new featured ranker.
func NewRanker(itemRepository storage.ItemRepository, opts ...Option) (*Ranker, error) {
	if itemRepository == nil {
		return nil, ErrItemRepositoryRequired
	}

	r := &Ranker{
		itemRepository: itemRepository,
		logger:         slog.Default(),
		interval:       DefaultInterval,
		topN:           DefaultTopN,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Run evaluates the featured set immediately and then on every tick until
// the context is canceled. Cycle errors are logged and do not stop the
// loop.
func (r *Ranker) Run(ctx context.Context) error {
	if err := r.RunOnce(ctx); err != nil {
		r.logger.Error("featured ranking cycle failed", "err", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.RunOnce(ctx); err != nil {
				r.logger.Error("featured ranking cycle failed", "err", err)
			}
		}
	}
}

// RunOnce executes one ranking cycle against the current clock.
func (r *Ranker) RunOnce(ctx context.Context) error {
	return r.runAt(ctx, time.Now().UTC())
}

func (r *Ranker) runAt(ctx context.Context, now time.Time) error {
	items, err := r.itemRepository.AllItems(ctx)
	if err != nil {
		return err
	}

	active := make([]*core.Item, 0, len(items))
	changes := make(map[core.ID]bool)

	for _, item := range items {
		if item.IsActive(now) && item.Available {
			active = append(active, item)
			continue
		}
		// Expired or withdrawn items never stay featured.
		if item.Featured {
			changes[item.Id] = false
		}
	}

	core.SortByPopularity(active)

	topN := min(r.topN, len(active))
	featured := make(map[core.ID]bool, topN)
	for _, item := range active[:topN] {
		featured[item.Id] = true
	}

	for _, item := range active {
		want := featured[item.Id]
		if item.Featured != want {
			changes[item.Id] = want
		}
	}

	if len(changes) == 0 {
		r.logger.Debug("featured set unchanged", "size", topN)
		return nil
	}

	if err := r.itemRepository.SetFeatured(ctx, changes); err != nil {
		return err
	}

	// Every entry is a flip, so the previous value is the negation.
	for id, flag := range changes {
		r.logger.Info("featured flag changed", "itemID", id, "was", !flag, "featured", flag)
	}
	return nil
}
