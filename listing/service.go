package listing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/feria/ai"
	"github.com/poiesic/feria/core"
	"github.com/poiesic/feria/index"
	"github.com/poiesic/feria/spell"
	"github.com/poiesic/feria/storage"
)

// DefaultExpiry is the listing lifetime applied when a draft leaves
// ExpiresAt unset.
const DefaultExpiry = 30 * 24 * time.Hour

// DefaultPoolSize is the number of concurrent embedding workers used by
// SeedItems.
const DefaultPoolSize = 4

// Draft is the input for creating a listing. The seller is identified by
// contact handle and created on first use.
type Draft struct {
	Title         string
	Description   string
	Price         float64
	Categories    []string
	Condition     core.Condition
	LocalityId    core.ID
	SellerName    string
	SellerContact string
	ExpiresAt     time.Time
}

// Service manages the listing write path: validation, seller resolution,
// embedding, persistence, and vector index synchronization. The index is
// rebuilt after every successful write so search results never lag the
// corpus.
type Service struct {
	itemRepository   storage.ItemRepository
	sellerRepository storage.SellerRepository
	embedder         ai.Embedder
	corrector        *spell.Corrector
	index            *index.Index
	logger           *slog.Logger
	poolSize         int
}

// Option configures a Service.
type Option func(*Service) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithPoolSize sets the number of concurrent embedding workers for bulk
// seeding. Default is DefaultPoolSize.
func WithPoolSize(n int) Option {
	return func(s *Service) error {
		if n > 0 {
			s.poolSize = n
		}
		return nil
	}
}

// NewService creates a new listing service. The corrector is optional;
// when present, new listings feed its vocabulary.
func NewService(
	itemRepository storage.ItemRepository,
	sellerRepository storage.SellerRepository,
	provider ai.Provider,
	corrector *spell.Corrector,
	idx *index.Index,
	opts ...Option,
) (*Service, error) {
	if itemRepository == nil {
		return nil, ErrItemRepositoryRequired
	}
	if sellerRepository == nil {
		return nil, ErrSellerRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if idx == nil {
		return nil, ErrIndexRequired
	}

	s := &Service{
		itemRepository:   itemRepository,
		sellerRepository: sellerRepository,
		embedder:         provider.Embedder(),
		corrector:        corrector,
		index:            idx,
		logger:           slog.Default(),
		poolSize:         DefaultPoolSize,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// CreateItem validates a draft, resolves its seller, embeds the listing
// text, persists the item, and rebuilds the vector index. On embedding
// failure nothing is persisted.
func (s *Service) CreateItem(ctx context.Context, draft *Draft) (*core.Item, error) {
	item, err := s.prepare(ctx, draft)
	if err != nil {
		return nil, err
	}

	if _, err := s.itemRepository.AddItems(ctx, item); err != nil {
		s.logger.Error("error storing item", "title", item.Title, "err", err)
		return nil, err
	}

	s.feedCorrector(item)

	if err := s.SyncIndex(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("created item", "itemID", item.Id, "title", item.Title)
	return item, nil
}

// UpdateItem re-validates, re-embeds, and persists an existing item, then
// rebuilds the vector index.
func (s *Service) UpdateItem(ctx context.Context, item *core.Item) (*core.Item, error) {
	if err := core.ValidateItem(item); err != nil {
		return nil, err
	}

	vector, err := s.embedder.EmbedText(ctx, embedText(item))
	if err != nil {
		s.logger.Error("error embedding item", "itemID", item.Id, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	item.Vector = vector

	if _, err := s.itemRepository.UpdateItems(ctx, item); err != nil {
		return nil, err
	}

	s.feedCorrector(item)

	if err := s.SyncIndex(ctx); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes an item and rebuilds the vector index.
func (s *Service) DeleteItem(ctx context.Context, id core.ID) error {
	if err := s.itemRepository.DeleteItems(ctx, id); err != nil {
		return err
	}
	return s.SyncIndex(ctx)
}

// RecordView increments an item's view counter and returns the new value.
func (s *Service) RecordView(ctx context.Context, id core.ID) (int64, error) {
	return s.itemRepository.IncrementViews(ctx, id)
}

// RecordSearch increments an item's search counter and returns the new
// value. Called when a search result is clicked through; the search path
// itself never touches counters.
func (s *Service) RecordSearch(ctx context.Context, id core.ID) (int64, error) {
	return s.itemRepository.IncrementSearches(ctx, id)
}

// SyncIndex rebuilds the vector index from the stored embeddings.
func (s *Service) SyncIndex(ctx context.Context) error {
	entries, err := s.itemRepository.EmbeddingSnapshot(ctx)
	if err != nil {
		s.logger.Error("error snapshotting embeddings", "err", err)
		return err
	}
	s.index.Rebuild(entries)
	s.logger.Debug("rebuilt index", "vectorCount", len(entries))
	return nil
}

// SeedItems bulk-creates listings, embedding drafts concurrently on a
// worker pool. The index is rebuilt once at the end. Returns the created
// items; a failed draft fails the whole batch.
func (s *Service) SeedItems(ctx context.Context, drafts []*Draft) ([]*core.Item, error) {
	pool, err := ants.NewPool(s.poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	items := make([]*core.Item, len(drafts))

	for i, draft := range drafts {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			item, err := s.prepare(ctx, draft)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			items[i] = item
		})
		if err != nil {
			wg.Done()
			return nil, err
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	if _, err := s.itemRepository.AddItems(ctx, items...); err != nil {
		return nil, err
	}
	for _, item := range items {
		s.feedCorrector(item)
	}

	if err := s.SyncIndex(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("seeded items", "count", len(items))
	return items, nil
}

// prepare turns a draft into a validated, embedded item with its seller
// resolved. Nothing is persisted.
func (s *Service) prepare(ctx context.Context, draft *Draft) (*core.Item, error) {
	now := time.Now().UTC()
	expiresAt := draft.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = now.Add(DefaultExpiry)
	}

	item := &core.Item{
		Title:       draft.Title,
		Description: draft.Description,
		Price:       draft.Price,
		Categories:  draft.Categories,
		Condition:   draft.Condition,
		LocalityId:  draft.LocalityId,
		Available:   true,
		CreatedAt:   now,
		ExpiresAt:   expiresAt,
	}
	if err := core.ValidateItem(item); err != nil {
		return nil, err
	}

	seller, err := s.sellerRepository.GetOrCreateSeller(ctx, draft.SellerName, draft.SellerContact, draft.LocalityId)
	if err != nil {
		return nil, err
	}
	item.SellerId = seller.Id

	vector, err := s.embedder.EmbedText(ctx, embedText(item))
	if err != nil {
		s.logger.Error("error embedding item", "title", item.Title, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	item.Vector = vector

	return item, nil
}

func (s *Service) feedCorrector(item *core.Item) {
	if s.corrector == nil {
		return
	}
	s.corrector.AddText(item.Title)
	s.corrector.AddText(item.Description)
	for _, category := range item.Categories {
		s.corrector.AddText(category)
	}
}

// embedText builds the text fed to the embedding model. Title carries the
// most signal, then description, then categories.
func embedText(item *core.Item) string {
	return item.Title + "|" + item.Description + "|" + strings.Join(item.Categories, " - ")
}
