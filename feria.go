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


package feria

import (
	"context"
	"io"
	"log/slog"

	"github.com/poiesic/feria/ai"
	"github.com/poiesic/feria/ai/openai"
	"github.com/poiesic/feria/featured"
	"github.com/poiesic/feria/index"
	"github.com/poiesic/feria/listing"
	"github.com/poiesic/feria/search"
	"github.com/poiesic/feria/spell"
	"github.com/poiesic/feria/storage"
	"github.com/poiesic/feria/storage/badger"
)

// Marketplace wires the storage backend, AI provider, vector index, and
// spelling corrector into one handle. Services (search processor, listing
// service, featured ranker) are created from it.
type Marketplace struct {
	backend    *badger.Backend
	itemRepo   storage.ItemRepository
	geoRepo    storage.GeoRepository
	sellerRepo storage.SellerRepository
	provider   ai.Provider
	index      *index.Index
	corrector  *spell.Corrector
	logger     *slog.Logger
}

// MarketplaceOption configures a Marketplace.
type MarketplaceOption func(*marketplaceOptions)

type marketplaceOptions struct {
	aiConfig       *ai.Config
	indexThreshold float32
	dictionary     io.Reader
	inMemory       bool
}

// WithAIConfig sets the embedding provider configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) MarketplaceOption {
	return func(o *marketplaceOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithIndexThreshold sets the minimum similarity score for search matches.
// Default is index.DefaultThreshold.
func WithIndexThreshold(threshold float32) MarketplaceOption {
	return func(o *marketplaceOptions) {
		o.indexThreshold = threshold
	}
}

// WithSpellingDictionary preloads the spelling corrector from "term count"
// lines. Listings created later still extend the vocabulary.
func WithSpellingDictionary(r io.Reader) MarketplaceOption {
	return func(o *marketplaceOptions) {
		o.dictionary = r
	}
}

// WithInMemory uses an in-memory storage backend, mainly for tests.
func WithInMemory() MarketplaceOption {
	return func(o *marketplaceOptions) {
		o.inMemory = true
	}
}

// NewMarketplace opens the storage at filePath and initializes all shared
// components. The vector index starts from the stored embeddings, so
// search works immediately after a restart.
func NewMarketplace(filePath string, opts ...MarketplaceOption) (*Marketplace, error) {
	// Apply options
	options := &marketplaceOptions{
		aiConfig:       ai.DefaultConfig(), // Default if not provided
		indexThreshold: index.DefaultThreshold,
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create repositories
	itemRepo, err := badger.NewItemRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	geoRepo := badger.NewGeoRepository(backend)
	sellerRepo := badger.NewSellerRepository(backend)

	// Create AI provider with configured settings
	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		itemRepo.Close()
		backend.Close()
		return nil, err
	}

	corrector := spell.NewCorrector()
	if options.dictionary != nil {
		if err := corrector.LoadDictionary(options.dictionary); err != nil {
			provider.Close()
			itemRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	m := &Marketplace{
		backend:    backend,
		itemRepo:   itemRepo,
		geoRepo:    geoRepo,
		sellerRepo: sellerRepo,
		provider:   provider,
		index:      index.New(index.WithThreshold(options.indexThreshold)),
		corrector:  corrector,
		logger:     slog.Default(),
	}

	if err := m.syncIndex(); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

func (m *Marketplace) syncIndex() error {
	entries, err := m.itemRepo.EmbeddingSnapshot(context.Background())
	if err != nil {
		return err
	}
	m.index.Rebuild(entries)
	return nil
}

func (m *Marketplace) Close() error {
	// Close AI provider first
	if err := m.provider.Close(); err != nil {
		m.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := m.itemRepo.Close(); err != nil {
		m.logger.Error("error closing item repository", "err", err)
		return err
	}

	// Close backend
	if err := m.backend.Close(); err != nil {
		m.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (m *Marketplace) ItemRepository() storage.ItemRepository {
	return m.itemRepo
}

func (m *Marketplace) GeoRepository() storage.GeoRepository {
	return m.geoRepo
}

func (m *Marketplace) SellerRepository() storage.SellerRepository {
	return m.sellerRepo
}

func (m *Marketplace) Index() *index.Index {
	return m.index
}

func (m *Marketplace) Corrector() *spell.Corrector {
	return m.corrector
}

func (m *Marketplace) NewSearchProcessor(opts ...search.Option) (*search.Processor, error) {
	return search.NewProcessor(m.itemRepo, m.geoRepo, m.sellerRepo,
		m.provider.Embedder(), m.corrector, m.index, opts...)
}

func (m *Marketplace) NewListingService(opts ...listing.Option) (*listing.Service, error) {
	return listing.NewService(m.itemRepo, m.sellerRepo, m.provider, m.corrector, m.index, opts...)
}

func (m *Marketplace) NewRanker(opts ...featured.Option) (*featured.Ranker, error) {
	return featured.NewRanker(m.itemRepo, opts...)
}
