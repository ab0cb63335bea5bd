package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/feria/ai"
	"github.com/poiesic/feria/core"
	"github.com/poiesic/feria/index"
	"github.com/poiesic/feria/spell"
	"github.com/poiesic/feria/storage"
)

const (
	// DefaultCandidates is the number of nearest neighbors retrieved from
	// the vector index before filters run.
	DefaultCandidates = 100

	// DefaultPageSize is the page size used when the request leaves it unset.
	DefaultPageSize = 15

	// MaxPageSize bounds the page size a request may ask for.
	MaxPageSize = 100
)

// Request describes one search over the listings. Filter fields use wire
// string values and are validated during processing. A blank Query browses
// by popularity instead of semantic relevance.
type Request struct {
	Query        string
	Category     string
	Condition    string
	Province     string
	Locality     string
	PriceMin     *float64
	PriceMax     *float64
	ExpiresIn    string
	FeaturedOnly bool
	SellerId     core.ID
	Page         int
	PageSize     int
}

// ItemSummary is one search hit, denormalized for display.
type ItemSummary struct {
	Id           core.ID
	Title        string
	Description  string
	Price        float64
	Categories   []string
	Condition    string
	LocalityName string
	ProvinceName string
	SellerName   string
	Contact      string
	Views        int64
	Searches     int64
	Featured     bool
	Score        float32
}

// Response holds one page of search results. Suggestion carries the
// spelling-corrected phrase when the executed query differs from the
// requested one, and is empty otherwise.
type Response struct {
	Items      []*ItemSummary
	Total      int
	Page       int
	PageSize   int
	Query      string // query actually executed, after correction
	Suggestion string
}

// Processor runs search requests: spelling correction, semantic retrieval
// from the vector index, filtering, and popularity browsing for blank
// queries.
type Processor struct {
	itemRepository   storage.ItemRepository
	geoRepository    storage.GeoRepository
	sellerRepository storage.SellerRepository
	embedder         ai.Embedder
	corrector        *spell.Corrector
	index            *index.Index
	logger           *slog.Logger
	candidates       int
	pageSize         int
}

// Option configures a Processor.
type Option func(*Processor) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithCandidates sets how many nearest neighbors are retrieved before
// filters run. Default is DefaultCandidates.
func WithCandidates(n int) Option {
	return func(p *Processor) error {
		if n > 0 {
			p.candidates = n
		}
		return nil
	}
}

// WithPageSize sets the default page size. Default is DefaultPageSize.
func WithPageSize(n int) Option {
	return func(p *Processor) error {
		if n > 0 {
			p.pageSize = n
		}
		return nil
	}
}

// NewProcessor creates a new search processor. The corrector is optional;
// when nil, queries run uncorrected.
func NewProcessor(
	itemRepository storage.ItemRepository,
	geoRepository storage.GeoRepository,
	sellerRepository storage.SellerRepository,
	embedder ai.Embedder,
	corrector *spell.Corrector,
	idx *index.Index,
	opts ...Option,
) (*Processor, error) {
	if itemRepository == nil {
		return nil, ErrItemRepositoryRequired
	}
	if geoRepository == nil {
		return nil, ErrGeoRepositoryRequired
	}
	if sellerRepository == nil {
		return nil, ErrSellerRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if idx == nil {
		return nil, ErrIndexRequired
	}

	p := &Processor{
		itemRepository:   itemRepository,
		geoRepository:    geoRepository,
		sellerRepository: sellerRepository,
		embedder:         embedder,
		corrector:        corrector,
		index:            idx,
		logger:           slog.Default(),
		candidates:       DefaultCandidates,
		pageSize:         DefaultPageSize,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Search runs a search request.
func (p *Processor) Search(ctx context.Context, req *Request) (*Response, error) {
	return p.SearchWithMonitor(ctx, req, nil)
}

// SearchWithMonitor runs a search request with monitoring.
// The monitor receives callbacks at each stage of the search process.
func (p *Processor) SearchWithMonitor(ctx context.Context, req *Request, monitor SearchMonitor) (*Response, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrInvalidRequest)
	}

	monitor.Start(req.Query)

	filter, err := p.buildFilter(ctx, req)
	if err != nil {
		return nil, err
	}

	page := req.Page
	if page == 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = p.pageSize
	}
	if page < 1 || pageSize < 1 || pageSize > MaxPageSize {
		return nil, fmt.Errorf("%w: page %d, page size %d", ErrInvalidRequest, page, pageSize)
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return p.browse(ctx, filter, page, pageSize, monitor)
	}

	// 1. Correct spelling
	corrected := query
	suggestion := ""
	if p.corrector != nil {
		corrected, suggestion = p.corrector.Correct(query)
		if suggestion != "" {
			p.logger.Debug("corrected query", "original", query, "corrected", corrected)
		}
	}
	monitor.AfterCorrection(corrected, suggestion)

	// 2. Semantic retrieval
	embedding, err := p.embedder.EmbedText(ctx, corrected)
	if err != nil {
		p.logger.Error("error generating embedding for query", "query", corrected, "err", err)
		return nil, err
	}

	matches := p.index.Query(embedding, p.candidates)
	monitor.AfterVectorSearch(matches)

	ids := make([]core.ID, len(matches))
	scores := make(map[core.ID]float32, len(matches))
	for i, match := range matches {
		ids[i] = match.ItemId
		scores[match.ItemId] = match.Score
	}

	// 3. Retrieve items in rank order; items deleted since the last index
	// rebuild are silently dropped.
	items, err := p.itemRepository.GetItems(ctx, ids...)
	if err != nil {
		p.logger.Error("error retrieving items", "itemCount", len(ids), "err", err)
		return nil, err
	}
	monitor.AfterItemRetrieval(items)

	// 4. Apply filters
	filtered := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if !filter.Matches(item) {
			monitor.FilteredOut(item)
			continue
		}
		filtered = append(filtered, item)
	}

	// 5. Paginate
	total := len(filtered)
	start := (page - 1) * pageSize
	pageItems := []*core.Item{}
	if start < total {
		end := min(start+pageSize, total)
		pageItems = filtered[start:end]
	}

	summaries, err := p.summarize(ctx, pageItems, scores)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Items:      summaries,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		Query:      corrected,
		Suggestion: suggestion,
	}
	monitor.Finish(resp)
	return resp, nil
}

// browse handles the blank-query path: storage-side popularity ordering.
func (p *Processor) browse(ctx context.Context, filter *core.ItemFilter, page, pageSize int, monitor SearchMonitor) (*Response, error) {
	items, total, err := p.itemRepository.ListItems(ctx, filter, page, pageSize)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidQuery) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		p.logger.Error("error listing items", "err", err)
		return nil, err
	}
	monitor.AfterItemRetrieval(items)

	summaries, err := p.summarize(ctx, items, nil)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Items:    summaries,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	monitor.Finish(resp)
	return resp, nil
}

// buildFilter validates the request's wire values and resolves location
// names to locality IDs. Unknown locations disable the predicate rather
// than failing the search.
func (p *Processor) buildFilter(ctx context.Context, req *Request) (*core.ItemFilter, error) {
	// Expired listings never surface, so ActiveOnly is always on.
	filter := &core.ItemFilter{
		Category:     strings.TrimSpace(req.Category),
		PriceMin:     req.PriceMin,
		PriceMax:     req.PriceMax,
		ActiveOnly:   true,
		FeaturedOnly: req.FeaturedOnly,
		SellerId:     req.SellerId,
	}

	if s := strings.TrimSpace(req.Condition); s != "" {
		condition, err := core.ParseCondition(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		filter.Condition = &condition
	}

	window, err := core.ParseExpiryWindow(strings.TrimSpace(req.ExpiresIn))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	filter.ExpiresIn = window

	localityIds, err := p.resolveLocation(ctx, req.Province, req.Locality)
	if err != nil {
		return nil, err
	}
	filter.LocalityIds = localityIds

	return filter, nil
}

// resolveLocation maps a province or locality name to locality IDs.
// Province takes precedence and expands to all of its localities.
func (p *Processor) resolveLocation(ctx context.Context, provinceName, localityName string) ([]core.ID, error) {
	provinceName = strings.TrimSpace(provinceName)
	localityName = strings.TrimSpace(localityName)

	if provinceName != "" {
		province, err := p.geoRepository.FindProvinceByName(ctx, provinceName)
		if errors.Is(err, storage.ErrNotFound) {
			p.logger.Debug("unknown province, ignoring", "province", provinceName)
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		localities, err := p.geoRepository.ListLocalities(ctx, province.Id)
		if err != nil {
			return nil, err
		}
		ids := make([]core.ID, len(localities))
		for i, loc := range localities {
			ids[i] = loc.Id
		}
		return ids, nil
	}

	if localityName != "" {
		locality, err := p.geoRepository.FindLocalityByName(ctx, localityName)
		if errors.Is(err, storage.ErrNotFound) {
			p.logger.Debug("unknown locality, ignoring", "locality", localityName)
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []core.ID{locality.Id}, nil
	}

	return nil, nil
}

// summarize denormalizes items for display. Items whose seller no longer
// exists are dropped.
func (p *Processor) summarize(ctx context.Context, items []*core.Item, scores map[core.ID]float32) ([]*ItemSummary, error) {
	localityNames := make(map[core.ID]string)
	provinceNames := make(map[core.ID]string)

	summaries := make([]*ItemSummary, 0, len(items))
	for _, item := range items {
		seller, err := p.sellerRepository.GetSeller(ctx, item.SellerId)
		if errors.Is(err, storage.ErrNotFound) {
			p.logger.Warn("dropping item with missing seller", "itemID", item.Id, "sellerID", item.SellerId)
			continue
		}
		if err != nil {
			return nil, err
		}

		summary := &ItemSummary{
			Id:          item.Id,
			Title:       item.Title,
			Description: item.Description,
			Price:       item.Price,
			Categories:  item.Categories,
			Condition:   item.Condition.String(),
			SellerName:  seller.Name,
			Contact:     seller.Contact,
			Views:       item.Views,
			Searches:    item.Searches,
			Featured:    item.Featured,
		}
		if scores != nil {
			summary.Score = scores[item.Id]
		}

		if name, ok := localityNames[item.LocalityId]; ok {
			summary.LocalityName = name
			summary.ProvinceName = provinceNames[item.LocalityId]
		} else if locality, err := p.geoRepository.GetLocality(ctx, item.LocalityId); err == nil {
			summary.LocalityName = locality.Name
			if province, err := p.geoRepository.GetProvince(ctx, locality.ProvinceId); err == nil {
				summary.ProvinceName = province.Name
			}
			localityNames[item.LocalityId] = summary.LocalityName
			provinceNames[item.LocalityId] = summary.ProvinceName
		}

		summaries = append(summaries, summary)
	}
	return summaries, nil
}
