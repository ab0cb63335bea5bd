package core

import (
	"encoding/binary"
	"slices"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Condition describes the physical state of a listed item.
type Condition int

const (
	// ConditionNew represents a brand-new item.
	ConditionNew Condition = iota + 1
	// ConditionUsed represents a second-hand item.
	ConditionUsed
)

// String returns the display value used on the wire ("Nuevo"/"Usado").
func (c Condition) String() string {
	switch c {
	case ConditionNew:
		return "Nuevo"
	case ConditionUsed:
		return "Usado"
	default:
		return "Unknown"
	}
}

// Item represents a marketplace listing.
// The Vector field is populated by the listing write path before persistence.
type Item struct {
	Id          ID
	Title       string
	Description string
	Price       float64
	Categories  []string // sorted, de-duplicated set of category names
	Condition   Condition
	LocalityId  ID
	SellerId    ID
	Available   bool
	Views       int64 // incremented by read-path callers, never by the core
	Searches    int64 // incremented by read-path callers, never by the core
	Featured    bool  // written exclusively by the popularity ranker
	CreatedAt   time.Time
	ExpiresAt   time.Time
	Vector      []float32 // embedding for semantic search; empty means not embedded
}

// IsActive reports whether the item has not yet expired at the given instant.
func (it *Item) IsActive(now time.Time) bool {
	return it.ExpiresAt.After(now)
}

// HasCategory reports whether the item carries the given category name.
func (it *Item) HasCategory(name string) bool {
	return slices.Contains(it.Categories, name)
}

// Province is a top-level geographic region.
type Province struct {
	Id   ID
	Name string
}

// Locality is a town or city belonging to a province.
type Locality struct {
	Id         ID
	Name       string
	ProvinceId ID
}

// Seller is the owner of one or more listings, identified by contact handle.
type Seller struct {
	Id         ID
	Name       string
	Contact    string
	LocalityId ID
	CreatedAt  time.Time
}

// IndexEntry is one element of the record-store snapshot consumed by an
// index rebuild.
type IndexEntry struct {
	ItemId ID
	Vector []float32
}

// Match is a single vector index hit.
type Match struct {
	ItemId ID
	Score  float32
}
