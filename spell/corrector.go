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


package spell

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/xrash/smetrics"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// MinQueryLength is the minimum query length (in runes) for
	// correction to run. Shorter queries pass through untouched.
	MinQueryLength = 3

	// MinWordLength is the minimum word length (in runes) for an unknown
	// word to be corrected. Shorter tokens like "tv" are kept verbatim.
	MinWordLength = 3

	// MaxEditDistance is the maximum edit distance considered for a
	// candidate correction.
	MaxEditDistance = 2
)

// Corrector suggests spelling corrections for search queries against a
// frequency dictionary built from the item corpus. Safe for concurrent
// use; writers feed it new vocabulary as items are created.
type Corrector struct {
	mu    sync.RWMutex
	freqs map[string]int64
}

// NewCorrector creates an empty Corrector.
func NewCorrector() *Corrector {
	return &Corrector{freqs: make(map[string]int64)}
}

// AddTerm adds a single term to the dictionary with the given count.
// The term is normalized before insertion.
func (c *Corrector) AddTerm(term string, count int64) {
	term = NormalizeTerm(term)
	if term == "" || count <= 0 {
		return
	}

	c.mu.Lock()
	c.freqs[term] += count
	c.mu.Unlock()
}

// AddText tokenizes free text and adds every word to the dictionary.
func (c *Corrector) AddText(text string) {
	for _, word := range tokenize(text) {
		c.AddTerm(word, 1)
	}
}

// LoadDictionary reads "term count" lines. Lines without a count default
// to 1; blank lines are skipped.
func (c *Corrector) LoadDictionary(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		count := int64(1)
		if len(fields) > 1 {
			parsed, err := strconv.ParseInt(fields[1], 10, 64)
			if err == nil {
				count = parsed
			}
		}
		c.AddTerm(fields[0], count)
	}
	return scanner.Err()
}

// Len reports the dictionary vocabulary size.
func (c *Corrector) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.freqs)
}

// Correct returns the query to execute and, when any word changed, the
// reconstructed phrase as a suggestion (empty otherwise). Each word is
// corrected independently; words already in the dictionary, or with no
// candidate within the edit distance limit, pass through.
func (c *Corrector) Correct(query string) (string, string) {
	words := tokenize(query)
	if len(words) == 0 {
		return query, ""
	}

	runeCount := 0
	for _, w := range words {
		runeCount += len([]rune(w))
	}
	if runeCount < MinQueryLength {
		return query, ""
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.freqs) == 0 {
		return query, ""
	}

	corrected := make([]string, len(words))
	changed := false
	for i, word := range words {
		best := c.correctWord(word)
		corrected[i] = best
		if best != word {
			changed = true
		}
	}
	if !changed {
		return query, ""
	}
	phrase := strings.Join(corrected, " ")
	return phrase, phrase
}

// correctWord returns the best dictionary candidate for one word, or the
// word itself. Caller holds at least a read lock.
func (c *Corrector) correctWord(word string) string {
	if _, ok := c.freqs[word]; ok {
		return word
	}
	if len([]rune(word)) < MinWordLength {
		return word
	}

	bestTerm := word
	bestDist := MaxEditDistance + 1
	var bestFreq int64

	for term, freq := range c.freqs {
		// Length difference lower-bounds edit distance.
		if abs(len([]rune(term))-len([]rune(word))) > MaxEditDistance {
			continue
		}

		dist := smetrics.WagnerFischer(word, term, 1, 1, 1)
		if dist > MaxEditDistance {
			continue
		}

		if dist < bestDist ||
			(dist == bestDist && freq > bestFreq) ||
			(dist == bestDist && freq == bestFreq && term < bestTerm) {
			bestTerm = term
			bestDist = dist
			bestFreq = freq
		}
	}

	if bestDist > MaxEditDistance {
		return word
	}
	return bestTerm
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeTerm lowercases a term and strips diacritics, so "Córdoba"
// and "cordoba" compare equal.
func NormalizeTerm(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	folded, _, err := transform.String(foldTransformer, term)
	if err != nil {
		return term
	}
	return folded
}

// tokenize splits text into normalized alphanumeric words.
func tokenize(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	words := make([]string, 0, len(raw))
	for _, w := range raw {
		w = NormalizeTerm(w)
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
