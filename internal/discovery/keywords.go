// Package discovery finds directory users near the current location and annotates them
// with shared interests and follow state.
package discovery

import (
	"encoding/binary"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"

	"dream_weaver/internal/models"
)

// MinKeywordLength is the exclusive lower bound on token length, in characters.
const MinKeywordLength = 2

// KeywordSet is a set of lowercase tokens that remembers first-insertion order.
// The zero value is an empty set.
type KeywordSet struct {
	tokens []string
	index  map[string]struct{}
}

func NewKeywordSet(tokens ...string) KeywordSet {
	var k KeywordSet
	for _, t := range tokens {
		k.add(t)
	}
	return k
}

func (k *KeywordSet) add(token string) {
	if token == "" {
		return
	}
	if k.index == nil {
		k.index = make(map[string]struct{})
	}
	if _, ok := k.index[token]; ok {
		return
	}
	k.index[token] = struct{}{}
	k.tokens = append(k.tokens, token)
}

func (k KeywordSet) Contains(token string) bool {
	_, ok := k.index[token]
	return ok
}

func (k KeywordSet) Len() int {
	return len(k.tokens)
}

// Tokens returns the members in insertion order.
func (k KeywordSet) Tokens() []string {
	return append([]string{}, k.tokens...)
}

func longEnough(token string) bool {
	return utf8.RuneCountInString(token) > MinKeywordLength
}

// words splits on whitespace and lowercases. Punctuation stays attached, so "whispers."
// and "whispers" are different tokens.
func words(text string) []string {
	fields := strings.Fields(text)
	for i, f := range fields {
		fields[i] = strings.ToLower(f)
	}
	return fields
}

// ExtractEntryKeywords collects tokens longer than two characters from every entry's
// tags, title and body.
func ExtractEntryKeywords(entries []models.JournalEntry) KeywordSet {
	var set KeywordSet
	addLong := func(token string) {
		if longEnough(token) {
			set.add(token)
		}
	}

	for _, e := range entries {
		for _, tag := range e.Tags {
			addLong(strings.ToLower(strings.TrimSpace(tag)))
		}
		for _, w := range words(e.Title) {
			addLong(w)
		}
		for _, w := range words(e.Body) {
			addLong(w)
		}
	}
	return set
}

// ExtractUserKeywords collects every token of a directory user's dream titles and bodies,
// then bio. Length filtering happens when the set is compared.
func ExtractUserKeywords(u models.DirectoryUser) KeywordSet {
	var set KeywordSet
	for _, d := range u.Dreams {
		for _, w := range words(d.Title) {
			set.add(w)
		}
		for _, w := range words(d.Body) {
			set.add(w)
		}
	}
	for _, w := range words(u.Bio) {
		set.add(w)
	}
	return set
}

// KeywordCache memoizes ExtractEntryKeywords by a hash of the journal's text content.
type KeywordCache struct {
	mu   sync.Mutex
	hash uint64
	set  KeywordSet
	ok   bool
}

func NewKeywordCache() *KeywordCache {
	return &KeywordCache{}
}

func (c *KeywordCache) EntryKeywords(entries []models.JournalEntry) KeywordSet {
	h := contentHash(entries)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ok && c.hash == h {
		return c.set
	}
	c.set = ExtractEntryKeywords(entries)
	c.hash = h
	c.ok = true
	return c.set
}

// contentHash length-prefixes every field and the tag count, so no choice of
// field content can collide with a different split.
func contentHash(entries []models.JournalEntry) uint64 {
	d := xxhash.New()
	var buf []byte
	field := func(v string) {
		buf = binary.AppendUvarint(buf[:0], uint64(len(v)))
		_, _ = d.Write(buf)
		_, _ = d.WriteString(v)
	}
	for _, e := range entries {
		buf = binary.AppendUvarint(buf[:0], uint64(len(e.Tags)))
		_, _ = d.Write(buf)
		for _, tag := range e.Tags {
			field(tag)
		}
		field(e.Title)
		field(e.Body)
	}
	return d.Sum64()
}
