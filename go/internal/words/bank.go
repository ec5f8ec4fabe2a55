// Package words holds the candidate word pool a session draws its secret words from.
package words

import (
	"math/rand"

	"github.com/samber/lo"
)

// MinLength is the shortest word the loaders keep
const MinLength = 5

// Bank is the immutable-after-load set of candidate words plus the set of words
// already served in the current session.
//
// Bank is not safe for concurrent use. The session drawing from it serializes
// every call under its own lock so a draw and the state change it feeds commit together.
type Bank struct {
	words []string
	index map[string]struct{}
	used  map[string]struct{}
}

// NewBank builds a bank from already-normalized words. Duplicates are dropped,
// first occurrence wins.
func NewBank(words []string) *Bank {
	uniq := lo.Uniq(words)
	return &Bank{
		words: uniq,
		index: lo.SliceToMap(uniq, func(w string) (string, struct{}) { return w, struct{}{} }),
		used:  make(map[string]struct{}),
	}
}

// Len returns the number of words in the bank
func (b *Bank) Len() int {
	if b == nil {
		return 0
	}
	return len(b.words)
}

// Words returns a copy of every word in load order
func (b *Bank) Words() []string {
	if b == nil {
		return nil
	}
	return append([]string(nil), b.words...)
}

// Remaining returns how many words have not been served yet
func (b *Bank) Remaining() int {
	if b == nil {
		return 0
	}
	return len(b.words) - len(b.used)
}

// Contains reports whether word is part of the bank
func (b *Bank) Contains(word string) bool {
	if b == nil {
		return false
	}
	_, ok := b.index[word]
	return ok
}

// Draw returns a uniformly random word that is not in exclude.
// The second result is false when exclude covers the whole bank.
func (b *Bank) Draw(exclude map[string]struct{}) (string, bool) {
	if b.Len() == 0 {
		return "", false
	}

	candidates := lo.Filter(b.words, func(w string, _ int) bool {
		_, skip := exclude[w]
		return !skip
	})
	if len(candidates) == 0 {
		return "", false
	}

	return candidates[rand.Intn(len(candidates))], true
}

// Next draws a word that has not been served yet and records it as used
func (b *Bank) Next() (string, bool) {
	if b == nil {
		return "", false
	}

	word, ok := b.Draw(b.used)
	if !ok {
		return "", false
	}
	b.used[word] = struct{}{}
	return word, true
}

// MarkUsed records word as served. Words outside the bank are ignored so that
// used stays a subset of the bank.
func (b *Bank) MarkUsed(word string) {
	if !b.Contains(word) {
		return
	}
	b.used[word] = struct{}{}
}

// IsUsed reports whether word was already served in this session
func (b *Bank) IsUsed(word string) bool {
	if b == nil {
		return false
	}
	_, ok := b.used[word]
	return ok
}

// Reset forgets every served word. The word list itself is untouched.
func (b *Bank) Reset() {
	if b == nil {
		return
	}
	b.used = make(map[string]struct{})
}
