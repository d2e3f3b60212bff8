// Package scoring computes a heuristic confidence that two item reports describe the same object.
package scoring

import (
	"strings"

	"github.com/lost-found-api/internal/domain"
)

// Threshold is the minimum score at which a match is materialized. Callers apply it.
const Threshold = 30

const (
	titleWeight       = 40
	descTokenWeight   = 5
	descCap           = 30
	locationExact     = 20
	locationContained = 10
)

// Score returns the additive confidence between an existing report and a new one.
// Each factor contributes zero when either side's field is empty.
func Score(existing, incoming domain.Item) int {
	return titleScore(existing.Title, incoming.Title) +
		descriptionScore(existing.Description, incoming.Description) +
		locationScore(existing.Location, incoming.Location)
}

// titleScore awards the full title weight when one lowercased title contains
// the other, or when both hold the same set of words in any order, so
// "red car" and "car red" also score.
func titleScore(a, b string) int {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == "" || b == "" {
		return 0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) || sameWords(a, b) {
		return titleWeight
	}
	return 0
}

// sameWords reports whether a and b consist of the same set of words in any order.
func sameWords(a, b string) bool {
	aSet, bSet := wordSet(strings.Fields(a)), wordSet(strings.Fields(b))
	if len(aSet) != len(bSet) {
		return false
	}
	for w := range aSet {
		if _, ok := bSet[w]; !ok {
			return false
		}
	}
	return true
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// descriptionScore counts tokens of incoming that also occur in existing.
// A token repeated in incoming counts once per occurrence, so swapping the
// arguments changes the result when incoming repeats a shared token.
func descriptionScore(existing, incoming string) int {
	existingWords := strings.Fields(strings.ToLower(existing))
	incomingWords := strings.Fields(strings.ToLower(incoming))
	if len(existingWords) == 0 || len(incomingWords) == 0 {
		return 0
	}
	set := wordSet(existingWords)
	common := 0
	for _, w := range incomingWords {
		if _, ok := set[w]; ok {
			common++
		}
	}
	return min(descTokenWeight*common, descCap)
}

func locationScore(a, b string) int {
	a, b = strings.ToLower(a), strings.ToLower(b)
	switch {
	case a == "" || b == "":
		return 0
	case a == b:
		return locationExact
	case strings.Contains(a, b) || strings.Contains(b, a):
		return locationContained
	}
	return 0
}
