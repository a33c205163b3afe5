// Package relevance implements the hand-tuned relevance scoring used to
// re-rank provider results under advanced search depth.
package relevance

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jonesrussell/assistant/internal/domain"
)

// Scoring weights. The score accumulates: a full-query phrase match in the
// content, per-word whole-word occurrences in the content, phrase and word
// matches in the title, and a length adjustment.
const (
	phraseMatchBonus      = 30
	wordOccurrenceWeight  = 3
	titlePhraseBonus      = 20
	titleWordBonus        = 10
	shortContentPenalty   = 10
	longContentBonus      = 5
	shortContentThreshold = 100
	longContentThreshold  = 500
)

// MinScore is the threshold below which results are discarded when ranking.
const MinScore = 5

// minWordLength filters out short query words before matching.
const minWordLength = 2

// Score computes the relevance of a result for a query. It is deterministic
// and total: identical inputs always yield the same integer, and any internal
// failure yields 0 instead of propagating.
func Score(result domain.SearchResultItem, query string) (score int) {
	defer func() {
		if recover() != nil {
			score = 0
		}
	}()

	content := strings.ToLower(result.Content)
	lowerQuery := strings.ToLower(query)
	words := queryWords(lowerQuery)

	if strings.Contains(content, lowerQuery) {
		score += phraseMatchBonus
	}

	for _, word := range words {
		re, err := wordPattern(word)
		if err != nil {
			continue
		}
		score += wordOccurrenceWeight * len(re.FindAllStringIndex(content, -1))
	}

	title := strings.ToLower(result.Title)
	if strings.Contains(title, lowerQuery) {
		score += titlePhraseBonus
	}

	for _, word := range words {
		re, err := wordPattern(word)
		if err != nil {
			continue
		}
		if re.MatchString(title) {
			score += titleWordBonus
		}
	}

	switch {
	case len(result.Content) < shortContentThreshold:
		score -= shortContentPenalty
	case len(result.Content) > longContentThreshold:
		score += longContentBonus
	}

	return score
}

// queryWords splits a lower-cased query into the words considered for
// matching, dropping anything of minWordLength or fewer characters.
func queryWords(lowerQuery string) []string {
	fields := strings.Fields(lowerQuery)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > minWordLength {
			words = append(words, f)
		}
	}
	return words
}

// wordPattern builds a whole-word matcher with metacharacters escaped.
func wordPattern(word string) (*regexp.Regexp, error) {
	return regexp.Compile(`\b` + regexp.QuoteMeta(word) + `\b`)
}

type scoredResult struct {
	item  domain.SearchResultItem
	score int
}

// FilterAndRank scores every result, discards those below MinScore, sorts
// descending by score (stable, so ties keep provider order), truncates to
// maxResults, and strips the scores before returning.
func FilterAndRank(results []domain.SearchResultItem, query string, maxResults int) []domain.SearchResultItem {
	scored := make([]scoredResult, 0, len(results))
	for _, item := range results {
		s := Score(item, query)
		if s < MinScore {
			continue
		}
		scored = append(scored, scoredResult{item: item, score: s})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if maxResults > 0 && len(scored) > maxResults {
		scored = scored[:maxResults]
	}

	ranked := make([]domain.SearchResultItem, 0, len(scored))
	for _, sr := range scored {
		ranked = append(ranked, sr.item)
	}
	return ranked
}
