package ranking

import (
	"errors"
	"fmt"
	"sort"
)

// #region types

// SearchResult is one candidate returned by a search.
type SearchResult struct {
	ID         string  `yaml:"id" json:"id"`
	Price      float64 `yaml:"price" json:"price"`
	Popularity int     `yaml:"popularity" json:"popularity"`
	UserRating float64 `yaml:"rating" json:"rating"`
}

// String implements fmt.Stringer.
func (r SearchResult) String() string {
	return fmt.Sprintf("SearchResult(id: %s, price: %g, popularity: %d, rating: %g)",
		r.ID, r.Price, r.Popularity, r.UserRating)
}

// RankedResult pairs a result with the score it was ranked by.
type RankedResult struct {
	SearchResult
	Score float64 `json:"score"`
}

// ScorerID identifies a built-in scorer.
type ScorerID string

const (
	ScorerCheapest   ScorerID = "cheapest"
	ScorerPopularity ScorerID = "popularity"
	ScorerHybrid     ScorerID = "hybrid"
)

// #endregion

// #region scorers

// Scorer assigns a ranking score; higher ranks first.
type Scorer interface {
	Score(r SearchResult) float64
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(SearchResult) float64

// Score calls f.
func (f ScorerFunc) Score(r SearchResult) float64 { return f(r) }

// CheapestFirst ranks by ascending price.
type CheapestFirst struct{}

// Score is the negated price.
func (CheapestFirst) Score(r SearchResult) float64 { return -r.Price }

// Popularity ranks by popularity count.
type Popularity struct{}

// Score is the popularity count.
func (Popularity) Score(r SearchResult) float64 { return float64(r.Popularity) }

// Hybrid blends popularity, rating and price:
// 0.4*popularity + 0.6*(rating/0.5*100) + 1.0*(1/(1+price)).
type Hybrid struct{}

const (
	hybridPopularityWeight = 0.4
	hybridRatingWeight     = 0.6
	hybridPriceWeight      = 1.0
)

// Score computes the blended score.
func (Hybrid) Score(r SearchResult) float64 {
	normalizedPrice := 1.0 / (1.0 + r.Price)
	ratingScaled := (r.UserRating / 0.5) * 100.0
	return hybridPopularityWeight*float64(r.Popularity) +
		hybridRatingWeight*ratingScaled +
		hybridPriceWeight*normalizedPrice
}

// Scorers returns the full set of built-in scorers.
var Scorers = map[ScorerID]Scorer{
	ScorerCheapest:   CheapestFirst{},
	ScorerPopularity: Popularity{},
	ScorerHybrid:     Hybrid{},
}

// Lookup returns the built-in scorer for id.
func Lookup(id ScorerID) (Scorer, error) {
	s, ok := Scorers[id]
	if !ok {
		return nil, fmt.Errorf("unknown scorer %q", id)
	}
	return s, nil
}

// #endregion

// #region ranker

// ErrMissingScorer is returned when a ranker is built or updated with a nil scorer.
var ErrMissingScorer = errors.New("ranking: scorer is required")

// Ranker orders search results with a swappable scorer.
type Ranker struct {
	scorer Scorer
}

// NewRanker creates a ranker.
func NewRanker(s Scorer) (*Ranker, error) {
	if s == nil {
		return nil, ErrMissingScorer
	}
	return &Ranker{scorer: s}, nil
}

// SetScorer replaces the scorer.
func (rk *Ranker) SetScorer(s Scorer) error {
	if s == nil {
		return ErrMissingScorer
	}
	rk.scorer = s
	return nil
}

// Rank returns results ordered by descending score. Ties keep input order.
// The input slice is not modified.
func (rk *Ranker) Rank(results []SearchResult) []RankedResult {
	ranked := make([]RankedResult, len(results))
	for i, r := range results {
		ranked[i] = RankedResult{SearchResult: r, Score: rk.scorer.Score(r)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// #endregion
