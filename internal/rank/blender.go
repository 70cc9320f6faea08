// Package rank merges short-horizon and long-horizon strategy scores into the
// single leaderboard ordering the console displays.
//
// The published semantics are fixed: a strategy with long-term data scores
// 55% short-term + 45% long-term; without it, the short-term score stands
// alone. Long-term data that is absent or based on too few trades counts as
// no long-term data at all, never as a zero score.
package rank

import (
	"sort"

	"github.com/web3guy0/spydesk/internal/api"
)

const (
	stWeight = 0.55
	ltWeight = 0.45

	// A long-term run with fewer trades than this proves nothing
	minLtTrades = 10
)

// LTScore is an optional long-term composite score.
// Valid is false when no usable long-term data exists.
type LTScore struct {
	Score float64
	Valid bool
}

// Input is one strategy's two performance summaries
type Input struct {
	Strategy string
	ST       float64
	LT       LTScore
}

// Ranked is one strategy with its blended ordering key
type Ranked struct {
	Strategy string
	ST       float64
	LT       LTScore
	Blended  float64
}

// Blend computes the blended score for one input
func Blend(in Input) float64 {
	if !in.LT.Valid {
		return in.ST
	}
	return stWeight*in.ST + ltWeight*in.LT.Score
}

// Rank blends every input and sorts descending by blended score.
// The sort is stable: equal scores keep their prior relative order, so
// repeated runs on unchanged inputs yield identical output.
func Rank(inputs []Input) []Ranked {
	out := make([]Ranked, len(inputs))
	for i, in := range inputs {
		out[i] = Ranked{
			Strategy: in.Strategy,
			ST:       in.ST,
			LT:       in.LT,
			Blended:  Blend(in),
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Blended > out[j].Blended
	})
	return out
}

// FromLeaderboard maps raw leaderboard rows onto blender inputs.
// lt_composite_score null, or a long-term run with under 10 trades, both mean
// "no long-term data".
func FromLeaderboard(rows []api.StrategyRanking) []Input {
	inputs := make([]Input, len(rows))
	for i, row := range rows {
		in := Input{
			Strategy: row.StrategyName,
			ST:       row.StCompositeScore,
		}
		if row.LtCompositeScore != nil && usableLt(row) {
			in.LT = LTScore{Score: *row.LtCompositeScore, Valid: true}
		}
		inputs[i] = in
	}
	return inputs
}

func usableLt(row api.StrategyRanking) bool {
	return row.LtTotalTrades == nil || *row.LtTotalTrades >= minLtTrades
}
