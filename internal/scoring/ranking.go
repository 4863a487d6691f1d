package scoring

import "sort"

// Standing is one cohort member's position in a quiz's ranking.
type Standing struct {
	StudentID  string
	Score      float64
	Rank       int
	Percentile float64
}

// RankCohort orders the standings by score descending and assigns dense
// ranks and percentiles across the whole cohort.
//
// Dense ("competition") ranking: rank = 1 + count of strictly greater
// scores, so tied scores share a rank. Percentile = fraction of the cohort
// strictly below the score, in [0, 100]. A cohort of one is defined as
// rank 1, percentile 100.
func RankCohort(standings []Standing) []Standing {
	ranked := sortByScore(standings)
	n := len(ranked)
	if n == 0 {
		return ranked
	}
	if n == 1 {
		ranked[0].Rank = 1
		ranked[0].Percentile = 100
		return ranked
	}

	for i := range ranked {
		above, below := countAround(ranked, ranked[i].Score)
		ranked[i].Rank = 1 + above
		ranked[i].Percentile = float64(below) / float64(n) * 100
	}
	return ranked
}

// RankFinal orders the standings by score descending and assigns
// positional 1-based ranks: every row gets a distinct rank even on ties.
// Percentiles follow the same strictly-below formula as the live ranking.
func RankFinal(standings []Standing) []Standing {
	ranked := sortByScore(standings)
	n := len(ranked)
	if n == 0 {
		return ranked
	}
	if n == 1 {
		ranked[0].Rank = 1
		ranked[0].Percentile = 100
		return ranked
	}

	for i := range ranked {
		_, below := countAround(ranked, ranked[i].Score)
		ranked[i].Rank = i + 1
		ranked[i].Percentile = float64(below) / float64(n) * 100
	}
	return ranked
}

// sortByScore returns a copy sorted by score descending. The sort is
// stable with a student-ID tiebreak so repeated recomputes order ties
// identically.
func sortByScore(standings []Standing) []Standing {
	ranked := make([]Standing, len(standings))
	copy(ranked, standings)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].StudentID < ranked[j].StudentID
	})
	return ranked
}

func countAround(ranked []Standing, score float64) (above, below int) {
	for i := range ranked {
		if ranked[i].Score > score {
			above++
		} else if ranked[i].Score < score {
			below++
		}
	}
	return above, below
}
