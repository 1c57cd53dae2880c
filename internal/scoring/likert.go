package scoring

import "fmt"

// LikertBand is the severity band of a reverse-scored Likert total.
type LikertBand string

const (
	BandMild     LikertBand = "mild"
	BandModerate LikertBand = "moderate"
	BandSevere   LikertBand = "severe"
)

// Reverse-scored item positions, 1-indexed. These items contribute 4-raw
// instead of raw; the set is part of the validated instrument and must not
// be changed without domain sign-off.
var likertReversePositions = map[int]bool{4: true, 5: true, 7: true, 8: true}

// LikertResult is the structured payload stored for a Likert-scheme attempt.
type LikertResult struct {
	Total      int        `json:"total"`
	Band       LikertBand `json:"band"`
	ItemScores []int      `json:"item_scores"`
}

// LikertReverse scores the fixed 10-item instrument. raw holds the 0-4
// ordinal value per item in instrument order. A wrong vector length is a
// contract violation: the length comes from the fixed catalog, not from
// untrusted input.
func LikertReverse(raw []int) (LikertResult, error) {
	if len(raw) != LikertItemCount {
		return LikertResult{}, fmt.Errorf("expected %d item values, got %d", LikertItemCount, len(raw))
	}

	res := LikertResult{ItemScores: make([]int, LikertItemCount)}
	for i, v := range raw {
		if v < 0 || v > 4 {
			return LikertResult{}, fmt.Errorf("item %d raw value %d out of range 0-4", i+1, v)
		}
		score := v
		if likertReversePositions[i+1] {
			score = 4 - v
		}
		res.ItemScores[i] = score
		res.Total += score
	}

	switch {
	case res.Total <= 13:
		res.Band = BandMild
	case res.Total <= 26:
		res.Band = BandModerate
	default:
		res.Band = BandSevere
	}
	return res, nil
}
