package scoring

import (
	"fmt"
	"math"
)

// GenericItem is one question's contribution to a marks-based score.
type GenericItem struct {
	Marks    float64
	Answered bool
	Correct  bool
}

// GenericResult is the structured payload stored for a generic-scheme attempt.
type GenericResult struct {
	EarnedMarks float64 `json:"earned_marks"`
	TotalMarks  float64 `json:"total_marks"`
	Percent     float64 `json:"percent"`
	Answered    int     `json:"answered"`
	Correct     int     `json:"correct"`
}

// Generic computes round(100 * earned / total) over per-question marks.
// Unanswered questions earn nothing. Single-select only; there is no partial
// credit.
func Generic(items []GenericItem) (GenericResult, error) {
	var res GenericResult
	for _, item := range items {
		if item.Marks < 0 {
			return GenericResult{}, fmt.Errorf("negative marks weight %.2f", item.Marks)
		}
		res.TotalMarks += item.Marks
		if !item.Answered {
			continue
		}
		res.Answered++
		if item.Correct {
			res.Correct++
			res.EarnedMarks += item.Marks
		}
	}
	if res.TotalMarks == 0 {
		return GenericResult{}, fmt.Errorf("total marks is zero, exam has no scoreable questions")
	}
	res.Percent = math.Round(100 * res.EarnedMarks / res.TotalMarks)
	return res, nil
}
