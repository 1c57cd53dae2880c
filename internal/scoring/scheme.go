package scoring

// Scheme discriminates how an exam's answer vector is turned into a result.
type Scheme string

const (
	// SchemeGeneric sums per-question marks for correctly answered questions
	// and normalizes to a percentage.
	SchemeGeneric Scheme = "generic"
	// SchemeLikertReverse is the fixed 10-item instrument scored on a 0-4
	// ordinal scale with reverse-scored positions.
	SchemeLikertReverse Scheme = "likert_reverse"
	// SchemeCategoricalThreshold is the fixed 29-item Yes/No instrument
	// partitioned into four symptom categories with independent thresholds.
	SchemeCategoricalThreshold Scheme = "categorical_threshold"
)

// Item counts of the fixed instruments. These are catalog invariants: exams
// using the corresponding scheme must carry exactly this many questions.
const (
	LikertItemCount      = 10
	CategoricalItemCount = 29
)

func (s Scheme) Valid() bool {
	switch s {
	case SchemeGeneric, SchemeLikertReverse, SchemeCategoricalThreshold:
		return true
	}
	return false
}
