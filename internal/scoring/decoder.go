package scoring

import (
	"fmt"
	"sort"
	"strings"
)

// OptionMeta is the slice of catalog data a decoder needs about one option.
type OptionMeta struct {
	ID      uint
	Ordinal int
	Label   string
}

// OptionDecoder maps a selected option to the raw integer value a scheme
// scores with. Decoders are validated once at catalog-load time so that
// malformed seed data fails fast instead of surfacing mid-scoring.
type OptionDecoder interface {
	// Validate checks the option set of one question against the decoder's
	// requirements.
	Validate(options []OptionMeta) error
	// Decode returns the raw value for the selected option ID.
	Decode(selectedID uint, options []OptionMeta) (int, error)
}

// PositionalOrdinal decodes an option to its 0-based position among the
// question's options ordered by ordinal (lowest ordinal = 0). Used by the
// Likert scheme, which has no notion of correctness.
type PositionalOrdinal struct {
	// OptionCount is the exact number of options each question must have.
	OptionCount int
}

func (d PositionalOrdinal) Validate(options []OptionMeta) error {
	if len(options) != d.OptionCount {
		return fmt.Errorf("expected exactly %d options, got %d", d.OptionCount, len(options))
	}
	seen := make(map[int]bool, len(options))
	for _, opt := range options {
		if seen[opt.Ordinal] {
			return fmt.Errorf("duplicate option ordinal %d", opt.Ordinal)
		}
		seen[opt.Ordinal] = true
	}
	return nil
}

func (d PositionalOrdinal) Decode(selectedID uint, options []OptionMeta) (int, error) {
	sorted := make([]OptionMeta, len(options))
	copy(sorted, options)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Ordinal < sorted[j].Ordinal })
	for pos, opt := range sorted {
		if opt.ID == selectedID {
			return pos, nil
		}
	}
	return 0, fmt.Errorf("option %d not found among question options", selectedID)
}

// LabelMatch decodes an option to 1 when its label matches Expected
// case-insensitively, 0 otherwise. Matching is by canonical label, not by
// option ID, since option IDs may be re-seeded.
type LabelMatch struct {
	Expected string
}

func (d LabelMatch) Validate(options []OptionMeta) error {
	if len(options) < 2 {
		return fmt.Errorf("expected at least 2 options, got %d", len(options))
	}
	matches := 0
	for _, opt := range options {
		if strings.EqualFold(strings.TrimSpace(opt.Label), d.Expected) {
			matches++
		}
	}
	if matches != 1 {
		return fmt.Errorf("expected exactly one option labeled %q, got %d", d.Expected, matches)
	}
	return nil
}

func (d LabelMatch) Decode(selectedID uint, options []OptionMeta) (int, error) {
	for _, opt := range options {
		if opt.ID == selectedID {
			if strings.EqualFold(strings.TrimSpace(opt.Label), d.Expected) {
				return 1, nil
			}
			return 0, nil
		}
	}
	return 0, fmt.Errorf("option %d not found among question options", selectedID)
}

// DecoderFor returns the option decoder a scheme requires, or nil for the
// generic scheme, which scores from stored correctness flags instead.
func DecoderFor(s Scheme) OptionDecoder {
	switch s {
	case SchemeLikertReverse:
		return PositionalOrdinal{OptionCount: 5}
	case SchemeCategoricalThreshold:
		return LabelMatch{Expected: "yes"}
	default:
		return nil
	}
}
