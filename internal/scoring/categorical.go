package scoring

import "fmt"

// Category item ranges (1-indexed, inclusive) and thresholds of the fixed
// 29-item instrument. A category is positive when its sum meets or exceeds
// its threshold. These cutoffs encode a validated screening instrument and
// must not be changed without domain sign-off.
const (
	anxietyDepressionFirst     = 1
	anxietyDepressionLast      = 20
	anxietyDepressionThreshold = 5

	substanceUseItem      = 21
	substanceUseThreshold = 1

	psychoticFirst     = 22
	psychoticLast      = 24
	psychoticThreshold = 1

	ptsdFirst     = 25
	ptsdLast      = 29
	ptsdThreshold = 1
)

const (
	StatusNormal   = "normal"
	StatusAbnormal = "abnormal"
)

// CategoricalResult is the structured payload stored for a
// categorical-threshold attempt.
type CategoricalResult struct {
	Total                int    `json:"total"`
	AnxietyDepressionSum int    `json:"anxiety_depression_sum"`
	SubstanceUseSum      int    `json:"substance_use_sum"`
	PsychoticSum         int    `json:"psychotic_sum"`
	PTSDSum              int    `json:"ptsd_sum"`
	AnxietyDepression    bool   `json:"anxiety_depression"`
	SubstanceUse         bool   `json:"substance_use"`
	Psychotic            bool   `json:"psychotic"`
	PTSD                 bool   `json:"ptsd"`
	Status               string `json:"status"`
	Narrative            string `json:"narrative"`
}

// Narrative mask bits.
const (
	maskAnxietyDepression = 8
	maskSubstanceUse      = 4
	maskPsychotic         = 2
	maskPTSD              = 1
)

// outcomeNarratives is the complete truth table over the four category
// verdicts. Every combination has a pre-authored fixed string; the zero mask
// is the single normal outcome. The texts are product constants.
var outcomeNarratives = map[int]string{
	0: "No significant symptoms were detected in any screening category. The overall screening result is within the normal range.",

	maskPTSD: "Indications of post-traumatic stress symptoms were detected. The anxiety/depression, substance use and psychotic symptom categories are within the normal range. Further clinical evaluation is recommended.",

	maskPsychotic: "Indications of psychotic symptoms were detected. The anxiety/depression, substance use and post-traumatic stress categories are within the normal range. Further clinical evaluation is recommended.",

	maskPsychotic | maskPTSD: "Indications of psychotic and post-traumatic stress symptoms were detected. The anxiety/depression and substance use categories are within the normal range. Further clinical evaluation is recommended.",

	maskSubstanceUse: "Indications of substance use were detected. The anxiety/depression, psychotic symptom and post-traumatic stress categories are within the normal range. Further clinical evaluation is recommended.",

	maskSubstanceUse | maskPTSD: "Indications of substance use and post-traumatic stress symptoms were detected. The anxiety/depression and psychotic symptom categories are within the normal range. Further clinical evaluation is recommended.",

	maskSubstanceUse | maskPsychotic: "Indications of substance use and psychotic symptoms were detected. The anxiety/depression and post-traumatic stress categories are within the normal range. Further clinical evaluation is recommended.",

	maskSubstanceUse | maskPsychotic | maskPTSD: "Indications of substance use, psychotic and post-traumatic stress symptoms were detected. The anxiety/depression category is within the normal range. Further clinical evaluation is recommended.",

	maskAnxietyDepression: "Indications of anxiety or depressive symptoms were detected. The substance use, psychotic symptom and post-traumatic stress categories are within the normal range. Further clinical evaluation is recommended.",

	maskAnxietyDepression | maskPTSD: "Indications of anxiety or depressive symptoms together with post-traumatic stress symptoms were detected. The substance use and psychotic symptom categories are within the normal range. Further clinical evaluation is recommended.",

	maskAnxietyDepression | maskPsychotic: "Indications of anxiety or depressive symptoms together with psychotic symptoms were detected. The substance use and post-traumatic stress categories are within the normal range. Further clinical evaluation is recommended.",

	maskAnxietyDepression | maskPsychotic | maskPTSD: "Indications of anxiety or depressive symptoms together with psychotic and post-traumatic stress symptoms were detected. The substance use category is within the normal range. Further clinical evaluation is recommended.",

	maskAnxietyDepression | maskSubstanceUse: "Indications of anxiety or depressive symptoms together with substance use were detected. The psychotic symptom and post-traumatic stress categories are within the normal range. Further clinical evaluation is recommended.",

	maskAnxietyDepression | maskSubstanceUse | maskPTSD: "Indications of anxiety or depressive symptoms together with substance use and post-traumatic stress symptoms were detected. The psychotic symptom category is within the normal range. Further clinical evaluation is recommended.",

	maskAnxietyDepression | maskSubstanceUse | maskPsychotic: "Indications of anxiety or depressive symptoms together with substance use and psychotic symptoms were detected. The post-traumatic stress category is within the normal range. Further clinical evaluation is recommended.",

	maskAnxietyDepression | maskSubstanceUse | maskPsychotic | maskPTSD: "Indications of anxiety or depressive symptoms together with substance use, psychotic and post-traumatic stress symptoms were detected in every screening category. Further clinical evaluation is strongly recommended.",
}

// CategoricalThreshold scores the fixed 29-item Yes/No instrument. raw holds
// 0 or 1 per item in instrument order. A wrong vector length is a contract
// violation, as with LikertReverse.
func CategoricalThreshold(raw []int) (CategoricalResult, error) {
	if len(raw) != CategoricalItemCount {
		return CategoricalResult{}, fmt.Errorf("expected %d item values, got %d", CategoricalItemCount, len(raw))
	}

	var res CategoricalResult
	for i, v := range raw {
		if v != 0 && v != 1 {
			return CategoricalResult{}, fmt.Errorf("item %d raw value %d is not binary", i+1, v)
		}
		pos := i + 1
		res.Total += v
		switch {
		case pos >= anxietyDepressionFirst && pos <= anxietyDepressionLast:
			res.AnxietyDepressionSum += v
		case pos == substanceUseItem:
			res.SubstanceUseSum += v
		case pos >= psychoticFirst && pos <= psychoticLast:
			res.PsychoticSum += v
		case pos >= ptsdFirst && pos <= ptsdLast:
			res.PTSDSum += v
		}
	}

	res.AnxietyDepression = res.AnxietyDepressionSum >= anxietyDepressionThreshold
	res.SubstanceUse = res.SubstanceUseSum >= substanceUseThreshold
	res.Psychotic = res.PsychoticSum >= psychoticThreshold
	res.PTSD = res.PTSDSum >= ptsdThreshold

	mask := 0
	if res.AnxietyDepression {
		mask |= maskAnxietyDepression
	}
	if res.SubstanceUse {
		mask |= maskSubstanceUse
	}
	if res.Psychotic {
		mask |= maskPsychotic
	}
	if res.PTSD {
		mask |= maskPTSD
	}

	narrative, ok := outcomeNarratives[mask]
	if !ok {
		// The map covers all 16 combinations; reaching this is a bug.
		return CategoricalResult{}, fmt.Errorf("no outcome narrative for category mask %d", mask)
	}
	res.Narrative = narrative

	if mask == 0 {
		res.Status = StatusNormal
	} else {
		res.Status = StatusAbnormal
	}
	return res, nil
}
