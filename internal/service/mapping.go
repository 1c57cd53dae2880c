package service

import (
	"fmt"

	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/dto"
	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/model"
	"github.com/jinzhu/copier"
)

// toQuestionResponses maps catalog questions to their client-facing shape.
// The DTOs carry no correctness flags or marks, so scoring inputs never leak
// to the client.
func toQuestionResponses(questions []model.Question) ([]dto.QuestionResponse, error) {
	out := make([]dto.QuestionResponse, len(questions))
	for i, q := range questions {
		if err := copier.Copy(&out[i], &q); err != nil {
			return nil, fmt.Errorf("error mapping question %d: %w", q.ID, err)
		}
		out[i].Options = make([]dto.OptionResponse, len(q.Options))
		for j, opt := range q.Options {
			if err := copier.Copy(&out[i].Options[j], &opt); err != nil {
				return nil, fmt.Errorf("error mapping option %d: %w", opt.ID, err)
			}
		}
	}
	return out, nil
}

func toAttemptResult(attempt *model.Attempt) *dto.AttemptResultResponse {
	res := &dto.AttemptResultResponse{
		AttemptID:     attempt.ID,
		ExamID:        attempt.ExamID,
		Status:        string(attempt.Status),
		CategoryLabel: attempt.CategoryLabel,
		StartedAt:     attempt.StartedAt,
		CompletedAt:   attempt.CompletedAt,
	}
	if attempt.Score != nil {
		res.Score = *attempt.Score
	}
	if len(attempt.ResultPayload) > 0 {
		res.Result = []byte(attempt.ResultPayload)
	}
	return res
}
