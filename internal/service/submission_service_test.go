package service

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/dto"
	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/model"
	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/scoring"
)

func TestSubmitAttempt_GenericFiftyPercent(t *testing.T) {
	e := newTestEngine(t)
	exam := seedGenericExam(t, e)
	session := e.beginAttempt(t, 7, exam.ID)

	req := dto.SubmitAttemptRequest{Answers: []dto.AnswerSubmission{
		{QuestionID: exam.Questions[0].ID, OptionID: correctOption(t, exam.Questions[0])},
		{QuestionID: exam.Questions[1].ID, OptionID: wrongOption(t, exam.Questions[1])},
	}}
	result, err := e.submissions.SubmitAttempt(session.AttemptID, 7, req)
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}

	if result.Score != 50 {
		t.Errorf("expected score 50, got %.0f", result.Score)
	}
	if result.Status != string(model.AttemptCompleted) {
		t.Errorf("expected status completed, got %q", result.Status)
	}
	if result.CompletedAt == nil {
		t.Error("expected completion timestamp")
	}

	var payload scoring.GenericResult
	if err := json.Unmarshal(result.Result, &payload); err != nil {
		t.Fatalf("decode result payload: %v", err)
	}
	if payload.EarnedMarks != 1 || payload.TotalMarks != 2 || payload.Percent != 50 {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestSubmitAttempt_Idempotent(t *testing.T) {
	e := newTestEngine(t)
	exam := seedGenericExam(t, e)
	session := e.beginAttempt(t, 7, exam.ID)
	q1, q2 := exam.Questions[0], exam.Questions[1]

	first := dto.SubmitAttemptRequest{Answers: []dto.AnswerSubmission{
		{QuestionID: q1.ID, OptionID: correctOption(t, q1)},
		{QuestionID: q2.ID, OptionID: wrongOption(t, q2)},
	}}
	if _, err := e.submissions.SubmitAttempt(session.AttemptID, 7, first); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	before := e.answerRows(t, session.AttemptID)

	// A retry with different answers must not re-score or overwrite.
	retry := dto.SubmitAttemptRequest{Answers: []dto.AnswerSubmission{
		{QuestionID: q1.ID, OptionID: correctOption(t, q1)},
		{QuestionID: q2.ID, OptionID: correctOption(t, q2)},
	}}
	if _, err := e.submissions.SubmitAttempt(session.AttemptID, 7, retry); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}

	attempt := e.loadAttempt(t, session.AttemptID)
	if attempt.Score == nil || *attempt.Score != 50 {
		t.Errorf("stored score changed after retry: %v", attempt.Score)
	}
	after := e.answerRows(t, session.AttemptID)
	if len(after) != len(before) {
		t.Fatalf("answer rows changed after retry: %d vs %d", len(after), len(before))
	}
	for i := range after {
		if after[i].SelectedOptionID != before[i].SelectedOptionID {
			t.Errorf("answer for question %d changed after retry", after[i].QuestionID)
		}
	}

	// The stored result is still retrievable for the caller.
	prior, err := e.submissions.GetAttemptResult(session.AttemptID, 7)
	if err != nil {
		t.Fatalf("GetAttemptResult: %v", err)
	}
	if prior.Score != 50 {
		t.Errorf("expected stored score 50, got %.0f", prior.Score)
	}
}

func TestSubmitAttempt_Forbidden(t *testing.T) {
	e := newTestEngine(t)
	exam := seedGenericExam(t, e)
	session := e.beginAttempt(t, 7, exam.ID)

	req := dto.SubmitAttemptRequest{Answers: []dto.AnswerSubmission{
		{QuestionID: exam.Questions[0].ID, OptionID: correctOption(t, exam.Questions[0])},
	}}
	if _, err := e.submissions.SubmitAttempt(session.AttemptID, 8, req); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}

	attempt := e.loadAttempt(t, session.AttemptID)
	if attempt.Status != model.AttemptInProgress {
		t.Errorf("attempt state changed by a forbidden submit: %q", attempt.Status)
	}
}

func TestSubmitAttempt_WithinGraceWindow(t *testing.T) {
	e := newTestEngine(t)
	exam := seedGenericExam(t, e)
	session := e.beginAttempt(t, 7, exam.ID)

	// Budget is 30 minutes; grace adds 2 more.
	e.clock.Advance(31 * time.Minute)

	req := dto.SubmitAttemptRequest{Answers: []dto.AnswerSubmission{
		{QuestionID: exam.Questions[0].ID, OptionID: correctOption(t, exam.Questions[0])},
		{QuestionID: exam.Questions[1].ID, OptionID: correctOption(t, exam.Questions[1])},
	}}
	result, err := e.submissions.SubmitAttempt(session.AttemptID, 7, req)
	if err != nil {
		t.Fatalf("submit within grace window: %v", err)
	}
	if result.Score != 100 {
		t.Errorf("expected score 100, got %.0f", result.Score)
	}
}

func TestSubmitAttempt_TimeExpired(t *testing.T) {
	e := newTestEngine(t)
	exam := seedGenericExam(t, e)
	session := e.beginAttempt(t, 7, exam.ID)

	e.clock.Advance(32*time.Minute + time.Second)

	req := dto.SubmitAttemptRequest{Answers: []dto.AnswerSubmission{
		{QuestionID: exam.Questions[0].ID, OptionID: correctOption(t, exam.Questions[0])},
	}}
	if _, err := e.submissions.SubmitAttempt(session.AttemptID, 7, req); !errors.Is(err, ErrTimeExpired) {
		t.Fatalf("expected ErrTimeExpired, got %v", err)
	}

	attempt := e.loadAttempt(t, session.AttemptID)
	if attempt.Status != model.AttemptCompleted {
		t.Errorf("expected force-completion, got status %q", attempt.Status)
	}
	if attempt.Score == nil || *attempt.Score != 0 {
		t.Errorf("expected zero score, got %v", attempt.Score)
	}

	// The expiry consumed the one-way transition.
	if _, err := e.submissions.SubmitAttempt(session.AttemptID, 7, req); !errors.Is(err, ErrAlreadySubmitted) {
		t.Errorf("expected ErrAlreadySubmitted after expiry, got %v", err)
	}
}

func TestSubmitAttempt_ValidationRollsBack(t *testing.T) {
	e := newTestEngine(t)
	exam := seedGenericExam(t, e)
	other := seedLikertExam(t, e)
	session := e.beginAttempt(t, 7, exam.ID)

	req := dto.SubmitAttemptRequest{Answers: []dto.AnswerSubmission{
		{QuestionID: exam.Questions[0].ID, OptionID: correctOption(t, exam.Questions[0])},
		{QuestionID: other.Questions[0].ID, OptionID: other.Questions[0].Options[0].ID},
	}}
	if _, err := e.submissions.SubmitAttempt(session.AttemptID, 7, req); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	if attempt := e.loadAttempt(t, session.AttemptID); attempt.Status != model.AttemptInProgress {
		t.Errorf("attempt state changed by rejected submit: %q", attempt.Status)
	}
	if rows := e.answerRows(t, session.AttemptID); len(rows) != 0 {
		t.Errorf("expected no persisted answers after rejection, got %d", len(rows))
	}
}

func TestSubmitAttempt_ConcurrentSingleWinner(t *testing.T) {
	e := newTestEngine(t)
	exam := seedGenericExam(t, e)
	session := e.beginAttempt(t, 7, exam.ID)

	req := dto.SubmitAttemptRequest{Answers: []dto.AnswerSubmission{
		{QuestionID: exam.Questions[0].ID, OptionID: correctOption(t, exam.Questions[0])},
		{QuestionID: exam.Questions[1].ID, OptionID: wrongOption(t, exam.Questions[1])},
	}}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.submissions.SubmitAttempt(session.AttemptID, 7, req)
		}(i)
	}
	wg.Wait()

	successes, rejections := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrAlreadySubmitted):
			rejections++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || rejections != 1 {
		t.Errorf("expected 1 success and 1 rejection, got %d and %d", successes, rejections)
	}

	attempt := e.loadAttempt(t, session.AttemptID)
	if attempt.Score == nil || *attempt.Score != 50 {
		t.Errorf("expected a single stored score of 50, got %v", attempt.Score)
	}
	if rows := e.answerRows(t, session.AttemptID); len(rows) != 2 {
		t.Errorf("expected 2 answer rows, got %d", len(rows))
	}
}

func TestSubmitAttempt_LikertAllLowest(t *testing.T) {
	e := newTestEngine(t)
	exam := seedLikertExam(t, e)
	session := e.beginAttempt(t, 7, exam.ID)

	// Lowest option everywhere: raw 0, so the four reverse items each
	// contribute 4.
	var answers []dto.AnswerSubmission
	for _, q := range exam.Questions {
		answers = append(answers, dto.AnswerSubmission{QuestionID: q.ID, OptionID: optionByPosition(t, q, 1)})
	}
	result, err := e.submissions.SubmitAttempt(session.AttemptID, 7, dto.SubmitAttemptRequest{Answers: answers})
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}

	if result.Score != 16 {
		t.Errorf("expected total 16, got %.0f", result.Score)
	}
	if result.CategoryLabel != string(scoring.BandModerate) {
		t.Errorf("expected band %q, got %q", scoring.BandModerate, result.CategoryLabel)
	}

	var payload scoring.LikertResult
	if err := json.Unmarshal(result.Result, &payload); err != nil {
		t.Fatalf("decode result payload: %v", err)
	}
	if payload.Total != 16 || payload.Band != scoring.BandModerate {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestSubmitAttempt_LikertIncompleteVector(t *testing.T) {
	e := newTestEngine(t)
	exam := seedLikertExam(t, e)
	session := e.beginAttempt(t, 7, exam.ID)

	var answers []dto.AnswerSubmission
	for _, q := range exam.Questions[:9] {
		answers = append(answers, dto.AnswerSubmission{QuestionID: q.ID, OptionID: optionByPosition(t, q, 1)})
	}
	if _, err := e.submissions.SubmitAttempt(session.AttemptID, 7, dto.SubmitAttemptRequest{Answers: answers}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for an incomplete instrument, got %v", err)
	}
}

func TestSubmitAttempt_CategoricalAnxietyDepressionOnly(t *testing.T) {
	e := newTestEngine(t)
	exam := seedCategoricalExam(t, e)
	session := e.beginAttempt(t, 7, exam.ID)

	// Yes on items 1-5 meets the anxiety/depression threshold; every other
	// category stays at zero.
	var answers []dto.AnswerSubmission
	for i, q := range exam.Questions {
		pos := 2 // "No"
		if i < 5 {
			pos = 1 // "Yes"
		}
		answers = append(answers, dto.AnswerSubmission{QuestionID: q.ID, OptionID: optionByPosition(t, q, pos)})
	}
	result, err := e.submissions.SubmitAttempt(session.AttemptID, 7, dto.SubmitAttemptRequest{Answers: answers})
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}

	if result.Score != 5 {
		t.Errorf("expected total 5, got %.0f", result.Score)
	}
	if result.CategoryLabel != scoring.StatusAbnormal {
		t.Errorf("expected label %q, got %q", scoring.StatusAbnormal, result.CategoryLabel)
	}

	var payload scoring.CategoricalResult
	if err := json.Unmarshal(result.Result, &payload); err != nil {
		t.Fatalf("decode result payload: %v", err)
	}
	if !payload.AnxietyDepression || payload.SubstanceUse || payload.Psychotic || payload.PTSD {
		t.Errorf("unexpected category verdicts: %+v", payload)
	}

	// The narrative must be exactly the anxiety/depression-only template.
	vector := make([]int, scoring.CategoricalItemCount)
	for i := 0; i < 5; i++ {
		vector[i] = 1
	}
	expected, err := scoring.CategoricalThreshold(vector)
	if err != nil {
		t.Fatalf("CategoricalThreshold: %v", err)
	}
	if payload.Narrative != expected.Narrative {
		t.Errorf("narrative mismatch:\n got %q\nwant %q", payload.Narrative, expected.Narrative)
	}
}

func TestSubmitAttempt_CategoricalAllNegative(t *testing.T) {
	e := newTestEngine(t)
	exam := seedCategoricalExam(t, e)
	session := e.beginAttempt(t, 7, exam.ID)

	var answers []dto.AnswerSubmission
	for _, q := range exam.Questions {
		answers = append(answers, dto.AnswerSubmission{QuestionID: q.ID, OptionID: optionByPosition(t, q, 2)})
	}
	result, err := e.submissions.SubmitAttempt(session.AttemptID, 7, dto.SubmitAttemptRequest{Answers: answers})
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}

	if result.Score != 0 {
		t.Errorf("expected total 0, got %.0f", result.Score)
	}
	if result.CategoryLabel != scoring.StatusNormal {
		t.Errorf("expected label %q, got %q", scoring.StatusNormal, result.CategoryLabel)
	}
}

func TestGetAttemptResult_Rejections(t *testing.T) {
	e := newTestEngine(t)
	exam := seedGenericExam(t, e)
	session := e.beginAttempt(t, 7, exam.ID)

	if _, err := e.submissions.GetAttemptResult(999, 7); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown attempt: expected ErrNotFound, got %v", err)
	}
	if _, err := e.submissions.GetAttemptResult(session.AttemptID, 8); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign caller: expected ErrForbidden, got %v", err)
	}
}
