package progress

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/eadlabs/ead-platform/internal/assessment"
	syncx "github.com/eadlabs/ead-platform/internal/sync"
)

var ErrQuizNotPassed = errors.New("lesson quiz not passed")

// Service is the hardened completion path: a lesson that owns questions
// can only be completed through a passing quiz submission, and the
// submitted answers are snapshotted into the progress row. The raw store
// upsert stays available for admin backfills.
type Service struct {
	store     *SQLStore
	questions *assessment.SQLStore
	engine    *assessment.Engine
	events    *syncx.EventRepo // nil: completions are not journaled
}

func NewService(store *SQLStore, questions *assessment.SQLStore, engine *assessment.Engine, events *syncx.EventRepo) *Service {
	return &Service{store: store, questions: questions, engine: engine, events: events}
}

// CompleteLesson marks the lesson done for the student. The returned
// result is nil when the lesson has no quiz. On a failing submission the
// result is returned alongside ErrQuizNotPassed and nothing is written.
func (s *Service) CompleteLesson(ctx context.Context, studentID, lessonID string, answers map[string]string) (*assessment.Result, error) {
	owner := assessment.LessonOwner(lessonID)
	has, err := s.questions.HasQuestions(ctx, owner)
	if err != nil {
		return nil, err
	}

	if !has {
		if err := s.store.MarkCompleted(ctx, studentID, lessonID, ""); err != nil {
			return nil, err
		}
		s.journal(ctx, studentID, lessonID)
		return nil, nil
	}

	res, err := s.engine.Submit(ctx, studentID, owner, answers)
	if err != nil {
		return nil, err
	}
	if !res.Passed {
		return &res, ErrQuizNotPassed
	}
	snapshot, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}
	if err := s.store.MarkCompleted(ctx, studentID, lessonID, string(snapshot)); err != nil {
		return nil, err
	}
	s.journal(ctx, studentID, lessonID)
	return &res, nil
}

func (s *Service) journal(ctx context.Context, studentID, lessonID string) {
	if s.events != nil {
		_ = s.events.Append(ctx, "LessonCompleted", studentID+"/"+lessonID,
			map[string]string{"student_id": studentID, "lesson_id": lessonID})
	}
}

// AnswerReview pairs a question with what the student answered at
// completion time. Consumed by instructors; includes the answer key.
type AnswerReview struct {
	QuestionText  string            `json:"question_text"`
	Options       map[string]string `json:"options"`
	StudentAnswer string            `json:"student_answer,omitempty"`
	CorrectOption string            `json:"correct_option"`
	IsCorrect     bool              `json:"is_correct"`
}

// ReviewAnswers rebuilds a student's lesson quiz from the stored snapshot.
// Returns an empty slice when the lesson was never completed or carried
// no snapshot.
func (s *Service) ReviewAnswers(ctx context.Context, studentID, lessonID string) ([]AnswerReview, error) {
	p, ok, err := s.store.Get(ctx, studentID, lessonID)
	if err != nil {
		return nil, err
	}
	if !ok || !p.IsCompleted || p.AnswersJSON == "" {
		return []AnswerReview{}, nil
	}
	var snapshot map[string]string
	if err := json.Unmarshal([]byte(p.AnswersJSON), &snapshot); err != nil {
		return nil, err
	}
	questions, err := s.questions.ListForOwner(ctx, assessment.LessonOwner(lessonID), true)
	if err != nil {
		return nil, err
	}
	out := make([]AnswerReview, 0, len(questions))
	for _, q := range questions {
		sub := snapshot[q.ID]
		out = append(out, AnswerReview{
			QuestionText: q.Text,
			Options: map[string]string{
				"A": q.OptionA, "B": q.OptionB, "C": q.OptionC, "D": q.OptionD,
			},
			StudentAnswer: sub,
			CorrectOption: q.CorrectOption,
			IsCorrect:     sub != "" && strings.EqualFold(sub, q.CorrectOption),
		})
	}
	return out, nil
}
