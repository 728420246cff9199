package assessment

import (
	"context"
	"strings"

	syncx "github.com/eadlabs/ead-platform/internal/sync"
)

// DefaultPassScore is the fixed threshold for module-level assessments.
const DefaultPassScore = 70.0

// PassPolicy resolves the per-lesson minimum score. Lesson-scoped
// submissions honor it; module-scoped submissions always use
// DefaultPassScore so a persisted grade's passed flag means score >= 70.
type PassPolicy interface {
	LessonPassScore(ctx context.Context, lessonID string) (int, error)
}

type Engine struct {
	store  *SQLStore
	policy PassPolicy       // nil: every target uses DefaultPassScore
	events *syncx.EventRepo // nil: grade writes are not journaled
}

func NewEngine(store *SQLStore, policy PassPolicy, events *syncx.EventRepo) *Engine {
	return &Engine{store: store, policy: policy, events: events}
}

// Submit scores the answers against the owner's question set.
//
// An empty question set is vacuously passed (score 100) so callers can
// submit unconditionally without special-casing "no quiz". A missing or
// unknown answer counts as wrong, never as an error. Only module-scoped
// submissions persist a grade; lesson results exist solely to gate lesson
// completion and are snapshotted by the caller, not here.
func (e *Engine) Submit(ctx context.Context, studentID string, owner QuestionOwner, answers map[string]string) (Result, error) {
	questions, err := e.store.ListForOwner(ctx, owner, true)
	if err != nil {
		return Result{}, err
	}

	if len(questions) == 0 {
		return Result{Score: 100, Passed: true, Correct: 0, Total: 0}, nil
	}

	correct := 0
	for _, q := range questions {
		if sub, ok := answers[q.ID]; ok &&
			strings.EqualFold(strings.TrimSpace(sub), q.CorrectOption) {
			correct++
		}
	}

	score := float64(correct) / float64(len(questions)) * 100
	threshold, err := e.threshold(ctx, owner)
	if err != nil {
		return Result{}, err
	}
	res := Result{
		Score:   score,
		Passed:  score >= threshold,
		Correct: correct,
		Total:   len(questions),
	}

	if moduleID, ok := owner.ModuleID(); ok {
		g := Grade{StudentID: studentID, ModuleID: moduleID, Grade: res.Score, Passed: res.Passed}
		if err := e.store.UpsertGrade(ctx, g); err != nil {
			return Result{}, err
		}
		if e.events != nil {
			_ = e.events.Append(ctx, "GradeUpserted", studentID+"/"+moduleID, g)
		}
	}
	return res, nil
}

func (e *Engine) threshold(ctx context.Context, owner QuestionOwner) (float64, error) {
	lessonID, ok := owner.LessonID()
	if !ok || e.policy == nil {
		return DefaultPassScore, nil
	}
	min, err := e.policy.LessonPassScore(ctx, lessonID)
	if err != nil {
		return 0, err
	}
	if min <= 0 {
		return DefaultPassScore, nil
	}
	return float64(min), nil
}
