package completion

import "context"

// LessonCounter and ProgressCounter are satisfied by the catalog and
// progress SQL stores; EnrollmentChecker by the enrollment store.
type LessonCounter interface {
	CountLessons(ctx context.Context, moduleID string) (int, error)
}

type ProgressCounter interface {
	CountCompletedInModule(ctx context.Context, studentID, moduleID string) (int, error)
}

type EnrollmentChecker interface {
	Exists(ctx context.Context, studentID, moduleID string) (bool, error)
}

// Gate is the pure eligibility predicate layer consumed by the external
// certificate/receipt renderer. It persists nothing of its own.
type Gate struct {
	lessons     LessonCounter
	progress    ProgressCounter
	enrollments EnrollmentChecker
}

func NewGate(lessons LessonCounter, progress ProgressCounter, enrollments EnrollmentChecker) *Gate {
	return &Gate{lessons: lessons, progress: progress, enrollments: enrollments}
}

// IsModuleFullyCompleted reports whether every lesson of the module has a
// completed progress row for the student. A module with zero lessons is
// never eligible: no certificates for empty shells.
func (g *Gate) IsModuleFullyCompleted(ctx context.Context, studentID, moduleID string) (bool, error) {
	total, err := g.lessons.CountLessons(ctx, moduleID)
	if err != nil {
		return false, err
	}
	if total == 0 {
		return false, nil
	}
	done, err := g.progress.CountCompletedInModule(ctx, studentID, moduleID)
	if err != nil {
		return false, err
	}
	return done >= total, nil
}

func (g *Gate) IsEnrolled(ctx context.Context, studentID, moduleID string) (bool, error) {
	return g.enrollments.Exists(ctx, studentID, moduleID)
}

// EligibleForCertificate: enrolled AND fully completed.
func (g *Gate) EligibleForCertificate(ctx context.Context, studentID, moduleID string) (bool, error) {
	enrolled, err := g.IsEnrolled(ctx, studentID, moduleID)
	if err != nil || !enrolled {
		return false, err
	}
	return g.IsModuleFullyCompleted(ctx, studentID, moduleID)
}

// EligibleForEnrollmentReceipt: enrollment existence is enough.
func (g *Gate) EligibleForEnrollmentReceipt(ctx context.Context, studentID, moduleID string) (bool, error) {
	return g.IsEnrolled(ctx, studentID, moduleID)
}
