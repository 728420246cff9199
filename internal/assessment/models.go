package assessment

import "errors"

var (
	ErrBadOwner      = errors.New("question owner must be exactly one of lesson or module")
	ErrBadOption     = errors.New("correct option must be one of A, B, C, D")
	ErrQuestionEmpty = errors.New("question text required")
)

// QuestionOwner is the tagged variant Lesson(id) | Module(id). The zero
// value is invalid; construct through LessonOwner/ModuleOwner/OwnerFromIDs
// so the one-owner invariant holds structurally.
type QuestionOwner struct {
	lessonID string
	moduleID string
}

func LessonOwner(lessonID string) QuestionOwner { return QuestionOwner{lessonID: lessonID} }
func ModuleOwner(moduleID string) QuestionOwner { return QuestionOwner{moduleID: moduleID} }

// OwnerFromIDs builds an owner from a decoded payload. Supplying both or
// neither id is a client error.
func OwnerFromIDs(lessonID, moduleID string) (QuestionOwner, error) {
	switch {
	case lessonID != "" && moduleID == "":
		return LessonOwner(lessonID), nil
	case moduleID != "" && lessonID == "":
		return ModuleOwner(moduleID), nil
	default:
		return QuestionOwner{}, ErrBadOwner
	}
}

func (o QuestionOwner) LessonID() (string, bool) { return o.lessonID, o.lessonID != "" }
func (o QuestionOwner) ModuleID() (string, bool) { return o.moduleID, o.moduleID != "" }

type Question struct {
	ID       string `json:"id"`
	LessonID string `json:"lesson_id,omitempty"`
	ModuleID string `json:"module_id,omitempty"`
	Text     string `json:"question_text"`
	OptionA  string `json:"option_a"`
	OptionB  string `json:"option_b"`
	OptionC  string `json:"option_c"`
	OptionD  string `json:"option_d"`

	// Present only on the editor read path; the taker view never carries
	// the answer key.
	CorrectOption string `json:"correct_option,omitempty"`
}

// Result of one submission. Score is exact (not rounded); formatting is a
// presentation concern.
type Result struct {
	Score   float64 `json:"score"`
	Passed  bool    `json:"passed"`
	Correct int     `json:"correct"`
	Total   int     `json:"total"`
}

// Grade is the single-slot module outcome; re-submission overwrites it.
type Grade struct {
	StudentID string  `json:"student_id"`
	ModuleID  string  `json:"module_id"`
	Grade     float64 `json:"grade"`
	Passed    bool    `json:"passed"`
	GradedAt  int64   `json:"graded_at"`
}

// GradeRow is the staff-facing listing joined with names and titles.
type GradeRow struct {
	StudentName  string  `json:"student_name"`
	StudentEmail string  `json:"student_email"`
	ModuleTitle  string  `json:"module_title"`
	Grade        float64 `json:"grade"`
	Passed       bool    `json:"passed"`
	GradedAt     int64   `json:"graded_at"`
}
