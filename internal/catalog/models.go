package catalog

type Module struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	IsFree          bool     `json:"is_free"`
	Price           float64  `json:"price"` // ignored when IsFree
	DisplayOrder    int      `json:"display_order"`
	QuizQuestionCap int      `json:"quiz_question_cap"`
	Lessons         []Lesson `json:"lessons"`
}

type Lesson struct {
	ID                  string `json:"id"`
	ModuleID            string `json:"module_id"`
	Title               string `json:"title"`
	Description         string `json:"description,omitempty"`
	VideoHLSPath        string `json:"video_hls_path,omitempty"`        // opaque playable reference
	SupportMaterialPath string `json:"support_material_path,omitempty"` // blob key
	DisplayOrder        int    `json:"display_order"`
	MinPassScore        int    `json:"min_pass_score"`

	// Set only when the listing viewer is a student.
	IsCompleted *bool `json:"is_completed,omitempty"`
}

// Viewer scopes a catalog read to the caller.
type Viewer struct {
	ID   string
	Role string
}
