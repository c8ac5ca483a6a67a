package platform

// ProgressStatus is the learning state of a material for one user.
type ProgressStatus string

const (
	StatusToLearn    ProgressStatus = "To Learn"
	StatusInProgress ProgressStatus = "In Progress"
	StatusCompleted  ProgressStatus = "Completed"
)

// Valid reports whether the status is one the backend accepts.
func (s ProgressStatus) Valid() bool {
	switch s {
	case StatusToLearn, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Material is a study material entry.
type Material struct {
	ID         string `json:"id"`
	Title      string `json:"title" validate:"required"`
	Topic      string `json:"topic"`
	URL        string `json:"url"`
	UploadedBy string `json:"uploaded_by,omitempty"`
}

// ProgressEntry is one material's progress for a user.
type ProgressEntry struct {
	MaterialID   string         `json:"material_id"`
	MaterialName string         `json:"material_name"`
	SubjectID    string         `json:"subject_id,omitempty"`
	SubjectName  string         `json:"subject_name,omitempty"`
	Status       ProgressStatus `json:"status"`
	LastUpdated  string         `json:"last_updated,omitempty"`
}

// SubjectSummary is per-subject completion totals.
type SubjectSummary struct {
	SubjectID            string `json:"subject_id"`
	SubjectName          string `json:"subject_name"`
	TotalMaterials       int    `json:"total_materials"`
	CompletedMaterials   int    `json:"completed_materials"`
	CompletionPercentage int    `json:"completion_percentage"`
}

// QuizQuestion is a single quiz question for a topic.
type QuizQuestion struct {
	ID       string   `json:"id"`
	Topic    string   `json:"topic"`
	Question string   `json:"question" validate:"required"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer,omitempty"`
}

// QuizSubmission records a completed quiz attempt.
type QuizSubmission struct {
	UserEmail string `json:"user_email" validate:"required,email"`
	Topic     string `json:"topic" validate:"required"`
	Score     int    `json:"score" validate:"min=0"`
	Total     int    `json:"total" validate:"min=1"`
}

// Streak is a user's study-session streak.
type Streak struct {
	CurrentStreak int     `json:"current_streak"`
	LongestStreak int     `json:"longest_streak"`
	LastActive    *string `json:"last_active"`
}
