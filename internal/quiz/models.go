package quiz

import "time"

const (
	TypeSingle   = "single"
	TypeMultiple = "multiple"
)

type Option struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question identity is its ID; position in Quiz.Questions is the display order.
type Question struct {
	ID          string   `json:"id"`
	Text        string   `json:"text" validate:"required"`
	Type        string   `json:"type" validate:"required,oneof=single multiple"`
	Options     []Option `json:"options" validate:"dive"`
	Points      float64  `json:"points" validate:"gte=0"`
	Explanation string   `json:"explanation,omitempty"`
}

// CorrectIndices returns the positions of options flagged correct, in order.
func (q Question) CorrectIndices() []int {
	out := make([]int, 0, 1)
	for i, o := range q.Options {
		if o.IsCorrect {
			out = append(out, i)
		}
	}
	return out
}

type Quiz struct {
	ID          string `json:"id"`
	CourseID    string `json:"courseId" validate:"required"`
	ModuleID    string `json:"moduleId,omitempty"`
	SessionID   string `json:"sessionId,omitempty"`
	GroupID     string `json:"groupId,omitempty"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`

	PassingScore int `json:"passingScore" validate:"gte=0,lte=100"`
	TimeLimit    int `json:"timeLimit,omitempty" validate:"gte=0"` // minutes, advisory
	MaxAttempts  int `json:"maxAttempts" validate:"gte=1"`

	ShuffleQuestions bool `json:"shuffleQuestions"`
	ShuffleOptions   bool `json:"shuffleOptions"`
	ShowFeedback     bool `json:"showFeedback"`

	Questions []Question `json:"questions" validate:"dive"`

	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Question looks a question up by ID.
func (q Quiz) Question(id string) (Question, bool) {
	for _, qq := range q.Questions {
		if qq.ID == id {
			return qq, true
		}
	}
	return Question{}, false
}

// TotalPoints is the sum of all question points.
func (q Quiz) TotalPoints() float64 {
	total := 0.0
	for _, qq := range q.Questions {
		total += qq.Points
	}
	return total
}

type Summary struct {
	ID            string    `json:"id"`
	CourseID      string    `json:"courseId"`
	Title         string    `json:"title"`
	QuestionCount int       `json:"questionCount"`
	MaxAttempts   int       `json:"maxAttempts"`
	PassingScore  int       `json:"passingScore"`
	TimeLimit     int       `json:"timeLimit,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (q Quiz) Summary() Summary {
	return Summary{
		ID:            q.ID,
		CourseID:      q.CourseID,
		Title:         q.Title,
		QuestionCount: len(q.Questions),
		MaxAttempts:   q.MaxAttempts,
		PassingScore:  q.PassingScore,
		TimeLimit:     q.TimeLimit,
		CreatedAt:     q.CreatedAt,
	}
}
