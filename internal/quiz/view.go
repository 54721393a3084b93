package quiz

import "math/rand/v2"

// ViewOption is an option as shown to a learner. Index is the position in the
// stored answer key; submitted selections always refer to it.
type ViewOption struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type ViewQuestion struct {
	ID      string       `json:"id"`
	Text    string       `json:"text"`
	Type    string       `json:"type"`
	Points  float64      `json:"points"`
	Options []ViewOption `json:"options"`
}

// View is a quiz with correctness flags and explanations removed.
type View struct {
	ID           string         `json:"id"`
	CourseID     string         `json:"courseId"`
	ModuleID     string         `json:"moduleId,omitempty"`
	SessionID    string         `json:"sessionId,omitempty"`
	GroupID      string         `json:"groupId,omitempty"`
	Title        string         `json:"title"`
	Description  string         `json:"description,omitempty"`
	PassingScore int            `json:"passingScore"`
	TimeLimit    int            `json:"timeLimit,omitempty"`
	MaxAttempts  int            `json:"maxAttempts"`
	TotalPoints  float64        `json:"totalPoints"`
	Questions    []ViewQuestion `json:"questions"`
}

// StudentView renders q without its answer key, shuffling questions and
// options when the quiz asks for it. rng may be nil when no shuffling is wanted.
func StudentView(q Quiz, rng *rand.Rand) View {
	v := View{
		ID:           q.ID,
		CourseID:     q.CourseID,
		ModuleID:     q.ModuleID,
		SessionID:    q.SessionID,
		GroupID:      q.GroupID,
		Title:        q.Title,
		Description:  q.Description,
		PassingScore: q.PassingScore,
		TimeLimit:    q.TimeLimit,
		MaxAttempts:  q.MaxAttempts,
		TotalPoints:  q.TotalPoints(),
		Questions:    make([]ViewQuestion, 0, len(q.Questions)),
	}
	for _, qq := range q.Questions {
		vq := ViewQuestion{
			ID:      qq.ID,
			Text:    qq.Text,
			Type:    qq.Type,
			Points:  qq.Points,
			Options: make([]ViewOption, len(qq.Options)),
		}
		for i, o := range qq.Options {
			vq.Options[i] = ViewOption{Index: i, Text: o.Text}
		}
		if q.ShuffleOptions && rng != nil {
			rng.Shuffle(len(vq.Options), func(i, j int) {
				vq.Options[i], vq.Options[j] = vq.Options[j], vq.Options[i]
			})
		}
		v.Questions = append(v.Questions, vq)
	}
	if q.ShuffleQuestions && rng != nil {
		rng.Shuffle(len(v.Questions), func(i, j int) {
			v.Questions[i], v.Questions[j] = v.Questions[j], v.Questions[i]
		})
	}
	return v
}
