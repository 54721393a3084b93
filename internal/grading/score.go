package grading

import (
	"math"

	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

// Response is what a learner submitted for one question.
type Response struct {
	QuestionID      string `json:"questionId"`
	SelectedOptions []int  `json:"selectedOptions"`
}

// Scored is one graded response together with the answer-key data needed to
// explain it afterwards.
type Scored struct {
	QuestionID      string
	QuestionText    string
	SelectedOptions []int
	CorrectOptions  []int
	IsCorrect       bool
	PointsEarned    float64
	Points          float64
	Explanation     string
}

type Outcome struct {
	Items        []Scored
	EarnedPoints float64
	TotalPoints  float64
	Score        int
}

// ScoreResponses grades every response against the quiz. Responses naming a
// question the quiz does not have are dropped without error and count toward
// neither earned nor total points. A question answered more than once is
// graded on its first response only.
func ScoreResponses(g Grader, q quiz.Quiz, responses []Response) Outcome {
	if g == nil {
		g = std
	}
	out := Outcome{Items: make([]Scored, 0, len(responses))}
	seen := make(map[string]struct{}, len(responses))
	for _, r := range responses {
		qq, ok := q.Question(r.QuestionID)
		if !ok {
			continue
		}
		if _, dup := seen[qq.ID]; dup {
			continue
		}
		seen[qq.ID] = struct{}{}

		res := g.Grade(qq, r.SelectedOptions)
		out.TotalPoints += res.MaxPoints
		out.EarnedPoints += res.PointsEarned
		out.Items = append(out.Items, Scored{
			QuestionID:      qq.ID,
			QuestionText:    qq.Text,
			SelectedOptions: append([]int{}, r.SelectedOptions...),
			CorrectOptions:  qq.CorrectIndices(),
			IsCorrect:       res.IsCorrect,
			PointsEarned:    res.PointsEarned,
			Points:          qq.Points,
			Explanation:     qq.Explanation,
		})
	}
	out.Score = Percent(out.EarnedPoints, out.TotalPoints)
	return out
}

// Percent returns round(100*earned/total), or 0 when total is 0.
func Percent(earned, total float64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * earned / total))
}
