package grading

import (
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

// Result is the outcome of grading a single question response.
type Result struct {
	IsCorrect    bool
	PointsEarned float64
	MaxPoints    float64
}

// Strategy grades one question type. Implementations must be pure.
type Strategy interface {
	Grade(q quiz.Question, selected []int) Result
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(q quiz.Question, selected []int) Result
}

type defaultGrader struct {
	strategies map[string]Strategy
}

func (g *defaultGrader) Grade(q quiz.Question, selected []int) Result {
	s, ok := g.strategies[q.Type]
	if !ok {
		return Result{MaxPoints: q.Points}
	}
	return s.Grade(q, selected)
}

// NewDefaultGrader installs the built-in strategies.
func NewDefaultGrader() Grader {
	return &defaultGrader{
		strategies: map[string]Strategy{
			quiz.TypeSingle:   singleStrategy{},
			quiz.TypeMultiple: multipleStrategy{},
		},
	}
}

var std = NewDefaultGrader()

// Grade scores selected option indices against q's answer key using the
// built-in strategies. Indices are not range-checked; an index outside the
// option list simply never matches a correct option.
func Grade(q quiz.Question, selected []int) Result {
	return std.Grade(q, selected)
}

// --- Strategies ---

type singleStrategy struct{}

func (singleStrategy) Grade(q quiz.Question, selected []int) Result {
	res := Result{MaxPoints: q.Points}
	sel := toSet(selected)
	if len(sel) != 1 {
		return res
	}
	correct := toSet(q.CorrectIndices())
	for i := range sel {
		if _, ok := correct[i]; ok {
			res.IsCorrect = true
			res.PointsEarned = q.Points
		}
	}
	return res
}

type multipleStrategy struct{}

func (multipleStrategy) Grade(q quiz.Question, selected []int) Result {
	res := Result{MaxPoints: q.Points}
	if setEqual(toSet(q.CorrectIndices()), toSet(selected)) {
		res.IsCorrect = true
		res.PointsEarned = q.Points
	}
	return res
}

// helpers

func toSet(arr []int) map[int]struct{} {
	m := make(map[int]struct{}, len(arr))
	for _, v := range arr {
		m[v] = struct{}{}
	}
	return m
}

func setEqual(a, b map[int]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
