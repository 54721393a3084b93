package quiz

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrNotFound = errors.New("quiz not found")

// ErrInUse is returned when deleting a quiz that attempts still reference.
var ErrInUse = errors.New("quiz has attempts")

// ValidationError carries every violation found on a quiz before it is saved.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return "quiz validation failed"
	}
	return "quiz validation failed: " + strings.Join(e.Problems, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateQuestions checks the answer key of every question and returns one
// message per violation. An empty slice means the questions are valid.
// Caller-supplied question ids must be unique within the quiz; empty ids are
// assigned on save.
func ValidateQuestions(questions []Question) []string {
	var problems []string
	seen := make(map[string]int, len(questions))
	for i, q := range questions {
		n := i + 1
		if q.ID != "" {
			if first, dup := seen[q.ID]; dup {
				problems = append(problems, fmt.Sprintf("question %d reuses id %q of question %d", n, q.ID, first))
			} else {
				seen[q.ID] = n
			}
		}
		if len(q.Options) < 2 {
			problems = append(problems, fmt.Sprintf("question %d must have at least 2 options", n))
		}
		correct := len(q.CorrectIndices())
		if correct < 1 {
			problems = append(problems, fmt.Sprintf("question %d must have at least 1 correct option", n))
		}
		if q.Type == TypeSingle && correct > 1 {
			problems = append(problems, fmt.Sprintf("question %d is single choice and must have exactly 1 correct option", n))
		}
	}
	return problems
}

// Validate runs field validation followed by the answer-key checks.
func Validate(q Quiz) error {
	var problems []string
	if err := validate.Struct(q); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return err
		}
		for _, fe := range ve {
			problems = append(problems, fieldMessage(fe))
		}
	}
	problems = append(problems, ValidateQuestions(q.Questions)...)
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
