package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mathquest/practice/internal/question"
)

func mcq() question.Question {
	return question.Question{
		ID: "q1",
		Options: []question.Option{
			{OptionLetter: "A", OptionText: "42", IsCorrect: true},
			{OptionLetter: "B", OptionText: "41"},
		},
	}
}

func TestCheckByLetter(t *testing.T) {
	correct, graded := Check(mcq(), "a")
	assert.True(t, graded)
	assert.True(t, correct)

	correct, graded = Check(mcq(), "B")
	assert.True(t, graded)
	assert.False(t, correct)
}

func TestCheckByText(t *testing.T) {
	correct, graded := Check(mcq(), " 42 ")
	assert.True(t, graded)
	assert.True(t, correct)
}

func TestCheckNumericEquivalence(t *testing.T) {
	correct, graded := Check(mcq(), "42.0")
	assert.True(t, graded)
	assert.True(t, correct)
}

func TestCheckUnmatchedAnswerIsWrong(t *testing.T) {
	correct, graded := Check(mcq(), "39")
	assert.True(t, graded)
	assert.False(t, correct)
}

func TestCheckEmptyAnswer(t *testing.T) {
	correct, graded := Check(mcq(), "   ")
	assert.True(t, graded)
	assert.False(t, correct)
}

func TestOpenEndedNotGradable(t *testing.T) {
	_, graded := Check(question.Question{ID: "q2"}, "17")
	assert.False(t, graded)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "hello world", normalize("  Hello,   World! "))
	assert.Equal(t, "12", normalize("1/2"))
}
