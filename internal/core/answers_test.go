package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"radruga/pkg/models"
)

const (
	valid   = models.AnswerValid
	invalid = models.AnswerInvalid
)

func TestMatchAnswers(t *testing.T) {
	tests := []struct {
		name     string
		mission  models.Mission
		answers  []string
		statuses []models.AnswerStatus
		passed   bool
	}{
		{
			name:     "exact single answer ignores case",
			mission:  models.Mission{CorrectAnswers: "Paris", ExactAnswer: true},
			answers:  []string{"  pARIS "},
			statuses: []models.AnswerStatus{valid},
			passed:   true,
		},
		{
			name:     "exact rejects containment",
			mission:  models.Mission{CorrectAnswers: "paris", ExactAnswer: true},
			answers:  []string{"paris france"},
			statuses: []models.AnswerStatus{invalid},
		},
		{
			name:     "inexact accepts containment",
			mission:  models.Mission{CorrectAnswers: "paris"},
			answers:  []string{"it is Paris for sure"},
			statuses: []models.AnswerStatus{valid},
			passed:   true,
		},
		{
			name:     "all words inside any order",
			mission:  models.Mission{CorrectAnswers: "big&ben", ExactAnswer: true},
			answers:  []string{"ben is big"},
			statuses: []models.AnswerStatus{valid},
			passed:   true,
		},
		{
			name:     "all words need distinct tokens",
			mission:  models.Mission{CorrectAnswers: "big&big", ExactAnswer: true},
			answers:  []string{"big ben"},
			statuses: []models.AnswerStatus{invalid},
		},
		{
			name:     "alternatives",
			mission:  models.Mission{CorrectAnswers: "rome|roma", ExactAnswer: true},
			answers:  []string{"Roma"},
			statuses: []models.AnswerStatus{valid},
			passed:   true,
		},
		{
			name:     "alternative with all words",
			mission:  models.Mission{CorrectAnswers: "eiffel&tower|tour eiffel", ExactAnswer: true},
			answers:  []string{"tower eiffel"},
			statuses: []models.AnswerStatus{valid},
			passed:   true,
		},
		{
			name:     "each right answer credited once",
			mission:  models.Mission{CorrectAnswers: "red;blue", AnswersCount: 2},
			answers:  []string{"dark red", "light red"},
			statuses: []models.AnswerStatus{valid, invalid},
		},
		{
			name:     "duplicates invalid",
			mission:  models.Mission{CorrectAnswers: "red;blue", ExactAnswer: true},
			answers:  []string{"red", "RED", "blue"},
			statuses: []models.AnswerStatus{valid, invalid, valid},
			passed:   true,
		},
		{
			name:     "answers count below total",
			mission:  models.Mission{CorrectAnswers: "a;b;c", ExactAnswer: true, AnswersCount: 2},
			answers:  []string{"c", "x", "a"},
			statuses: []models.AnswerStatus{valid, invalid, valid},
			passed:   true,
		},
		{
			name:     "empty answer invalid",
			mission:  models.Mission{CorrectAnswers: "a"},
			answers:  []string{""},
			statuses: []models.AnswerStatus{invalid},
		},
		{
			name:     "no right answers never pass",
			mission:  models.Mission{CorrectAnswers: " ; "},
			answers:  []string{"anything"},
			statuses: []models.AnswerStatus{invalid},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchAnswers(&tt.mission, tt.answers)
			assert.Equal(t, tt.statuses, got.Statuses)
			assert.Equal(t, tt.passed, got.Passed())
		})
	}
}

func TestMatchAnswers_Idempotent(t *testing.T) {
	mission := &models.Mission{CorrectAnswers: "red;blue|navy;green&tea", AnswersCount: 2}
	answers := []string{"green tea", "navy", "navy", "purple"}

	first := MatchAnswers(mission, answers)
	second := MatchAnswers(mission, answers)
	assert.Equal(t, first, second)
	assert.Equal(t, []models.AnswerStatus{valid, valid, invalid, invalid}, first.Statuses)
}

func TestSubmittedAnswers(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SubmittedAnswers(models.Proof{Answers: []string{"a", "b"}}))
	assert.Equal(t, []string{"a", " b"}, SubmittedAnswers(models.Proof{CreatedText: "a; b"}))
	assert.Nil(t, SubmittedAnswers(models.Proof{CreatedText: "  "}))
}
