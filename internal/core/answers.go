package core

import (
	"strings"

	"radruga/pkg/models"
)

// Separators of the CorrectAnswers pattern: "paris;rome|roma;big&ben" holds
// three right answers. The second accepts either spelling, the third needs
// both words.
const (
	answerSeparator      = ";"
	alternativeSeparator = "|"
	wordSeparator        = "&"
)

type answerKind int

const (
	singleAnswer answerKind = iota
	allWordsInside
	alternatives
)

// AnswerModel is one compiled right answer
type AnswerModel struct {
	kind         answerKind
	words        []string
	alternatives []AnswerModel
}

func compileOne(pattern string) (AnswerModel, bool) {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if pattern == "" {
		return AnswerModel{}, false
	}
	if strings.Contains(pattern, wordSeparator) {
		var words []string
		for _, w := range strings.Split(pattern, wordSeparator) {
			if w = strings.TrimSpace(w); w != "" {
				words = append(words, w)
			}
		}
		if len(words) == 0 {
			return AnswerModel{}, false
		}
		return AnswerModel{kind: allWordsInside, words: words}, true
	}
	return AnswerModel{kind: singleAnswer, words: []string{pattern}}, true
}

// CompileAnswers parses a CorrectAnswers pattern. Empty parts are skipped.
func CompileAnswers(pattern string) []AnswerModel {
	var out []AnswerModel
	for _, part := range strings.Split(pattern, answerSeparator) {
		if !strings.Contains(part, alternativeSeparator) {
			if m, ok := compileOne(part); ok {
				out = append(out, m)
			}
			continue
		}
		var alts []AnswerModel
		for _, alt := range strings.Split(part, alternativeSeparator) {
			if m, ok := compileOne(alt); ok {
				alts = append(alts, m)
			}
		}
		if len(alts) > 0 {
			out = append(out, AnswerModel{kind: alternatives, alternatives: alts})
		}
	}
	return out
}

func matchWord(candidate, word string, exact bool) bool {
	if exact {
		return candidate == word
	}
	return strings.Contains(candidate, word)
}

// matches reports whether the lower-cased answer satisfies the model
func (m AnswerModel) matches(answer string, exact bool) bool {
	switch m.kind {
	case singleAnswer:
		return matchWord(answer, m.words[0], exact)
	case allWordsInside:
		tokens := strings.Fields(answer)
		used := make([]bool, len(tokens))
		for _, word := range m.words {
			found := false
			for i, tok := range tokens {
				if !used[i] && matchWord(tok, word, exact) {
					used[i] = true
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	case alternatives:
		for _, alt := range m.alternatives {
			if alt.matches(answer, exact) {
				return true
			}
		}
	}
	return false
}

// AnswerMatch is the verdict over all submitted answers
type AnswerMatch struct {
	Statuses []models.AnswerStatus
	Correct  int
	Required int
}

// Passed reports whether enough right answers were given
func (m AnswerMatch) Passed() bool {
	return m.Required > 0 && m.Correct >= m.Required
}

// MatchAnswers checks the submitted answers against the mission's right
// answers. Each right answer can be credited once; empty, repeated or
// unmatched submissions are invalid. Matching ignores case.
func MatchAnswers(mission *models.Mission, answers []string) AnswerMatch {
	rightAnswers := CompileAnswers(mission.CorrectAnswers)
	result := AnswerMatch{
		Statuses: make([]models.AnswerStatus, len(answers)),
		Required: mission.AnswersCount,
	}
	if result.Required <= 0 {
		result.Required = len(rightAnswers)
	}

	consumed := make([]bool, len(rightAnswers))
	seen := make(map[string]bool, len(answers))
	for i, raw := range answers {
		result.Statuses[i] = models.AnswerInvalid
		answer := strings.ToLower(strings.TrimSpace(raw))
		if answer == "" || seen[answer] {
			continue
		}
		seen[answer] = true
		for j, model := range rightAnswers {
			if !consumed[j] && model.matches(answer, mission.ExactAnswer) {
				consumed[j] = true
				result.Statuses[i] = models.AnswerValid
				result.Correct++
				break
			}
		}
	}
	return result
}

// SubmittedAnswers reads the answers of a proof, falling back to the created
// text split on the answer separator.
func SubmittedAnswers(proof models.Proof) []string {
	if len(proof.Answers) > 0 {
		return proof.Answers
	}
	if strings.TrimSpace(proof.CreatedText) == "" {
		return nil
	}
	return strings.Split(proof.CreatedText, answerSeparator)
}
