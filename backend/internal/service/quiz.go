package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-json"

	"github.com/agora-dev/agora/shared/domain"
)

const (
	defaultQuestionCount = 5
	minQuestionCount     = 1
	maxQuestionCount     = 50
)

var (
	fencedBlockRe  = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")
	questionLineRe = regexp.MustCompile(`(?i)^(?:q(?:uestion)?\s*\d*\s*[:.)]|\d+\s*[.)])\s*(.+)$`)
	optionLineRe   = regexp.MustCompile(`^\(?([A-Da-d])[).:]\s*(.+)$`)
	answerLineRe   = regexp.MustCompile(`(?i)^(?:correct\s+)?answer\s*[:\-]\s*(.+)$`)
	explainLineRe  = regexp.MustCompile(`(?i)^explanation\s*[:\-]\s*(.+)$`)
	answerLetterRe = regexp.MustCompile(`^\(?([A-Da-d])\b`)
)

func quizPrompt(content domain.AggregatedContent, difficulty domain.Difficulty, count int) string {
	return fmt.Sprintf(
		"You write multiple-choice quizzes about community discussions of books, films and games.\n"+
			"Write %d %s questions with four options each based only on the source below.\n"+
			"Reply with JSON only: {\"questions\": [{\"question\": \"...\", \"options\": [\"A) ...\", \"B) ...\", \"C) ...\", \"D) ...\"], "+
			"\"correct_answer\": \"A\", \"explanation\": \"...\"}]}\n\n"+
			"Source (%s): %s\n\n%s",
		count, strings.ToLower(string(difficulty)), strings.ToLower(string(content.SourceType)), content.SourceTitle, content.Text)
}

type rawQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	CamelAnswer   string   `json:"correctAnswer"`
	Answer        string   `json:"answer"`
	Explanation   string   `json:"explanation"`
}

func (r rawQuestion) toDomain() domain.QuizQuestion {
	answer := r.CorrectAnswer
	if answer == "" {
		answer = r.CamelAnswer
	}
	if answer == "" {
		answer = r.Answer
	}
	return domain.QuizQuestion{
		Question:      strings.TrimSpace(r.Question),
		Options:       r.Options,
		CorrectAnswer: normalizeAnswer(answer),
		Explanation:   strings.TrimSpace(r.Explanation),
	}
}

func normalizeAnswer(answer string) string {
	answer = strings.TrimSpace(answer)
	if m := answerLetterRe.FindStringSubmatch(answer); m != nil {
		return strings.ToUpper(m[1])
	}
	return answer
}

// parseQuiz reads model output as JSON when it can and falls back to a
// line-oriented parse otherwise. It keeps partial questions and never fails.
func parseQuiz(text string, limit int) []domain.QuizQuestion {
	questions := parseQuizJSON(text)
	if len(questions) == 0 {
		questions = parseQuizLines(text)
	}
	if limit > 0 && len(questions) > limit {
		questions = questions[:limit]
	}
	if questions == nil {
		questions = []domain.QuizQuestion{}
	}
	return questions
}

func parseQuizJSON(text string) []domain.QuizQuestion {
	candidates := []string{strings.TrimSpace(text)}
	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		candidates = append([]string{strings.TrimSpace(m[1])}, candidates...)
	}
	// chatter around the payload: try the outermost object and array
	if i, j := strings.Index(text, "{"), strings.LastIndex(text, "}"); i >= 0 && j > i {
		candidates = append(candidates, text[i:j+1])
	}
	if i, j := strings.Index(text, "["), strings.LastIndex(text, "]"); i >= 0 && j > i {
		candidates = append(candidates, text[i:j+1])
	}

	for _, c := range candidates {
		var raw []rawQuestion
		var wrapped struct {
			Questions []rawQuestion `json:"questions"`
		}
		if err := json.Unmarshal([]byte(c), &wrapped); err == nil && len(wrapped.Questions) > 0 {
			raw = wrapped.Questions
		} else if err := json.Unmarshal([]byte(c), &raw); err != nil {
			raw = nil
		}

		var out []domain.QuizQuestion
		for _, r := range raw {
			if q := r.toDomain(); q.Question != "" {
				out = append(out, q)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func parseQuizLines(text string) []domain.QuizQuestion {
	var (
		out     []domain.QuizQuestion
		current *domain.QuizQuestion
	)
	flush := func() {
		if current != nil && current.Question != "" {
			out = append(out, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(markdownEmphasis.Replace(line))
		if line == "" {
			continue
		}
		switch {
		case answerLineRe.MatchString(line):
			if current != nil {
				current.CorrectAnswer = normalizeAnswer(answerLineRe.FindStringSubmatch(line)[1])
			}
		case explainLineRe.MatchString(line):
			if current != nil {
				current.Explanation = explainLineRe.FindStringSubmatch(line)[1]
			}
		case optionLineRe.MatchString(line) && current != nil:
			m := optionLineRe.FindStringSubmatch(line)
			current.Options = append(current.Options, strings.ToUpper(m[1])+") "+strings.TrimSpace(m[2]))
		case questionLineRe.MatchString(line):
			flush()
			current = &domain.QuizQuestion{Question: strings.TrimSpace(questionLineRe.FindStringSubmatch(line)[1])}
		case current != nil && len(current.Options) == 0 && strings.HasSuffix(line, "?"):
			// question text wrapped onto a second line
			current.Question += " " + line
		}
	}
	flush()
	return out
}
