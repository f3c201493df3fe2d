package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/agora-dev/agora/shared/domain"
)

const (
	defaultMaxWords = 150
	minMaxWords     = 10
	maxMaxWords     = 1000
	maxKeyTopics    = 5
)

var (
	bulletLineRe     = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+(.+)$`)
	topicsLineRe     = regexp.MustCompile(`(?i)^\s*(?:key\s+)?topics?\s*:\s*(.+)$`)
	capitalPhraseRe  = regexp.MustCompile(`\b\p{Lu}\p{Ll}+(?:\s+\p{Lu}\p{Ll}+)+`)
	markdownEmphasis = strings.NewReplacer("**", "", "__", "", "`", "")
)

func summaryPrompt(content domain.AggregatedContent, summaryType domain.SummaryType, maxWords int) string {
	var style string
	switch summaryType {
	case domain.SummaryDetailed:
		style = "Write a detailed summary covering the main themes, opinions and open questions."
	case domain.SummaryBulletPoints:
		style = "Summarize as a markdown bullet list, one key point per line."
	default:
		style = "Write a brief summary of the discussion."
	}
	return fmt.Sprintf(
		"You summarize community discussions about books, films and games.\n"+
			"%s Use at most %d words. End with a line \"Key topics: \" followed by up to %d comma-separated topics.\n\n"+
			"Source (%s): %s\n\n%s",
		style, maxWords, maxKeyTopics, strings.ToLower(string(content.SourceType)), content.SourceTitle, content.Text)
}

// summaryWordCount counts words of the summary body, excluding the topics line.
func summaryWordCount(text string) int {
	return len(strings.Fields(stripTopicsLine(text)))
}

func stripTopicsLine(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if topicsLineRe.MatchString(l) {
			continue
		}
		kept = append(kept, l)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// extractKeyTopics prefers an explicit "Key topics:" line, then bullet lines,
// then multi-word capitalised phrases.
func extractKeyTopics(text string) []string {
	var topics []string
	seen := make(map[string]struct{})
	add := func(topic string) bool {
		topic = strings.Trim(markdownEmphasis.Replace(strings.TrimSpace(topic)), " .,:;")
		if topic == "" {
			return len(topics) < maxKeyTopics
		}
		key := strings.ToLower(topic)
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			topics = append(topics, topic)
		}
		return len(topics) < maxKeyTopics
	}

	lines := strings.Split(text, "\n")
	for _, l := range lines {
		if m := topicsLineRe.FindStringSubmatch(l); m != nil {
			for _, t := range strings.Split(m[1], ",") {
				if !add(t) {
					return topics
				}
			}
			return topics
		}
	}

	for _, l := range lines {
		if m := bulletLineRe.FindStringSubmatch(l); m != nil {
			point := m[1]
			// "Pacing: slow in the middle" -> "Pacing"
			if head, _, ok := strings.Cut(point, ":"); ok && len(strings.Fields(head)) <= 4 {
				point = head
			}
			if !add(point) {
				return topics
			}
		}
	}
	if len(topics) > 0 {
		return topics
	}

	for _, phrase := range capitalPhraseRe.FindAllString(text, -1) {
		if !add(phrase) {
			break
		}
	}
	return topics
}
