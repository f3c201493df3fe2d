// Package utils holds the text helpers shared by the AI pipeline:
// sanitizing user content before it reaches a model, bounding its size,
// scrubbing model output and keying the generation cache.
package utils

import (
	"encoding/hex"
	"hash/fnv"
	"html"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/crypto/blake2b"
)

const (
	charsPerToken = 4
	maxChars      = 4000
	ellipsis      = "..."
	// a word-boundary cut is used only if it keeps at least this share of the budget
	wordCutRatio = 0.8
)

var (
	strictPolicy  = bluemonday.StrictPolicy()
	tagRe         = regexp.MustCompile(`<[^>]*>`)
	disallowedRe  = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:'"()\-]`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	failureWordRe = regexp.MustCompile(`(?i)error|fail|cannot process`)
)

// Sanitize strips markup and any character outside letters, digits,
// whitespace and basic punctuation, then collapses whitespace.
func Sanitize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	// bluemonday escapes what it keeps; undo that so quotes and apostrophes survive
	text = html.UnescapeString(strictPolicy.Sanitize(text))
	text = tagRe.ReplaceAllString(text, "")
	text = disallowedRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// CharBudget is the rune budget for a token budget.
func CharBudget(maxTokens int) int {
	budget := maxTokens * charsPerToken
	if budget > maxChars {
		budget = maxChars
	}
	if budget < 0 {
		budget = 0
	}
	return budget
}

// Truncate bounds text to the rune budget of maxTokens. Longer text is cut at
// the last whitespace when that keeps most of the budget, otherwise at the
// budget itself, and gets an ellipsis. The result always fits the budget, so
// truncating twice is the same as truncating once.
func Truncate(text string, maxTokens int) string {
	budget := CharBudget(maxTokens)
	runes := []rune(text)
	if len(runes) <= budget {
		return text
	}
	if budget <= len(ellipsis) {
		return string(runes[:budget])
	}

	limit := budget - len(ellipsis)
	cut := limit
	for i := limit; i > 0; i-- {
		if unicode.IsSpace(runes[i]) {
			if float64(i) >= float64(limit)*wordCutRatio {
				cut = i
			}
			break
		}
	}
	return strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace) + ellipsis
}

// FilterOutput trims model output and softens failure wording.
func FilterOutput(text string) string {
	return failureWordRe.ReplaceAllString(strings.TrimSpace(text), "unable to analyze")
}

// Digest returns a stable hex key for text.
func Digest(text string) string {
	h, err := blake2b.New256(nil)
	if err != nil {
		f := fnv.New64a()
		f.Write([]byte(text))
		return strconv.FormatUint(f.Sum64(), 16)
	}
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
