package services

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxKeywords = 20

// minKeywordLength excludes short tokens; tokens must be strictly longer
const minKeywordLength = 3

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)

	// Characters kept by cleaning: letters including accented Spanish
	// vowels and ñ/ü, digits, whitespace, and basic clinical punctuation.
	disallowedChars = regexp.MustCompile(`[^a-zA-ZáéíóúÁÉÍÓÚñÑüÜ0-9\s.,;:()\-]`)

	wordTokens = regexp.MustCompile(`[a-z0-9_áéíóúñü]+`)
)

// spanishStopwords is the fixed stopword set for keyword extraction,
// read-only after init.
var spanishStopwords = buildStopwordSet([]string{
	"de", "la", "que", "el", "en", "y", "a", "los", "del", "se",
	"las", "por", "un", "para", "con", "no", "una", "su", "al", "lo",
	"como", "más", "pero", "sus", "le", "ya", "o", "este", "sí", "porque",
	"esta", "entre", "cuando", "muy", "sin", "sobre", "también", "me", "hasta", "hay",
	"donde", "quien", "desde", "todo", "nos", "durante", "todos", "uno", "les", "ni",
	"contra", "otros", "ese", "eso", "ante", "ellos", "esto", "antes", "algunos", "qué",
	"unos", "yo", "otro", "otras", "otra", "él", "tanto", "esa", "estos", "mucho",
})

func buildStopwordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// TextNormalizer cleans free-text note content and extracts keywords
type TextNormalizer struct{}

// NewTextNormalizer creates a new text normalizer
func NewTextNormalizer() *TextNormalizer {
	return &TextNormalizer{}
}

// Clean collapses whitespace runs to single spaces, strips every character
// outside the allowed set, and trims the result.
func (n *TextNormalizer) Clean(content string) string {
	cleaned := whitespaceRuns.ReplaceAllString(content, " ")
	cleaned = disallowedChars.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// Keywords lowercases cleaned text, splits it on runs of non-word
// characters, drops tokens of length <= 3 and Spanish stopwords,
// deduplicates preserving first occurrence, and caps the result at 20.
func (n *TextNormalizer) Keywords(cleaned string) []string {
	tokens := wordTokens.FindAllString(strings.ToLower(cleaned), -1)

	seen := make(map[string]struct{}, len(tokens))
	keywords := make([]string, 0, maxKeywords)

	for _, token := range tokens {
		if utf8.RuneCountInString(token) <= minKeywordLength {
			continue
		}
		if _, stop := spanishStopwords[token]; stop {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
		if len(keywords) == maxKeywords {
			break
		}
	}

	return keywords
}
