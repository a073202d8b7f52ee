// Package rating scores chat posts with a handful of cheap text heuristics.
package rating

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"strings"
	"unicode"

	"github.com/f1monkey/spellchecker"
)

//go:embed words/*.txt
var wordFiles embed.FS

const (
	targetLength    = 20.0
	targetVocabAmt  = 10.0
	targetVocabPct  = 0.20
	spellingPenalty = 0.10
	topicalityTgt   = 0.50
)

// Scores is a weighted breakdown of a post's rating. Total is the sum of
// the other fields, each already multiplied by its weight.
type Scores struct {
	Total      float64
	Length     float64
	Grammar    float64
	Vocab      float64
	Sentiment  float64
	Topicality float64
}

// Rater holds the word lists. It is safe for concurrent use once built.
type Rater struct {
	spell     *spellchecker.Spellchecker
	satWords  map[string]struct{}
	stopWords map[string]struct{}
	positive  map[string]struct{}
	negative  map[string]struct{}
}

// New loads the embedded word lists.
func New() (*Rater, error) {
	sc, err := spellchecker.New("abcdefghijklmnopqrstuvwxyz'", spellchecker.WithMaxErrors(1))
	if err != nil {
		return nil, fmt.Errorf("spellchecker: %w", err)
	}

	r := &Rater{spell: sc}
	sets := []struct {
		file string
		dst  *map[string]struct{}
	}{
		{"words/sat.txt", &r.satWords},
		{"words/stopwords.txt", &r.stopWords},
		{"words/positive.txt", &r.positive},
		{"words/negative.txt", &r.negative},
		{"words/dictionary.txt", nil},
	}
	for _, s := range sets {
		words, err := readWords(s.file)
		if err != nil {
			return nil, err
		}
		// Every listed word is spelled correctly.
		sc.Add(words...)
		if s.dst != nil {
			*s.dst = toSet(words)
		}
	}
	return r, nil
}

func readWords(name string) ([]string, error) {
	data, err := wordFiles.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("word list %s: %w", name, err)
	}
	var words []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if w := strings.TrimSpace(sc.Text()); w != "" {
			words = append(words, strings.ToLower(w))
		}
	}
	return words, sc.Err()
}

func toSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// Score rates text against the recent chat history (newest first or
// oldest first; order does not matter).
func (r *Rater) Score(text string, history []string) Scores {
	s := Scores{
		Length:     .10 * r.lengthScore(text),
		Grammar:    .20 * r.grammarScore(text),
		Vocab:      .20 * r.vocabScore(text),
		Sentiment:  .20 * r.sentimentScore(text),
		Topicality: .30 * r.topicalScore(text, history),
	}
	s.Total = s.Length + s.Grammar + s.Vocab + s.Sentiment + s.Topicality
	return s
}

func (r *Rater) lengthScore(text string) float64 {
	return min(float64(len(strings.Split(text, " ")))/targetLength, 1)
}

func (r *Rater) grammarScore(text string) float64 {
	return max(0, 1-float64(len(r.Issues(text)))*spellingPenalty)
}

// Issues lists the misspelled words and doubled words in text.
func (r *Rater) Issues(text string) []string {
	var issues []string
	prev := ""
	for _, w := range strings.FieldsFunc(strings.ToLower(text), notWordRune) {
		w = strings.Trim(w, "'")
		if w == "" || isNumber(w) {
			continue
		}
		if !r.spell.IsCorrect(w) {
			issues = append(issues, w)
		} else if w == prev {
			issues = append(issues, w+" "+w)
		}
		prev = w
	}
	return issues
}

func notWordRune(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
}

func isNumber(w string) bool {
	return strings.IndexFunc(w, func(r rune) bool { return !unicode.IsDigit(r) }) < 0
}

func (r *Rater) vocabScore(text string) float64 {
	words := strings.Split(text, " ")
	var sat []string
	unique := map[string]struct{}{}
	for _, w := range words {
		w = stripPunctuation(w)
		if _, ok := r.satWords[w]; ok {
			sat = append(sat, w)
			unique[w] = struct{}{}
		}
	}
	pct := min(float64(len(sat))/float64(len(words))/targetVocabPct, 1)
	amt := min(float64(len(unique))/targetVocabAmt, 1)
	return (pct + amt) / 2
}

// sentimentScore is the positive share of the text's sentiment mass, where
// every word without a polarity counts as one neutral unit.
func (r *Rater) sentimentScore(text string) float64 {
	var pos, neg, neu float64
	for _, w := range strings.Fields(text) {
		w = stripPunctuation(w)
		if w == "" {
			continue
		}
		_, isPos := r.positive[w]
		_, isNeg := r.negative[w]
		switch {
		case isPos:
			pos++
		case isNeg:
			neg++
		default:
			neu++
		}
	}
	if bangs := strings.Count(text, "!"); bangs > 0 && pos > 0 {
		pos += 0.3 * float64(min(bangs, 4))
	}
	total := pos + neg + neu
	if total == 0 {
		return 0
	}
	return pos / total
}

func (r *Rater) topics(sentences ...string) map[string]int {
	counts := map[string]int{}
	for _, s := range sentences {
		for _, w := range strings.Split(s, " ") {
			w = stripPunctuation(w)
			if _, stop := r.stopWords[w]; stop || w == "" {
				continue
			}
			counts[w]++
		}
	}
	return counts
}

// topicalScore weighs how much of the chat's topic mass the post touches.
func (r *Rater) topicalScore(text string, history []string) float64 {
	chat := r.topics(history...)
	post := r.topics(text)

	total, shared := 0, 0
	for w, n := range chat {
		total += n
		if post[w] > 0 {
			shared += n
		}
	}
	if total == 0 {
		return 0
	}
	return min(float64(shared)/float64(total)/topicalityTgt, 1)
}

func stripPunctuation(w string) string {
	return strings.ToLower(strings.TrimFunc(w, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	}))
}

// Points converts a total score to a whole number of points.
func Points(total float64) int {
	return int(total * 10000)
}

// Report is the short rating message.
func Report(s Scores) string {
	points := Points(s.Total)
	return fmt.Sprintf("This post is worth %d points.%s", points, bonusText(points))
}

func bonusText(points int) string {
	switch {
	case points == 10000:
		return " A perfect score!!!!"
	case points >= 9000:
		return " THATS INCREDIBLE!"
	case points >= 7500:
		return " Amazing!"
	case points >= 5000:
		return " Not bad!"
	case points == 420:
		return " Dank."
	case points == 69:
		return " OwO"
	case points == 0:
		return " Lmao"
	case points < 1000:
		return " Please try a little harder next time"
	default:
		return ""
	}
}

// Breakdown is the detailed rating message.
func Breakdown(s Scores) string {
	return fmt.Sprintf("Length: %d\nGrammar: %d\nVocab: %d\nSentiment: %d\nTopicality: %d\n**Total: %d**",
		Points(s.Length), Points(s.Grammar), Points(s.Vocab), Points(s.Sentiment), Points(s.Topicality), Points(s.Total))
}
