// Package textfx holds the playful text transforms applied to responses.
package textfx

import (
	"math/rand"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Rand is the randomness the transforms draw on.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// DefaultRand draws from the global math/rand source.
var DefaultRand Rand = globalRand{}

type globalRand struct{}

func (globalRand) IntN(n int) int    { return rand.Intn(n) }
func (globalRand) Float64() float64 { return rand.Float64() }

var upper = cases.Upper(language.English)

// Yell upper-cases the text.
func Yell(s string) string {
	return upper.String(s)
}

// Sparkle decorates text as a rare shiny response.
func Sparkle(s string) string {
	return ":sparkles:" + s + ":sparkles:"
}

// Shiny reports whether a 1-in-odds roll came up.
func Shiny(r Rand, odds int) bool {
	return odds > 0 && r.IntN(odds) == 1
}

// Spongecase flips letters between cases at random, never leaving more than
// two letters in a row with the same case.
func Spongecase(r Rand, s string) string {
	var b strings.Builder
	run, wasUpper := 0, false
	for _, c := range s {
		if !unicode.IsLetter(c) {
			b.WriteRune(c)
			continue
		}
		up := r.IntN(2) == 1
		if run >= 2 && up == wasUpper {
			up = !up
		}
		if up == wasUpper {
			run++
		} else {
			run = 1
		}
		wasUpper = up
		if up {
			b.WriteRune(unicode.ToUpper(c))
		} else {
			b.WriteRune(unicode.ToLower(c))
		}
	}
	return b.String()
}

var (
	uwuLR      = strings.NewReplacer("r", "w", "l", "w", "R", "W", "L", "W")
	uwuNya     = regexp.MustCompile(`([nN])([aeiouAEIOU])`)
	uwuYou     = regexp.MustCompile(`\b([yY])ou\b`)
	uwuWord    = regexp.MustCompile(`\b([a-zA-Z])([a-zA-Z]*)`)
	uwuURL     = regexp.MustCompile(`https?://\S+|<[^>]*>|:[a-z0-9_]+:`)
	uwuSmileys = []string{"(ᵘʷᵘ)", "(ᵘﻌᵘ)", "(◡ ꒳ ◡)", "(◡ w ◡)", "(◡ ሠ ◡)", "(˘ω˘)", "(⑅˘꒳˘)", "(˘ᵕ˘)", "(˘ሠ˘)", "(˘³˘)", "(˘εˇ)", "UwU", "OwO", ">w<", "^w^"}
)

// Uwu applies the uwu dialect: r/l to w, "ny" after n, "yu" for "you", the
// occasional stutter, and a smiley on the end. Links, mentions and emote
// codes pass through untouched.
func Uwu(r Rand, s string) string {
	var b strings.Builder
	last := 0
	for _, loc := range uwuURL.FindAllStringIndex(s, -1) {
		b.WriteString(uwuify(r, s[last:loc[0]]))
		b.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(uwuify(r, s[last:]))
	return strings.TrimRight(b.String(), " ") + " " + uwuSmileys[r.IntN(len(uwuSmileys))]
}

func uwuify(r Rand, s string) string {
	s = uwuYou.ReplaceAllString(s, "${1}u")
	s = uwuLR.Replace(s)
	s = uwuNya.ReplaceAllString(s, "${1}y$2")
	return uwuWord.ReplaceAllStringFunc(s, func(w string) string {
		if len(w) < 3 || r.Float64() >= 0.1 {
			return w
		}
		return w[:1] + "-" + w
	})
}
