package textfx

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
)

type fixedRand struct {
	n int
	f float64
}

func (r fixedRand) IntN(int) int      { return r.n }
func (r fixedRand) Float64() float64 { return r.f }

func TestYellAndSparkle(t *testing.T) {
	assert.Equal(t, "HÉLLO THERE!", Yell("héllo there!"))
	assert.Equal(t, ":sparkles:hi:sparkles:", Sparkle("hi"))
}

func TestShiny(t *testing.T) {
	assert.True(t, Shiny(fixedRand{n: 1}, 8191))
	assert.False(t, Shiny(fixedRand{n: 0}, 8191))
	assert.False(t, Shiny(fixedRand{n: 1}, 0))
}

func TestUwu(t *testing.T) {
	r := fixedRand{n: 0, f: 1}

	assert.Equal(t, "hewwo yu (ᵘʷᵘ)", Uwu(r, "hello you"))
	assert.Equal(t, "nyo pwobwem <@123> https://example.com/really (ᵘʷᵘ)",
		Uwu(r, "no problem <@123> https://example.com/really"))
}

func TestUwuStutter(t *testing.T) {
	r := fixedRand{n: 0, f: 0}
	assert.Equal(t, "h-hewwo (ᵘʷᵘ)", Uwu(r, "hello"))
}

type alternating struct{ i int }

func (a *alternating) IntN(int) int {
	a.i++
	return 1
}
func (a *alternating) Float64() float64 { return 0 }

func TestSpongecase(t *testing.T) {
	in := "you can't just mock people like this"
	out := Spongecase(&alternating{}, in)

	assert.Equal(t, strings.ToLower(in), strings.ToLower(out))

	run, prev := 0, false
	for _, c := range out {
		if !unicode.IsLetter(c) {
			continue
		}
		up := unicode.IsUpper(c)
		if up == prev {
			run++
		} else {
			run = 1
		}
		prev = up
		assert.LessOrEqual(t, run, 2)
	}
}
