package faker

import (
	"fmt"
	mathrand "math/rand/v2"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Provider produces realistic values for a locale. Every draw comes from the
// random source it was created with, so a seeded source gives reproducible
// values. A Provider is not safe for concurrent use.
type Provider struct {
	rng   *mathrand.Rand
	loc   *locale
	title cases.Caser
}

// New creates a provider for the closest supported locale, drawing from rng.
func New(localeCode string, rng *mathrand.Rand) *Provider {
	if rng == nil {
		panic("faker: New requires a random source")
	}
	loc := lookupLocale(localeCode)
	return &Provider{rng: rng, loc: loc, title: cases.Title(loc.tag)}
}

// Locale returns the resolved locale code.
func (p *Provider) Locale() string {
	return p.loc.code
}

// Lookup produces a value for the category. It reports false for unknown
// categories without consuming randomness.
func (p *Provider) Lookup(c Category) (string, bool) {
	gen, ok := generators[c]
	if !ok {
		return "", false
	}
	return gen(p), true
}

// Field matches a field name and produces a value for its category.
func (p *Provider) Field(name string) (string, bool) {
	c, ok := MatchField(name)
	if !ok {
		return "", false
	}
	return p.Lookup(c)
}

func (p *Provider) pick(pool []string) string {
	return pool[p.rng.IntN(len(pool))]
}

func (p *Provider) digits(format string) string {
	var b strings.Builder
	for _, r := range format {
		switch r {
		case '#':
			b.WriteByte(byte('0' + p.rng.IntN(10)))
		case '?':
			b.WriteByte(byte('A' + p.rng.IntN(26)))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Word returns one word from the locale's word pool.
func (p *Provider) Word() string {
	return p.pick(p.loc.words)
}

// Words returns n words.
func (p *Provider) Words(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = p.Word()
	}
	return out
}

// Sentence returns n words with the first capitalized and a trailing period.
func (p *Provider) Sentence(n int) string {
	if n < 1 {
		n = 1
	}
	words := p.Words(n)
	words[0] = p.capitalize(words[0])
	return strings.Join(words, " ") + "."
}

func (p *Provider) capitalize(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return w
	}
	return p.title.String(string(r)) + w[size:]
}

func (p *Provider) paragraph() string {
	n := 3 + p.rng.IntN(3)
	sentences := make([]string, n)
	for i := range sentences {
		sentences[i] = p.Sentence(4 + p.rng.IntN(6))
	}
	return strings.Join(sentences, " ")
}

// text returns sentences totalling at most 150 runes.
func (p *Provider) text() string {
	const limit = 150
	var b strings.Builder
	for {
		s := p.Sentence(4 + p.rng.IntN(6))
		if b.Len() > 0 && utf8.RuneCountInString(b.String())+1+utf8.RuneCountInString(s) > limit {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
		if utf8.RuneCountInString(b.String()) >= limit {
			break
		}
	}
	return b.String()
}

func (p *Provider) firstName() string { return p.pick(p.loc.firstNames) }
func (p *Provider) lastName() string  { return p.pick(p.loc.lastNames) }

func (p *Provider) name() string {
	first, last := p.firstName(), p.lastName()
	if p.loc.familyFirst {
		return last + " " + first
	}
	return first + " " + last
}

// asciiHandle builds a login-safe handle. Non-Latin locales fall back to
// lorem words so e-mail addresses stay ASCII.
func (p *Provider) asciiHandle() string {
	first := transliterate(strings.ToLower(p.firstName()))
	last := transliterate(strings.ToLower(p.lastName()))
	if !isASCII(first) || !isASCII(last) {
		first, last = p.pick(loremWords), p.pick(loremWords)
	}
	switch p.rng.IntN(3) {
	case 0:
		return first + "." + last
	case 1:
		return first + "_" + last + strconv.Itoa(p.rng.IntN(100))
	default:
		return first[:1] + last + strconv.Itoa(p.rng.IntN(1000))
	}
}

func (p *Provider) email() string {
	return p.asciiHandle() + "@" + p.pick(p.loc.domains)
}

func (p *Provider) zip() string { return p.digits(p.loc.postcode) }

func (p *Provider) address() string {
	idx := p.rng.IntN(len(p.loc.cities))
	r := strings.NewReplacer(
		"{n}", strconv.Itoa(p.rng.IntN(999)+1),
		"{street}", p.pick(p.loc.streets),
		"{city}", p.loc.cities[idx],
		"{state}", p.loc.states[idx],
		"{zip}", p.zip(),
	)
	return r.Replace(p.loc.addressFmt)
}

func (p *Provider) company() string {
	base := p.pick(p.loc.companies)
	sfx := p.pick(p.loc.companySfx)
	if p.loc.familyFirst {
		return sfx + base
	}
	return base + " " + sfx
}

func (p *Provider) slug() string {
	words := make([]string, 3)
	for i := range words {
		words[i] = p.pick(loremWords)
	}
	return strings.Join(words, "-")
}

func (p *Provider) url() string {
	return "https://www." + p.pick(p.loc.domains) + "/"
}

func (p *Provider) uri() string {
	return "https://" + p.pick(p.loc.domains) + "/" + p.pick(loremWords) + "/" + p.slug()
}

func (p *Provider) hexColor() string {
	return fmt.Sprintf("#%06x", p.rng.IntN(1<<24))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

var latinFold = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss",
	"é", "e", "è", "e", "ë", "e", "ê", "e", "à", "a", "á", "a",
	"í", "i", "ó", "o", "ú", "u", "ñ", "n", "ç", "c", "ï", "i",
)

func transliterate(s string) string {
	return latinFold.Replace(s)
}
