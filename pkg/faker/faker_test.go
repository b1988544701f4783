package faker

import (
	mathrand "math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(locale string, seed uint64) *Provider {
	return New(locale, mathrand.New(mathrand.NewPCG(seed, 0)))
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"email":        "email",
		"Email":        "email",
		"firstName":    "first_name",
		"FirstName":    "first_name",
		"first-name":   "first_name",
		"FIRST_NAME":   "first_name",
		"phoneNumber":  "phone_number",
		"ipV4":         "ip_v4",
		"URLPath":      "url_path",
		"zip code":     "zip_code",
		"userAgent":    "user_agent",
		"address2Line": "address2_line",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Normalize(in))
		})
	}
}

func TestMatchField(t *testing.T) {
	tests := []struct {
		field string
		want  Category
		ok    bool
	}{
		{"email", Email, true},
		{"EMAIL", Email, true},
		{"emailAddress", Email, true},
		{"name", Name, true},
		{"lastName", LastName, true},
		{"zip_code", ZipCode, true},
		{"phone", PhoneNumber, true},
		{"company", Company, true},
		{"ipv4", IPv4, true},
		{"hex_color", HexColor, true},
		{"quantity", "", false},
		{"id", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, ok := MatchField(tt.field)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEveryMappedCategoryHasGenerator(t *testing.T) {
	for name, c := range fieldCategories {
		_, ok := generators[c]
		assert.True(t, ok, "field %q maps to category %q without generator", name, c)
	}
}

func TestLookup_AllCategoriesAllLocales(t *testing.T) {
	for _, loc := range Locales() {
		p := newTestProvider(loc, 7)
		for _, c := range Categories() {
			v, ok := p.Lookup(c)
			assert.True(t, ok)
			assert.NotEmpty(t, v, "%s/%s", loc, c)
		}
	}
}

func TestLookup_UnknownCategory(t *testing.T) {
	p := newTestProvider("", 1)
	v, ok := p.Lookup(Category("starship_registry"))
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestLookup_Deterministic(t *testing.T) {
	a := newTestProvider("de_DE", 99)
	b := newTestProvider("de_DE", 99)
	for i := 0; i < 50; i++ {
		for _, c := range []Category{Name, Email, Address, PhoneNumber, IBAN, Sentence} {
			va, _ := a.Lookup(c)
			vb, _ := b.Lookup(c)
			require.Equal(t, va, vb)
		}
	}
}

func TestResolveLocale(t *testing.T) {
	tests := map[string]string{
		"":        "en_US",
		"en_US":   "en_US",
		"en-GB":   "en_GB",
		"de":      "de_DE",
		"de_AT":   "de_DE",
		"fr_CA":   "fr_FR",
		"ja_JP":   "ja_JP",
		"ru":      "ru_RU",
		"es-ES":   "es_ES",
		"zz_ZZ":   "en_US",
		"garbage": "en_US",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ResolveLocale(in))
		})
	}
}

func TestLocaleAffectsPools(t *testing.T) {
	de := newTestProvider("de_DE", 3)
	us := newTestProvider("en_US", 3)
	c1, _ := de.Lookup(Country)
	c2, _ := us.Lookup(Country)
	assert.Equal(t, "Deutschland", c1)
	assert.Equal(t, "United States", c2)
}

var emailRe = regexp.MustCompile(`^[a-z0-9._]+@[a-z0-9.-]+\.[a-z]+$`)

func TestEmail_ASCIIForAllLocales(t *testing.T) {
	for _, loc := range Locales() {
		p := newTestProvider(loc, 11)
		for i := 0; i < 20; i++ {
			v, _ := p.Lookup(Email)
			assert.Regexp(t, emailRe, v, loc)
		}
	}
}

func TestCreditCard_Luhn(t *testing.T) {
	p := newTestProvider("", 5)
	for i := 0; i < 100; i++ {
		n, _ := p.Lookup(CreditCard)
		require.Len(t, n, 16)
		sum := 0
		for j := 0; j < 16; j++ {
			d := int(n[15-j] - '0')
			if j%2 == 1 {
				d *= 2
				if d > 9 {
					d -= 9
				}
			}
			sum += d
		}
		assert.Zero(t, sum%10, n)
	}
}

func TestIBAN_CheckDigits(t *testing.T) {
	p := newTestProvider("", 8)
	for i := 0; i < 50; i++ {
		iban, _ := p.Lookup(IBAN)
		rearranged := iban[4:] + iban[:4]
		assert.Equal(t, 1, mod97(rearranged), iban)
	}
}

func TestIPv4_Shape(t *testing.T) {
	p := newTestProvider("", 2)
	for i := 0; i < 50; i++ {
		ip, _ := p.Lookup(IPv4)
		parts := strings.Split(ip, ".")
		require.Len(t, parts, 4)
		for _, part := range parts {
			n, err := strconv.Atoi(part)
			require.NoError(t, err)
			assert.True(t, n >= 0 && n <= 255)
		}
	}
}

func TestSentence(t *testing.T) {
	p := newTestProvider("", 4)
	s := p.Sentence(3)
	assert.True(t, strings.HasSuffix(s, "."))
	assert.Len(t, strings.Fields(s), 3)
	assert.Equal(t, strings.ToUpper(s[:1]), s[:1])
}

func TestText_Limit(t *testing.T) {
	p := newTestProvider("", 6)
	for i := 0; i < 20; i++ {
		v, _ := p.Lookup(Text)
		assert.LessOrEqual(t, len([]rune(v)), 150)
	}
}

func TestNew_NilSourcePanics(t *testing.T) {
	assert.Panics(t, func() { New("en_US", nil) })
}
