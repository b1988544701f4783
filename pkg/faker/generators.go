package faker

import (
	"fmt"
	"strings"
)

// generators is the category -> producer table. Categories are added here.
var generators = map[Category]func(p *Provider) string{
	Name:          (*Provider).name,
	FirstName:     (*Provider).firstName,
	LastName:      (*Provider).lastName,
	UserName:      (*Provider).asciiHandle,
	Email:         (*Provider).email,
	Address:       (*Provider).address,
	Street:        func(p *Provider) string { return p.pick(p.loc.streets) },
	City:          func(p *Provider) string { return p.pick(p.loc.cities) },
	State:         func(p *Provider) string { return p.pick(p.loc.states) },
	ZipCode:       (*Provider).zip,
	Country:       func(p *Provider) string { return p.loc.country },
	PhoneNumber:   func(p *Provider) string { return p.digits(p.loc.phone) },
	Company:       (*Provider).company,
	Job:           func(p *Provider) string { return p.pick(p.loc.jobs) },
	Text:          (*Provider).text,
	Sentence:      func(p *Provider) string { return p.Sentence(6) },
	Paragraph:     (*Provider).paragraph,
	Word:          (*Provider).Word,
	Slug:          (*Provider).slug,
	URL:           (*Provider).url,
	URI:           (*Provider).uri,
	IPv4:          (*Provider).ipv4,
	IPv6:          (*Provider).ipv6,
	MACAddress:    (*Provider).macAddress,
	UserAgent:     func(p *Provider) string { return p.pick(userAgents) },
	ColorName:     func(p *Provider) string { return p.pick(p.loc.colors) },
	HexColor:      (*Provider).hexColor,
	CurrencyCode:  func(p *Provider) string { return p.pick(currencyCodes) },
	IBAN:          (*Provider).iban,
	CreditCard:    (*Provider).creditCard,
	ProductName:   (*Provider).productName,
	MIMEType:      func(p *Provider) string { return p.pick(mimeTypes) },
	FileExtension: func(p *Provider) string { return p.pick(fileExtensions) },
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Mobile Safari/537.36",
	"curl/8.7.1",
}

var currencyCodes = []string{
	"USD", "EUR", "GBP", "JPY", "CHF", "CAD", "AUD", "CNY", "SEK", "NOK", "RUB", "INR", "BRL", "MXN",
}

var mimeTypes = []string{
	"application/json", "application/xml", "application/pdf", "application/zip",
	"text/html", "text/plain", "text/csv", "image/png", "image/jpeg", "image/svg+xml",
	"audio/mpeg", "video/mp4",
}

var fileExtensions = []string{
	"txt", "pdf", "csv", "json", "xml", "yaml", "png", "jpg", "gif", "svg",
	"zip", "tar", "gz", "mp3", "mp4", "docx", "xlsx", "md", "log",
}

var productAdjectives = []string{"Ergonomic", "Rustic", "Sleek", "Practical", "Handcrafted", "Refined", "Compact", "Durable"}
var productMaterials = []string{"Steel", "Wooden", "Cotton", "Granite", "Rubber", "Bamboo", "Leather", "Glass"}
var productNouns = []string{"Chair", "Lamp", "Keyboard", "Backpack", "Table", "Bottle", "Wallet", "Speaker"}

type ibanFormat struct {
	country string
	length  int
}

var ibanFormats = []ibanFormat{
	{"DE", 22}, {"GB", 22}, {"FR", 27}, {"ES", 24}, {"NL", 18}, {"IT", 27}, {"CH", 21},
}

func (p *Provider) ipv4() string {
	// First octet stays in the public unicast range.
	return fmt.Sprintf("%d.%d.%d.%d", 1+p.rng.IntN(223), p.rng.IntN(256), p.rng.IntN(256), 1+p.rng.IntN(254))
}

func (p *Provider) ipv6() string {
	groups := make([]string, 8)
	for i := range groups {
		groups[i] = fmt.Sprintf("%04x", p.rng.IntN(65536))
	}
	return strings.Join(groups, ":")
}

func (p *Provider) macAddress() string {
	parts := make([]string, 6)
	for i := range parts {
		parts[i] = fmt.Sprintf("%02X", p.rng.IntN(256))
	}
	return strings.Join(parts, ":")
}

// creditCard returns a Luhn-valid 16-digit number with a Visa-style prefix.
func (p *Provider) creditCard() string {
	digits := make([]int, 16)
	digits[0] = 4
	for i := 1; i < 15; i++ {
		digits[i] = p.rng.IntN(10)
	}
	sum := 0
	for i := 0; i < 15; i++ {
		d := digits[i]
		if i%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	digits[15] = (10 - sum%10) % 10

	var b strings.Builder
	for _, d := range digits {
		b.WriteByte(byte('0' + d))
	}
	return b.String()
}

// iban returns an IBAN with valid ISO 7064 mod-97 check digits.
func (p *Provider) iban() string {
	f := ibanFormats[p.rng.IntN(len(ibanFormats))]
	bban := make([]byte, f.length-4)
	for i := range bban {
		bban[i] = byte('0' + p.rng.IntN(10))
	}
	check := 98 - mod97(string(bban)+f.country+"00")
	return fmt.Sprintf("%s%02d%s", f.country, check, bban)
}

func mod97(s string) int {
	rem := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			v := int(c-'A') + 10
			rem = (rem*100 + v) % 97
			continue
		}
		rem = (rem*10 + int(c-'0')) % 97
	}
	return rem
}

func (p *Provider) productName() string {
	return p.pick(productAdjectives) + " " + p.pick(productMaterials) + " " + p.pick(productNouns)
}
