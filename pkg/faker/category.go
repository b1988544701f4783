package faker

import (
	"strings"
	"unicode"
)

// Category names a kind of realistic value.
type Category string

// Supported categories.
const (
	Name          Category = "name"
	FirstName     Category = "first_name"
	LastName      Category = "last_name"
	UserName      Category = "user_name"
	Email         Category = "email"
	Address       Category = "address"
	Street        Category = "street"
	City          Category = "city"
	State         Category = "state"
	ZipCode       Category = "zip_code"
	Country       Category = "country"
	PhoneNumber   Category = "phone_number"
	Company       Category = "company"
	Job           Category = "job"
	Text          Category = "text"
	Sentence      Category = "sentence"
	Paragraph     Category = "paragraph"
	Word          Category = "word"
	Slug          Category = "slug"
	URL           Category = "url"
	URI           Category = "uri"
	IPv4          Category = "ipv4"
	IPv6          Category = "ipv6"
	MACAddress    Category = "mac_address"
	UserAgent     Category = "user_agent"
	ColorName     Category = "color_name"
	HexColor      Category = "hex_color"
	CurrencyCode  Category = "currency_code"
	IBAN          Category = "iban"
	CreditCard    Category = "credit_card"
	ProductName   Category = "product_name"
	MIMEType      Category = "mime_type"
	FileExtension Category = "file_extension"
)

// fieldCategories maps normalized field names to categories. Adding a row is
// all it takes to teach the generator a new field name.
var fieldCategories = map[string]Category{
	"name":           Name,
	"full_name":      Name,
	"fullname":       Name,
	"display_name":   Name,
	"first_name":     FirstName,
	"firstname":      FirstName,
	"given_name":     FirstName,
	"last_name":      LastName,
	"lastname":       LastName,
	"surname":        LastName,
	"family_name":    LastName,
	"user_name":      UserName,
	"username":       UserName,
	"login":          UserName,
	"handle":         UserName,
	"email":          Email,
	"email_address":  Email,
	"e_mail":         Email,
	"address":        Address,
	"street_address": Street,
	"street":         Street,
	"city":           City,
	"town":           City,
	"state":          State,
	"region":         State,
	"province":       State,
	"zip_code":       ZipCode,
	"zipcode":        ZipCode,
	"zip":            ZipCode,
	"postcode":       ZipCode,
	"postal_code":    ZipCode,
	"country":        Country,
	"phone":          PhoneNumber,
	"phone_number":   PhoneNumber,
	"telephone":      PhoneNumber,
	"mobile":         PhoneNumber,
	"company":        Company,
	"company_name":   Company,
	"organization":   Company,
	"employer":       Company,
	"job":            Job,
	"job_title":      Job,
	"occupation":     Job,
	"text":           Text,
	"bio":            Text,
	"summary":        Text,
	"sentence":       Sentence,
	"title":          Sentence,
	"headline":       Sentence,
	"paragraph":      Paragraph,
	"body":           Paragraph,
	"word":           Word,
	"keyword":        Word,
	"slug":           Slug,
	"url":            URL,
	"website":        URL,
	"homepage":       URL,
	"uri":            URI,
	"ipv4":           IPv4,
	"ip":             IPv4,
	"ip_address":     IPv4,
	"ipv6":           IPv6,
	"mac":            MACAddress,
	"mac_address":    MACAddress,
	"user_agent":     UserAgent,
	"color":          ColorName,
	"colour":         ColorName,
	"color_name":     ColorName,
	"hex_color":      HexColor,
	"currency":       CurrencyCode,
	"currency_code":  CurrencyCode,
	"iban":           IBAN,
	"credit_card":    CreditCard,
	"card_number":    CreditCard,
	"product":        ProductName,
	"product_name":   ProductName,
	"mime_type":      MIMEType,
	"content_type":   MIMEType,
	"file_extension": FileExtension,
	"extension":      FileExtension,
}

// Normalize converts a field name to the snake_case form used for matching:
// "firstName", "First-Name" and "FIRST_NAME" all become "first_name".
func Normalize(field string) string {
	var b strings.Builder
	b.Grow(len(field) + 4)
	runes := []rune(field)
	for i, r := range runes {
		switch {
		case r == '-' || r == ' ' || r == '.':
			b.WriteByte('_')
		case unicode.IsUpper(r):
			// Start a new word on a lower->upper transition, or at the last
			// capital of an acronym followed by lowercase ("URLPath" -> url_path).
			if i > 0 && runes[i-1] != '_' && runes[i-1] != '-' &&
				(unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]) ||
					(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MatchField returns the category for a field name, if any.
func MatchField(field string) (Category, bool) {
	c, ok := fieldCategories[Normalize(field)]
	return c, ok
}

// Categories returns every category the provider can produce.
func Categories() []Category {
	out := make([]Category, 0, len(generators))
	for c := range generators {
		out = append(out, c)
	}
	return out
}
