package scraper

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// MinSanePrice and MaxSanePrice bound any scraped wholesale price.
	MinSanePrice = 100
	MaxSanePrice = 100_000_000

	maxNameRunes = 80
)

var (
	digitGroup = regexp.MustCompile(`[\d,]+`)
	wonPrice   = regexp.MustCompile(`([\d,]+)\s*원`)
)

// ParsePrice keeps only the digits of text.
func ParsePrice(text string) (int, bool) {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.Atoi(b.String())
	if err != nil {
		return 0, false
	}
	return v, true
}

// SanePrice reports whether price lies in the plausible wholesale range.
func SanePrice(price int) bool {
	return price >= MinSanePrice && price <= MaxSanePrice
}

// FirstPrice reads the first digit group of a price element's text.
func FirstPrice(text string) (int, bool) {
	match := digitGroup.FindString(text)
	if match == "" {
		return 0, false
	}
	price, ok := ParsePrice(match)
	if !ok || !SanePrice(price) {
		return 0, false
	}
	return price, true
}

// WonPrice finds the first sane "N원" amount in free text.
func WonPrice(text string) (int, bool) {
	for _, m := range wonPrice.FindAllStringSubmatch(text, -1) {
		if price, ok := ParsePrice(m[1]); ok && SanePrice(price) {
			return price, true
		}
	}
	return 0, false
}

// CleanText collapses whitespace.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// TruncateName shortens a fallback name taken from a whole listing block.
func TruncateName(text string) string {
	text = CleanText(text)
	if utf8.RuneCountInString(text) <= maxNameRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxNameRunes])
}

// ResolveURL makes a scraped href absolute against the site base.
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}
