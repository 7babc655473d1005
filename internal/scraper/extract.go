package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/navid-fn/sourcing-radar/internal/models"
)

// ExtractListings parses a rendered search page into at most max listings.
// Items without a sane price are skipped. When the item selector finds
// nothing, links carrying a "N원" amount are used instead.
func ExtractListings(html string, rules SiteRules, max int) ([]models.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	listings := make([]models.RawListing, 0, max)
	seen := make(map[string]bool)
	add := func(listing models.RawListing) bool {
		key := listing.Name + "|" + listing.URL
		if seen[key] {
			return true
		}
		seen[key] = true
		listings = append(listings, listing)
		return len(listings) < max
	}

	scanned := 0
	doc.Find(rules.ItemSelector).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		scanned++
		if rules.MaxScan > 0 && scanned > rules.MaxScan {
			return false
		}

		price, ok := FirstPrice(item.Find(rules.PriceSelector).First().Text())
		if !ok {
			price, ok = WonPrice(item.Text())
		}
		if !ok {
			return true
		}

		name := CleanText(item.Find(rules.NameSelector).First().Text())
		link := item.Find(rules.LinkSelector).First().AttrOr("href", "")
		if link == "" {
			link = item.Closest("a").AttrOr("href", "")
		}
		// Broad selectors also match bare price cells; those carry neither.
		if name == "" && link == "" {
			return true
		}
		if name == "" {
			name = TruncateName(item.Text())
		}
		return add(models.RawListing{Name: name, Price: price, URL: strings.TrimSpace(link)})
	})

	if len(listings) > 0 || rules.FallbackLinkSelector == "" {
		return listings, nil
	}

	doc.Find(rules.FallbackLinkSelector).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := a.Text()
		price, ok := WonPrice(text)
		if !ok {
			return true
		}
		return add(models.RawListing{
			Name:  TruncateName(text),
			Price: price,
			URL:   strings.TrimSpace(a.AttrOr("href", "")),
		})
	})
	return listings, nil
}
