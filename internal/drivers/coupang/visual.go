package coupang

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/navid-fn/sourcing-radar/internal/apiclient"
	"github.com/navid-fn/sourcing-radar/internal/browser"
	"github.com/sirupsen/logrus"
)

const SearchPageURL = "https://www.coupang.com/np/search"

var blockedMarkers = []string{"Access Denied", "접근이 제한"}

// VisualResult is the outcome of a search-page check.
type VisualResult struct {
	FastDeliveryCount int
	ScreenshotPath    string
}

// VisualChecker recounts fast-delivery listings from the rendered search page
// when the API sample contained none.
type VisualChecker struct {
	page          browser.Page
	screenshotDir string
	logger        *logrus.Logger
}

func NewVisualChecker(page browser.Page, screenshotDir string, logger *logrus.Logger) *VisualChecker {
	return &VisualChecker{page: page, screenshotDir: screenshotDir, logger: logger}
}

// Check loads the search page for keyword. An access-denied page is
// reported as a SourceBlocked error.
func (v *VisualChecker) Check(ctx context.Context, keyword string) (VisualResult, error) {
	var result VisualResult

	target := SearchPageURL + "?q=" + url.QueryEscape(keyword)
	if err := v.page.Navigate(ctx, target); err != nil {
		return result, apiclient.NewError(apiclient.KindTransientNetwork, "coupang-visual", 0, nil, err)
	}

	html, err := v.page.HTML(ctx)
	if err != nil {
		return result, apiclient.NewError(apiclient.KindTransientNetwork, "coupang-visual", 0, nil, err)
	}

	if IsBlockedPage(html) {
		return result, apiclient.BlockedError("coupang-visual", fmt.Errorf("access denied for %q", keyword))
	}

	path := filepath.Join(v.screenshotDir, SafeFileName(keyword)+".png")
	if err := v.page.Screenshot(ctx, path); err != nil {
		v.logger.Warnf("[coupang-visual] Screenshot failed for %s: %v", keyword, err)
	} else {
		result.ScreenshotPath = path
	}

	count, err := CountFastDelivery(html)
	if err != nil {
		return result, apiclient.ParseError("coupang-visual", []byte(html), err)
	}
	result.FastDeliveryCount = count
	return result, nil
}

// IsBlockedPage reports whether html carries an access-denied marker.
func IsBlockedPage(html string) bool {
	for _, marker := range blockedMarkers {
		if strings.Contains(html, marker) {
			return true
		}
	}
	return false
}

// CountFastDelivery counts non-ad search results that show the fast-delivery marker.
func CountFastDelivery(html string) (int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, err
	}

	count := 0
	doc.Find("li.search-product").Each(func(_ int, item *goquery.Selection) {
		if item.Find(".search-product__ad-badge, [class*='ad-badge']").Length() > 0 {
			return
		}
		if strings.Contains(item.Text(), fastDeliveryMarker) ||
			item.Find("img[alt*='"+fastDeliveryMarker+"']").Length() > 0 {
			count++
		}
	})
	return count, nil
}

// SafeFileName keeps letters, digits and "._-", replacing the rest.
func SafeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= 0xAC00 && r <= 0xD7A3:
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
