// Package domeggook configures the scraper for the Domeggook wholesale site.
package domeggook

import (
	"net/url"

	"github.com/navid-fn/sourcing-radar/configs"
	"github.com/navid-fn/sourcing-radar/internal/browser"
	"github.com/navid-fn/sourcing-radar/internal/models"
	"github.com/navid-fn/sourcing-radar/internal/scraper"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/korean"
)

const (
	BaseURL   = "https://www.domeggook.com"
	searchURL = BaseURL + "/main/item/itemList.php"
	loginURL  = BaseURL + "/ssl/member/mem_loginForm.php"
)

// Rules are the Domeggook selectors. The listing page is a legacy table
// layout, so the item selector is deliberately broad and capped by MaxScan.
var Rules = scraper.SiteRules{
	Source:               models.SourceDomeggook,
	BaseURL:              BaseURL,
	SearchURL:            SearchURL,
	ItemSelector:         ".item, .product, tr, [class*='list'], [class*='prd']",
	NameSelector:         ".item_name, .product_name, h3, h4",
	PriceSelector:        ".selling_price, .price, [class*='price'], .item_price",
	LinkSelector:         "a[href]",
	FallbackLinkSelector: "a[href*='domeggook.com/']",
	MaxScan:              60,
	LoginURL:             loginURL,
	IDSelector:           "input[name='mb_id'], input[name='id'], input[type='text']",
	PWSelector:           "input[type='password']",
	SubmitSelector:       "button[type='submit'], input[type='submit'], .btn_login",
}

// SearchURL encodes the keyword as EUC-KR, which the legacy search form
// expects; it falls back to UTF-8 when a rune has no EUC-KR mapping.
func SearchURL(keyword string) string {
	encoded, err := korean.EUCKR.NewEncoder().String(keyword)
	if err != nil {
		encoded = keyword
	}
	q := url.Values{}
	q.Set("sw", encoded)
	q.Set("sf", "ttl")
	return searchURL + "?" + q.Encode()
}

// New returns a Domeggook site bound to the shared browser page.
func New(page browser.Page, cfg configs.WholesaleConfig, logger *logrus.Logger) *scraper.Site {
	creds := scraper.Credentials{ID: cfg.DomeggookID, Password: cfg.DomeggookPW}
	return scraper.NewSite(Rules, page, creds, cfg.MaxListings, logger)
}
