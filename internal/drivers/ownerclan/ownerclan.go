// Package ownerclan configures the scraper for the Ownerclan wholesale site.
package ownerclan

import (
	"net/url"

	"github.com/navid-fn/sourcing-radar/configs"
	"github.com/navid-fn/sourcing-radar/internal/browser"
	"github.com/navid-fn/sourcing-radar/internal/models"
	"github.com/navid-fn/sourcing-radar/internal/scraper"
	"github.com/sirupsen/logrus"
)

const (
	BaseURL   = "https://www.ownerclan.com"
	searchURL = BaseURL + "/V2/product/search.php"
	loginURL  = BaseURL + "/V2/member/login.php"
)

var Rules = scraper.SiteRules{
	Source:    models.SourceOwnerclan,
	BaseURL:   BaseURL,
	SearchURL: SearchURL,
	ItemSelector: ".prd-item, .goods-item, [class*='prd'], .product-item, .item, " +
		"[class*='product'], .search-result-item, tr[class*='list']",
	NameSelector:      ".prd-name, .goods-name, .name, [class*='name'], h3, h4",
	PriceSelector:     ".price em, .prd-price, [class*='price']",
	LinkSelector:      "a[href*='product'], a[href*='detail']",
	MaxScan:           60,
	LoginURL:          loginURL,
	LoginOpenSelector: "a[href*='login'], .btn-login",
	IDSelector:        "input[name='id'], input[name='userId'], input[type='text']",
	PWSelector:        "input[type='password']",
	SubmitSelector:    "button[type='submit'], input[type='submit'], .login-btn",
}

func SearchURL(keyword string) string {
	return searchURL + "?searchKeyword=" + url.QueryEscape(keyword)
}

// New returns an Ownerclan site bound to the shared browser page.
func New(page browser.Page, cfg configs.WholesaleConfig, logger *logrus.Logger) *scraper.Site {
	creds := scraper.Credentials{ID: cfg.OwnerclanID, Password: cfg.OwnerclanPW}
	return scraper.NewSite(Rules, page, creds, cfg.MaxListings, logger)
}
