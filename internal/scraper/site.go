// Package scraper holds the page-automation flow shared by the wholesale
// site drivers: open a search page, dismiss overlays, parse listings and
// keep a logged-in session.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/navid-fn/sourcing-radar/internal/apiclient"
	"github.com/navid-fn/sourcing-radar/internal/browser"
	"github.com/navid-fn/sourcing-radar/internal/models"
	"github.com/sirupsen/logrus"
)

const popupWait = 2 * time.Second

// PopupSelectors cover the close buttons of the notice layers both sites
// put over their search pages.
var PopupSelectors = []string{
	".popup-close", ".close", ".btn-close", "#popup-close", ".modal-close",
	".layer-close", ".popup_close",
}

// blockedMarkers appear on access-denied interstitials.
var blockedMarkers = []string{
	"Access Denied",
	"비정상적인 접근",
	"접근이 차단",
	"자동화된 접근",
}

// SiteRules describe one wholesale site's pages and selectors.
type SiteRules struct {
	Source  models.WholesaleSource
	BaseURL string

	// SearchURL builds the search page address for a keyword.
	SearchURL func(keyword string) string

	ItemSelector  string
	NameSelector  string
	PriceSelector string
	LinkSelector  string

	// FallbackLinkSelector is scanned for "N원" links when no item matches.
	FallbackLinkSelector string

	// MaxScan caps how many matched items are inspected.
	MaxScan int

	LoginURL string
	// LoginOpenSelector, when set, is clicked to reveal the login form.
	LoginOpenSelector string
	IDSelector        string
	PWSelector        string
	SubmitSelector    string
}

// Credentials are a site member login.
type Credentials struct {
	ID       string
	Password string
}

func (c Credentials) Present() bool {
	return c.ID != "" && c.Password != ""
}

// Site runs searches and logins against one wholesale site.
type Site struct {
	rules       SiteRules
	page        browser.Page
	creds       Credentials
	maxListings int
	logger      *logrus.Logger
}

func NewSite(rules SiteRules, page browser.Page, creds Credentials, maxListings int, logger *logrus.Logger) *Site {
	if maxListings <= 0 {
		maxListings = 3
	}
	return &Site{
		rules:       rules,
		page:        page,
		creds:       creds,
		maxListings: maxListings,
		logger:      logger,
	}
}

func (s *Site) Name() models.WholesaleSource {
	return s.rules.Source
}

// BaseURL is used to resolve relative listing links.
func (s *Site) BaseURL() string {
	return s.rules.BaseURL
}

// Search opens the keyword's result page and returns up to maxListings
// listings with sane prices. An access-denied page yields a SourceBlocked error.
func (s *Site) Search(ctx context.Context, keyword string) ([]models.RawListing, error) {
	source := string(s.rules.Source)

	if err := s.page.Navigate(ctx, s.rules.SearchURL(keyword)); err != nil {
		return nil, apiclient.NewError(apiclient.KindTransientNetwork, source, 0, nil, err)
	}
	ClosePopups(ctx, s.page)

	html, err := s.page.HTML(ctx)
	if err != nil {
		return nil, apiclient.NewError(apiclient.KindTransientNetwork, source, 0, nil, err)
	}
	if marker, blocked := IsBlocked(html); blocked {
		return nil, apiclient.BlockedError(source, fmt.Errorf("page shows %q", marker))
	}

	listings, err := ExtractListings(html, s.rules, s.maxListings)
	if err != nil {
		return nil, apiclient.ParseError(source, nil, err)
	}

	s.logger.Debugf("[%s] %q: %d listings", source, keyword, len(listings))
	return listings, nil
}

// ErrLoginFailed is returned when the site shows a credential error.
var ErrLoginFailed = errors.New("login rejected")

// Login signs in with the configured credentials. Missing credentials
// yield a ConfigMissing error; the session keeps the cookies on success.
func (s *Site) Login(ctx context.Context) error {
	source := string(s.rules.Source)
	if !s.creds.Present() {
		return apiclient.ConfigError(source, "login credentials")
	}

	if err := s.page.Navigate(ctx, s.rules.LoginURL); err != nil {
		return apiclient.NewError(apiclient.KindTransientNetwork, source, 0, nil, err)
	}
	ClosePopups(ctx, s.page)

	if s.rules.LoginOpenSelector != "" {
		if ok, _ := s.page.Visible(ctx, s.rules.LoginOpenSelector); ok {
			if err := s.page.Click(ctx, s.rules.LoginOpenSelector); err != nil {
				s.logger.Debugf("[%s] login opener click failed: %v", source, err)
			}
		}
	}

	if err := s.page.Fill(ctx, s.rules.IDSelector, s.creds.ID); err != nil {
		return apiclient.ParseError(source, nil, fmt.Errorf("id field: %w", err))
	}
	if err := s.page.Fill(ctx, s.rules.PWSelector, s.creds.Password); err != nil {
		return apiclient.ParseError(source, nil, fmt.Errorf("password field: %w", err))
	}
	if err := s.page.Click(ctx, s.rules.SubmitSelector); err != nil {
		return apiclient.ParseError(source, nil, fmt.Errorf("submit: %w", err))
	}

	body, err := s.page.Text(ctx, "body")
	if err == nil && LoginRejected(body) {
		return apiclient.NewError(apiclient.KindAuthRejected, source, 0, nil, ErrLoginFailed)
	}
	// The password field only survives a failed submit.
	if still, _ := s.page.Visible(ctx, s.rules.PWSelector); still {
		return apiclient.NewError(apiclient.KindAuthRejected, source, 0, nil, ErrLoginFailed)
	}

	s.logger.Infof("[%s] logged in", source)
	return nil
}

// ClosePopups clicks any visible overlay close button. Failures are ignored.
func ClosePopups(ctx context.Context, page browser.Page) {
	for _, selector := range PopupSelectors {
		waitCtx, cancel := context.WithTimeout(ctx, popupWait)
		if ok, err := page.Visible(waitCtx, selector); err == nil && ok {
			_ = page.Click(waitCtx, selector)
		}
		cancel()
	}
}

// IsBlocked reports the access-denied marker found in html, if any.
func IsBlocked(html string) (string, bool) {
	for _, marker := range blockedMarkers {
		if strings.Contains(html, marker) {
			return marker, true
		}
	}
	return "", false
}

// LoginRejected detects the "password mismatch" style messages.
func LoginRejected(body string) bool {
	if !strings.Contains(body, "비밀번호") {
		return false
	}
	for _, hint := range []string{"일치", "오류", "틀렸"} {
		if strings.Contains(body, hint) {
			return true
		}
	}
	return false
}
