package scraper

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/navid-fn/sourcing-radar/internal/apiclient"
	"github.com/navid-fn/sourcing-radar/internal/models"
	"github.com/sirupsen/logrus"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakePage struct {
	html    string
	body    string
	visible map[string]bool
	filled  map[string]string
	clicked []string
	visited []string
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.visited = append(p.visited, url)
	return nil
}
func (p *fakePage) HTML(ctx context.Context) (string, error)            { return p.html, nil }
func (p *fakePage) Text(ctx context.Context, s string) (string, error)  { return p.body, nil }
func (p *fakePage) Visible(ctx context.Context, s string) (bool, error) { return p.visible[s], nil }
func (p *fakePage) Fill(ctx context.Context, s, v string) error {
	if p.filled == nil {
		p.filled = make(map[string]string)
	}
	p.filled[s] = v
	return nil
}
func (p *fakePage) Click(ctx context.Context, s string) error {
	p.clicked = append(p.clicked, s)
	return nil
}
func (p *fakePage) Screenshot(ctx context.Context, path string) error { return nil }

var testRules = SiteRules{
	Source:               models.SourceDomeggook,
	BaseURL:              "https://wholesale.example",
	SearchURL:            func(kw string) string { return "https://wholesale.example/search?q=" + kw },
	ItemSelector:         ".item",
	NameSelector:         ".name",
	PriceSelector:        ".price",
	LinkSelector:         "a",
	FallbackLinkSelector: "a[href*='wholesale.example/']",
	MaxScan:              50,
	LoginURL:             "https://wholesale.example/login",
	IDSelector:           "#id",
	PWSelector:           "#pw",
	SubmitSelector:       "#submit",
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
		ok   bool
	}{
		{"plain", "12,900원", 12900, true},
		{"spaces", " 3 000 ", 3000, true},
		{"empty", "가격문의", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePrice(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Expected (%d, %v), got (%d, %v)", tt.want, tt.ok, got, ok)
			}
		})
	}
}

func TestFirstPriceRejectsInsaneValues(t *testing.T) {
	if _, ok := FirstPrice("50원"); ok {
		t.Error("Expected 50 to be rejected")
	}
	if _, ok := FirstPrice("999,999,999원"); ok {
		t.Error("Expected 999,999,999 to be rejected")
	}
	if got, ok := FirstPrice("4,500원 (10개)"); !ok || got != 4500 {
		t.Errorf("Expected 4500, got %d", got)
	}
}

func TestExtractListings(t *testing.T) {
	html := `<div>
		<div class="item"><a href="/p/1"><span class="name">손 선풍기 A</span></a><span class="price">4,500원</span></div>
		<div class="item"><span class="name">가격 없음</span><span class="price">문의</span></div>
		<div class="item"><a href="/p/2">손 선풍기 B 5,200원</a></div>
		<div class="item"><span class="name">C</span><span class="price">6,000</span></div>
		<div class="item"><span class="name">D</span><span class="price">7,000</span></div>
	</div>`

	listings, err := ExtractListings(html, testRules, 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(listings) != 3 {
		t.Fatalf("Expected 3 listings, got %d", len(listings))
	}
	if listings[0].Name != "손 선풍기 A" || listings[0].Price != 4500 || listings[0].URL != "/p/1" {
		t.Errorf("Unexpected first listing %+v", listings[0])
	}
	if listings[1].Price != 5200 {
		t.Errorf("Expected won-text fallback price 5200, got %d", listings[1].Price)
	}
}

func TestExtractListingsFallbackLinks(t *testing.T) {
	html := `<table><tr><td><a href="https://wholesale.example/item/9">미니 가습기 8,800원</a></td></tr></table>`

	listings, err := ExtractListings(html, testRules, 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(listings) != 1 || listings[0].Price != 8800 {
		t.Fatalf("Expected one fallback listing at 8800, got %+v", listings)
	}
}

func TestResolveURL(t *testing.T) {
	if got := ResolveURL("https://wholesale.example/list/", "/p/1"); got != "https://wholesale.example/p/1" {
		t.Errorf("Expected absolute url, got %q", got)
	}
	if got := ResolveURL("https://a.example", "https://b.example/x"); got != "https://b.example/x" {
		t.Errorf("Expected absolute href to be kept, got %q", got)
	}
}

func TestSiteSearchBlocked(t *testing.T) {
	page := &fakePage{html: "<body>비정상적인 접근이 감지되었습니다</body>"}
	site := NewSite(testRules, page, Credentials{}, 3, newTestLogger())

	_, err := site.Search(context.Background(), "선풍기")
	if !errors.Is(err, apiclient.ErrSourceBlocked) {
		t.Errorf("Expected ErrSourceBlocked, got %v", err)
	}
}

func TestSiteSearchClosesPopups(t *testing.T) {
	page := &fakePage{
		html:    `<div class="item"><span class="name">A</span><span class="price">1,000</span></div>`,
		visible: map[string]bool{".layer-close": true},
	}
	site := NewSite(testRules, page, Credentials{}, 3, newTestLogger())

	listings, err := site.Search(context.Background(), "선풍기")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(listings) != 1 {
		t.Errorf("Expected 1 listing, got %d", len(listings))
	}
	if len(page.clicked) != 1 || page.clicked[0] != ".layer-close" {
		t.Errorf("Expected popup close click, got %v", page.clicked)
	}
}

func TestClosePopupsSkipsHiddenButtons(t *testing.T) {
	page := &fakePage{visible: map[string]bool{".modal-close": true, ".close": false}}

	ClosePopups(context.Background(), page)

	if len(page.clicked) != 1 || page.clicked[0] != ".modal-close" {
		t.Errorf("Expected only the rendered close button to be clicked, got %v", page.clicked)
	}
}

func TestSiteLogin(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		site := NewSite(testRules, &fakePage{}, Credentials{}, 3, newTestLogger())
		if err := site.Login(context.Background()); !errors.Is(err, apiclient.ErrConfigMissing) {
			t.Errorf("Expected ErrConfigMissing, got %v", err)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		page := &fakePage{body: "비밀번호가 일치하지 않습니다"}
		site := NewSite(testRules, page, Credentials{ID: "u", Password: "p"}, 3, newTestLogger())
		if err := site.Login(context.Background()); !errors.Is(err, apiclient.ErrAuthRejected) {
			t.Errorf("Expected ErrAuthRejected, got %v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		page := &fakePage{body: "환영합니다"}
		site := NewSite(testRules, page, Credentials{ID: "u", Password: "p"}, 3, newTestLogger())
		if err := site.Login(context.Background()); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if page.filled["#id"] != "u" || page.filled["#pw"] != "p" {
			t.Errorf("Expected credentials to be filled, got %v", page.filled)
		}
	})
}
