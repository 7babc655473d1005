package ownerclan

import (
	"testing"

	"github.com/navid-fn/sourcing-radar/internal/scraper"
)

func TestSearchURL(t *testing.T) {
	want := "https://www.ownerclan.com/V2/product/search.php?searchKeyword=%EC%86%90+%EC%84%A0%ED%92%8D%EA%B8%B0"
	if got := SearchURL("손 선풍기"); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestRulesParseProductGrid(t *testing.T) {
	html := `<ul>
		<li class="prd-item">
			<a href="/V2/product/view.php?selfcode=W1"><p class="prd-name">미니 가습기 USB</p></a>
			<div class="price"><em>6,200</em>원</div>
		</li>
	</ul>`

	listings, err := scraper.ExtractListings(html, Rules, 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(listings) == 0 {
		t.Fatal("Expected at least one listing")
	}
	if listings[0].Name != "미니 가습기 USB" || listings[0].Price != 6200 {
		t.Errorf("Unexpected listing %+v", listings[0])
	}
	if listings[0].URL != "/V2/product/view.php?selfcode=W1" {
		t.Errorf("Unexpected url %s", listings[0].URL)
	}
}
