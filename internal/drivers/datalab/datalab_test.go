package datalab

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/navid-fn/sourcing-radar/configs"
	"github.com/navid-fn/sourcing-radar/internal/crawler"
	"github.com/sirupsen/logrus"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testPacing(url string) *crawler.HTTPConfig {
	pacing := crawler.DefaultHTTPConfig(url, 0)
	pacing.RequestTimeout = time.Second
	return pacing
}

func TestInsightFetchPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if r.PostForm.Get("cid") != "50000008" || r.PostForm.Get("page") != "2" {
			t.Errorf("Unexpected form %v", r.PostForm)
		}
		if r.PostForm.Get("startDate") != "2026-01-08" || r.PostForm.Get("endDate") != "2026-01-15" {
			t.Errorf("Expected last 7 days, got %s..%s", r.PostForm.Get("startDate"), r.PostForm.Get("endDate"))
		}
		w.Write([]byte(`{"ranks":[
			{"keyword":"물티슈","rank":21,"rankChange":"up"},
			{"keyword":"텀블러","rank":22,"change":3}
		]}`))
	}))
	defer server.Close()

	client := NewInsightClient(testPacing(server.URL), newTestLogger())
	client.now = func() time.Time { return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC) }

	ranked, err := client.FetchPage(context.Background(), "50000008", 2, 20)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("Expected 2 keywords, got %d", len(ranked))
	}
	if ranked[0].Rank != 21 || ranked[0].RankChange != "up" {
		t.Errorf("Unexpected first entry %+v", ranked[0])
	}
	if ranked[1].RankChange != "3" {
		t.Errorf("Expected change fallback '3', got %q", ranked[1].RankChange)
	}
}

func TestTrendMonthlySeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Naver-Client-Id") != "id" {
			t.Error("Expected client id header")
		}
		var req trendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.TimeUnit != "month" || len(req.KeywordGroups) != 2 || req.StartDate != "2023-01-01" {
			t.Errorf("Unexpected request %+v", req)
		}
		w.Write([]byte(`{"results":[
			{"title":"선풍기","data":[{"period":"2025-06-01","ratio":100},{"period":"2025-07-01","ratio":80.5}]},
			{"title":"핫팩","data":[{"period":"bad","ratio":1}]}
		]}`))
	}))
	defer server.Close()

	client := NewTrendClient(configs.DataLabConfig{ClientID: "id", ClientSecret: "secret"}, testPacing(server.URL), newTestLogger())

	series, err := client.MonthlySeries(context.Background(), []string{"선풍기", "핫팩"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(series["선풍기"]) != 2 || series["선풍기"][1].Ratio != 80.5 {
		t.Errorf("Unexpected series %+v", series["선풍기"])
	}
	if len(series["핫팩"]) != 0 {
		t.Errorf("Expected bad periods skipped, got %+v", series["핫팩"])
	}
}

func TestTrendRejectsTooManyKeywords(t *testing.T) {
	client := NewTrendClient(configs.DataLabConfig{ClientID: "id", ClientSecret: "s"}, testPacing("http://unused"), newTestLogger())

	if _, err := client.MonthlySeries(context.Background(), []string{"a", "b", "c", "d", "e", "f"}); err == nil {
		t.Error("Expected error for more than 5 keywords")
	}
}
