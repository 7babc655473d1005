package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/navid-fn/sourcing-radar/internal/models"
	"github.com/navid-fn/sourcing-radar/internal/report"
	dbmodels "github.com/navid-fn/sourcing-radar/internal/storage/models"
	"github.com/navid-fn/sourcing-radar/server/internal/handler"
	"github.com/navid-fn/sourcing-radar/server/internal/service"
	"github.com/sirupsen/logrus"
)

type fakeStore struct {
	decisions []dbmodels.Decision
	products  map[string]dbmodels.Product
	seasonal  []dbmodels.SeasonalPattern
	err       error

	lastLimit    int
	lastKeywords []string
}

func (s *fakeStore) UpsertProducts(context.Context, []*dbmodels.Product) error { return nil }
func (s *fakeStore) AppendMarketData(context.Context, []*dbmodels.MarketData) error { return nil }
func (s *fakeStore) SaveDecisions(context.Context, []*dbmodels.Decision) error { return nil }
func (s *fakeStore) SaveSeasonal(context.Context, []*dbmodels.SeasonalPattern) error { return nil }
func (s *fakeStore) Close() error { return nil }
func (s *fakeStore) SeasonalPatterns(context.Context) ([]dbmodels.SeasonalPattern, error) {
	return s.seasonal, s.err
}

func (s *fakeStore) LatestDecisions(_ context.Context, limit int) ([]dbmodels.Decision, error) {
	s.lastLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.decisions[:min(limit, len(s.decisions))], nil
}

func (s *fakeStore) LatestByKeywords(_ context.Context, keywords []string) ([]dbmodels.Product, error) {
	s.lastKeywords = keywords
	var out []dbmodels.Product
	for _, kw := range keywords {
		if p, ok := s.products[kw]; ok {
			out = append(out, p)
		}
	}
	return out, s.err
}

func newTestRouter(store *fakeStore, loginPath string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := service.NewSourcingService(store, loginPath)
	return NewRouter(&Config{SourcingHandler: handler.NewSourcingHandler(svc, logger)})
}

func get(r *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestLatestDecisions(t *testing.T) {
	store := &fakeStore{decisions: []dbmodels.Decision{
		{Keyword: "손 선풍기", NetProfit: 9300, NetMarginRatio: 0.31},
		{Keyword: "텀블러", NetProfit: 5000, NetMarginRatio: 0.2},
	}}
	r := newTestRouter(store, "")

	tests := []struct {
		name          string
		target        string
		expectedCode  int
		expectedLimit int
		expectedRows  int
	}{
		{"default limit", "/v1/decisions/latest", http.StatusOK, service.DefaultDecisionLimit, 2},
		{"explicit limit", "/v1/decisions/latest?limit=1", http.StatusOK, 1, 1},
		{"capped limit", "/v1/decisions/latest?limit=5000", http.StatusOK, service.MaxDecisionLimit, 2},
		{"invalid limit", "/v1/decisions/latest?limit=abc", http.StatusBadRequest, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store.lastLimit = 0
			w := get(r, tt.target)
			if w.Code != tt.expectedCode {
				t.Fatalf("Expected status %d, got %d", tt.expectedCode, w.Code)
			}
			if tt.expectedCode != http.StatusOK {
				return
			}
			if store.lastLimit != tt.expectedLimit {
				t.Errorf("Expected limit %d, got %d", tt.expectedLimit, store.lastLimit)
			}
			var rows []dbmodels.Decision
			if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
				t.Fatal(err)
			}
			if len(rows) != tt.expectedRows {
				t.Errorf("Expected %d rows, got %d", tt.expectedRows, len(rows))
			}
		})
	}
}

func TestKeywords(t *testing.T) {
	store := &fakeStore{products: map[string]dbmodels.Product{
		"손 선풍기": {Keyword: "손 선풍기", Grade: "S"},
	}}
	r := newTestRouter(store, "")

	w := get(r, "/v1/keywords?keywords=%EC%86%90%20%EC%84%A0%ED%92%8D%EA%B8%B0,%20,unknown")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if len(store.lastKeywords) != 2 || store.lastKeywords[0] != "손 선풍기" {
		t.Errorf("Expected blank keywords dropped, got %v", store.lastKeywords)
	}
	var rows []dbmodels.Product
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Grade != "S" {
		t.Errorf("Expected one S-grade product, got %+v", rows)
	}

	if w := get(r, "/v1/keywords"); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without keywords, got %d", w.Code)
	}
}

func TestStoreFailureIsInternalError(t *testing.T) {
	r := newTestRouter(&fakeStore{err: errors.New("connection refused")}, "")

	for _, target := range []string{"/v1/decisions/latest", "/v1/seasonal", "/v1/keywords?keywords=a"} {
		if w := get(r, target); w.Code != http.StatusInternalServerError {
			t.Errorf("%s: expected 500, got %d", target, w.Code)
		}
	}
}

func TestLoginStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), report.LoginStatusFile)
	r := newTestRouter(&fakeStore{}, path)

	if w := get(r, "/v1/login-status"); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 before the first check, got %d", w.Code)
	}

	status := models.LoginStatus{
		Sources:   map[models.WholesaleSource]bool{models.SourceDomeggook: true, models.SourceOwnerclan: false},
		CheckedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	if err := report.WriteLoginStatus(path, status); err != nil {
		t.Fatal(err)
	}

	w := get(r, "/v1/login-status")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["domeggook"] != true || body["ownerclan"] != false || body["timestamp"] != "2026-03-01T09:00:00Z" {
		t.Errorf("Unexpected login status body %v", body)
	}
}
