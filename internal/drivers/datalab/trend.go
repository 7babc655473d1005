package datalab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/navid-fn/sourcing-radar/configs"
	"github.com/navid-fn/sourcing-radar/internal/apiclient"
	"github.com/navid-fn/sourcing-radar/internal/crawler"
	"github.com/navid-fn/sourcing-radar/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	TrendBaseURL = "https://openapi.naver.com"
	TrendPath    = "/v1/datalab/search"
	TrendSource  = "datalab-trend"

	// MaxKeywordsPerRequest is the API's keyword-group limit.
	MaxKeywordsPerRequest = 5
)

type keywordGroup struct {
	GroupName string   `json:"groupName"`
	Keywords  []string `json:"keywords"`
}

type trendRequest struct {
	StartDate     string         `json:"startDate"`
	EndDate       string         `json:"endDate"`
	TimeUnit      string         `json:"timeUnit"`
	KeywordGroups []keywordGroup `json:"keywordGroups"`
}

type trendResponse struct {
	Results []struct {
		Title string `json:"title"`
		Data  []struct {
			Period string  `json:"period"`
			Ratio  float64 `json:"ratio"`
		} `json:"data"`
	} `json:"results"`
}

// TrendClient fetches monthly search-interest series.
type TrendClient struct {
	api       *apiclient.Client
	pacing    *crawler.HTTPConfig
	startDate string
	logger    *logrus.Logger
	now       func() time.Time
}

func NewTrendClient(cfg configs.DataLabConfig, pacing *crawler.HTTPConfig, logger *logrus.Logger) *TrendClient {
	baseURL := TrendBaseURL
	var timeout time.Duration
	if pacing != nil {
		if pacing.BaseURL != "" {
			baseURL = pacing.BaseURL
		}
		timeout = pacing.RequestTimeout
	}

	api := apiclient.NewClient(TrendSource, baseURL, apiclient.ClientKeySigner{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	}, timeout)

	startDate := cfg.TrendStartDate
	if startDate == "" {
		startDate = "2023-01-01"
	}
	return &TrendClient{api: api, pacing: pacing, startDate: startDate, logger: logger, now: time.Now}
}

// MonthlySeries returns one series per keyword, keyed by keyword. At most
// MaxKeywordsPerRequest keywords are accepted per call.
func (c *TrendClient) MonthlySeries(ctx context.Context, keywords []string) (map[string][]models.TrendPoint, error) {
	if len(keywords) == 0 {
		return map[string][]models.TrendPoint{}, nil
	}
	if len(keywords) > MaxKeywordsPerRequest {
		return nil, fmt.Errorf("at most %d keywords per request, got %d", MaxKeywordsPerRequest, len(keywords))
	}
	if err := c.pacing.Wait(ctx); err != nil {
		return nil, err
	}

	groups := make([]keywordGroup, 0, len(keywords))
	for _, kw := range keywords {
		groups = append(groups, keywordGroup{GroupName: kw, Keywords: []string{kw}})
	}
	body, err := json.Marshal(trendRequest{
		StartDate:     c.startDate,
		EndDate:       c.now().Format("2006-01-02"),
		TimeUnit:      "month",
		KeywordGroups: groups,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.api.Do(ctx, apiclient.Request{
		Method:      http.MethodPost,
		Path:        TrendPath,
		Body:        body,
		ContentType: "application/json",
	})
	if err != nil {
		return nil, err
	}

	var payload trendResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, apiclient.ParseError(TrendSource, resp.Body, fmt.Errorf("failed to unmarshal: %w", err))
	}

	series := make(map[string][]models.TrendPoint, len(payload.Results))
	for _, result := range payload.Results {
		points := make([]models.TrendPoint, 0, len(result.Data))
		for _, d := range result.Data {
			period, err := time.Parse("2006-01-02", d.Period)
			if err != nil {
				c.logger.Warnf("[%s] Skipping bad period %q for %s", TrendSource, d.Period, result.Title)
				continue
			}
			points = append(points, models.TrendPoint{Period: period, Ratio: d.Ratio})
		}
		series[result.Title] = points
	}
	return series, nil
}
