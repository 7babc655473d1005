// Package datalab talks to the two DataLab surfaces: the shopping-insight
// keyword ranking (trend source) and the search-trend API (seasonal series).
package datalab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/navid-fn/sourcing-radar/internal/apiclient"
	"github.com/navid-fn/sourcing-radar/internal/crawler"
	"github.com/sirupsen/logrus"
)

const (
	InsightBaseURL = "https://datalab.naver.com"
	RankPath       = "/shoppingInsight/getCategoryKeywordRank.naver"
	insightReferer = "https://datalab.naver.com/shoppingInsight/sCategory.naver"
	InsightSource  = "datalab-insight"

	rankWindow = 7 * 24 * time.Hour
)

// RankedKeyword is one row of a category ranking page.
type RankedKeyword struct {
	Keyword    string
	Rank       int
	RankChange string
}

type rankResponse struct {
	Ranks []rankEntry `json:"ranks"`
}

type rankEntry struct {
	Keyword    string          `json:"keyword"`
	Rank       json.Number     `json:"rank"`
	RankChange json.RawMessage `json:"rankChange"`
	Change     json.RawMessage `json:"change"`
}

// InsightClient pages through category keyword rankings.
type InsightClient struct {
	api    *apiclient.Client
	pacing *crawler.HTTPConfig
	logger *logrus.Logger
	now    func() time.Time
}

func NewInsightClient(pacing *crawler.HTTPConfig, logger *logrus.Logger) *InsightClient {
	baseURL := InsightBaseURL
	var timeout time.Duration
	if pacing != nil {
		if pacing.BaseURL != "" {
			baseURL = pacing.BaseURL
		}
		timeout = pacing.RequestTimeout
	}

	api := apiclient.NewClient(InsightSource, baseURL, nil, timeout)
	api.Header.Set("User-Agent", crawler.UserAgent)
	api.Header.Set("Referer", insightReferer)
	api.Header.Set("Accept-Language", crawler.AcceptLanguage)

	return &InsightClient{api: api, pacing: pacing, logger: logger, now: time.Now}
}

// FetchPage returns one ranking page for category cid over the last seven days.
func (c *InsightClient) FetchPage(ctx context.Context, cid string, page, count int) ([]RankedKeyword, error) {
	if err := c.pacing.Wait(ctx); err != nil {
		return nil, err
	}

	end := c.now()
	start := end.Add(-rankWindow)
	form := url.Values{}
	form.Set("cid", cid)
	form.Set("timeUnit", "date")
	form.Set("startDate", start.Format("2006-01-02"))
	form.Set("endDate", end.Format("2006-01-02"))
	form.Set("page", strconv.Itoa(page))
	form.Set("count", strconv.Itoa(count))

	resp, err := c.api.Do(ctx, apiclient.Request{
		Method:      http.MethodPost,
		Path:        RankPath,
		Body:        []byte(form.Encode()),
		ContentType: "application/x-www-form-urlencoded; charset=UTF-8",
	})
	if err != nil {
		return nil, err
	}

	var payload rankResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, apiclient.ParseError(InsightSource, resp.Body, fmt.Errorf("failed to unmarshal: %w", err))
	}

	ranked := make([]RankedKeyword, 0, len(payload.Ranks))
	for i, entry := range payload.Ranks {
		rank, err := entry.Rank.Int64()
		if err != nil || rank <= 0 {
			rank = int64((page-1)*count + i + 1)
		}
		change := rawText(entry.RankChange)
		if change == "" {
			change = rawText(entry.Change)
		}
		ranked = append(ranked, RankedKeyword{
			Keyword:    entry.Keyword,
			Rank:       int(rank),
			RankChange: change,
		})
	}
	return ranked, nil
}

// rawText renders a JSON scalar (string or number) as plain text.
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
