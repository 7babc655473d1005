// Package searchad reads monthly search volume from the ad-platform keyword tool.
package searchad

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/navid-fn/sourcing-radar/configs"
	"github.com/navid-fn/sourcing-radar/internal/apiclient"
	"github.com/navid-fn/sourcing-radar/internal/crawler"
	"github.com/sirupsen/logrus"
)

const (
	BaseURL      = "https://api.searchad.naver.com"
	KeywordsPath = "/keywordstool"
	SourceName   = "searchad"

	// lowVolumeValue stands in for the "<10" bucket.
	lowVolumeValue = 5
)

type keywordToolResponse struct {
	KeywordList []keywordEntry `json:"keywordList"`
}

type keywordEntry struct {
	RelKeyword         string      `json:"relKeyword"`
	MonthlyPcQcCnt     volumeCount `json:"monthlyPcQcCnt"`
	MonthlyMobileQcCnt volumeCount `json:"monthlyMobileQcCnt"`
}

// volumeCount accepts numbers, "1,234" and "<10".
type volumeCount int

func (v *volumeCount) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*v = volumeCount(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	*v = volumeCount(parseVolume(s))
	return nil
}

func parseVolume(s string) int {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if strings.HasPrefix(s, "<") {
		return lowVolumeValue
	}
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0
	}
	return n
}

// Client looks up monthly search volume (PC + mobile) for one keyword.
type Client struct {
	api    *apiclient.Client
	pacing *crawler.HTTPConfig
	logger *logrus.Logger
}

func NewClient(cfg configs.SearchAdConfig, pacing *crawler.HTTPConfig, logger *logrus.Logger) *Client {
	baseURL := BaseURL
	var timeout time.Duration
	if pacing != nil {
		if pacing.BaseURL != "" {
			baseURL = pacing.BaseURL
		}
		timeout = pacing.RequestTimeout
	}

	api := apiclient.NewClient(SourceName, baseURL, apiclient.AdPlatformSigner{
		CustomerID:    cfg.CustomerID,
		AccessLicense: cfg.AccessLicense,
		SecretKey:     cfg.SecretKey,
	}, timeout)
	api.Header.Set("Content-Type", "application/json; charset=UTF-8")

	return &Client{api: api, pacing: pacing, logger: logger}
}

// MonthlyVolume returns PC + mobile monthly searches. The entry whose
// relKeyword equals keyword (ignoring spaces) is preferred; otherwise the
// first related entry is used.
func (c *Client) MonthlyVolume(ctx context.Context, keyword string) (int, error) {
	if err := c.pacing.Wait(ctx); err != nil {
		return 0, err
	}

	query := url.Values{}
	query.Set("hintKeywords", strings.ReplaceAll(keyword, " ", ""))
	query.Set("showDetail", "1")

	resp, err := c.api.Call(ctx, http.MethodGet, KeywordsPath, query)
	if err != nil {
		if apiclient.KindOf(err) == apiclient.KindAuthRejected {
			c.logger.Errorf("[%s] Rejected credentials or signature for %q: %v", SourceName, keyword, err)
		}
		return 0, err
	}

	var payload keywordToolResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return 0, apiclient.ParseError(SourceName, resp.Body, fmt.Errorf("failed to unmarshal: %w", err))
	}
	if len(payload.KeywordList) == 0 {
		return 0, apiclient.ParseError(SourceName, resp.Body, fmt.Errorf("no keyword entries for %q", keyword))
	}

	target := compact(keyword)
	entry := payload.KeywordList[0]
	for _, candidate := range payload.KeywordList {
		if compact(candidate.RelKeyword) == target {
			entry = candidate
			break
		}
	}
	return int(entry.MonthlyPcQcCnt) + int(entry.MonthlyMobileQcCnt), nil
}

func compact(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
