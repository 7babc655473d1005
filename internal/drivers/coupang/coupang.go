// Package coupang is the marketplace driver: signed product search and the
// browser-based fallback that counts fast-delivery listings on the search page.
package coupang

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/navid-fn/sourcing-radar/configs"
	"github.com/navid-fn/sourcing-radar/internal/apiclient"
	"github.com/navid-fn/sourcing-radar/internal/crawler"
	"github.com/navid-fn/sourcing-radar/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	BaseURL    = "https://api-gateway.coupang.com"
	SearchPath = "/v2/providers/affiliate_open_api/apis/openapi/v1/products/search"
	SourceName = "coupang"
)

// PriceRange optionally narrows a search. Zero bounds are omitted.
type PriceRange struct {
	Min int
	Max int
}

// Client searches the marketplace product API.
type Client struct {
	api    *apiclient.Client
	pacing *crawler.HTTPConfig
	subID  string
	logger *logrus.Logger
}

// NewClient wires the marketplace signer. pacing is shared by every caller
// of this client so concurrent workers respect one request interval.
func NewClient(cfg configs.CoupangConfig, pacing *crawler.HTTPConfig, logger *logrus.Logger) *Client {
	baseURL := BaseURL
	var timeout time.Duration
	if pacing != nil {
		if pacing.BaseURL != "" {
			baseURL = pacing.BaseURL
		}
		timeout = pacing.RequestTimeout
	}

	api := apiclient.NewClient(SourceName, baseURL, apiclient.MarketplaceSigner{
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
	}, timeout)
	api.Header.Set("Content-Type", "application/json;charset=UTF-8")
	api.Check = checkResultCode

	subID := cfg.SubID
	if subID == "" {
		subID = "coupang_gross"
	}
	return &Client{api: api, pacing: pacing, subID: subID, logger: logger}
}

// Search performs one signed search call and returns normalized products.
func (c *Client) Search(ctx context.Context, keyword string, limit int, priceRange *PriceRange) ([]models.RawProduct, error) {
	if err := c.pacing.Wait(ctx); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("keyword", keyword)
	query.Set("limit", strconv.Itoa(limit))
	query.Set("subId", c.subID)
	if priceRange != nil {
		if priceRange.Min > 0 {
			query.Set("minPrice", strconv.Itoa(priceRange.Min))
		}
		if priceRange.Max > 0 {
			query.Set("maxPrice", strconv.Itoa(priceRange.Max))
		}
	}

	resp, err := c.api.Call(ctx, http.MethodGet, SearchPath, query)
	if err != nil {
		return nil, err
	}

	var envelope searchResponse
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, apiclient.ParseError(SourceName, resp.Body, fmt.Errorf("failed to unmarshal: %w", err))
	}

	products, err := parseProducts(envelope.Data)
	if err != nil {
		return nil, apiclient.ParseError(SourceName, resp.Body, fmt.Errorf("failed to decode products: %w", err))
	}

	c.logger.Debugf("[%s] %s: %d products", SourceName, keyword, len(products))
	return products, nil
}

// checkResultCode rejects 2xx payloads whose rCode signals failure:
// "ERROR", "400" or any numeric code of 400 and above.
func checkResultCode(body []byte) error {
	var envelope searchResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return apiclient.ParseError(SourceName, body, fmt.Errorf("failed to unmarshal: %w", err))
	}
	if len(envelope.RCode) == 0 {
		return nil
	}

	code := strings.Trim(string(envelope.RCode), `"`)
	if strings.EqualFold(code, "ERROR") {
		return apiclient.NewError(apiclient.KindRequestRejected, SourceName, http.StatusOK, body,
			fmt.Errorf("rCode ERROR: %s", envelope.RMessage))
	}

	n, err := strconv.Atoi(code)
	if err != nil || n < 400 {
		return nil
	}

	kind := apiclient.KindRequestRejected
	switch {
	case n == 401 || n == 403:
		kind = apiclient.KindAuthRejected
	case n >= 500:
		kind = apiclient.KindTransientNetwork
	}
	return apiclient.NewError(kind, SourceName, http.StatusOK, body, fmt.Errorf("rCode %d: %s", n, envelope.RMessage))
}
