package coupang

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/navid-fn/sourcing-radar/internal/models"
)

// fastDeliveryMarker appears in titles of expedited-fulfillment listings.
const fastDeliveryMarker = "로켓"

// searchResponse is the envelope of the product search endpoint.
type searchResponse struct {
	RCode    json.RawMessage `json:"rCode"`
	RMessage string          `json:"rMessage"`
	Data     json.RawMessage `json:"data"`
}

// searchData lists every container key the endpoint has been seen to use.
type searchData struct {
	ProductData []productItem `json:"productData"`
	Products    []productItem `json:"products"`
	ProductList []productItem `json:"productList"`
	Items       []productItem `json:"items"`
	Results     []productItem `json:"results"`
}

func (d searchData) items() []productItem {
	for _, list := range [][]productItem{d.ProductData, d.Products, d.ProductList, d.Items, d.Results} {
		if len(list) > 0 {
			return list
		}
	}
	return nil
}

// productItem carries all known field spellings; normalize picks one.
type productItem struct {
	ProductID     flexString `json:"productId"`
	ProductIDAlt  flexString `json:"product_id"`
	ItemID        flexString `json:"itemId"`
	ID            flexString `json:"id"`
	ProductName   string     `json:"productName"`
	Name          string     `json:"name"`
	ProductPrice  flexNumber `json:"productPrice"`
	Price         flexNumber `json:"price"`
	SalePrice     flexNumber `json:"salePrice"`
	PriceAlt      flexNumber `json:"product_price"`
	ProductURL    string     `json:"productUrl"`
	ProductURLAlt string     `json:"product_url"`
	Link          string     `json:"link"`
	IsRocket      flexBool   `json:"isRocket"`
	Rocket        flexBool   `json:"rocket"`
	IsRocketDeliv flexBool   `json:"isRocketDelivery"`
	ReviewCount   flexNumber `json:"reviewCount"`
	RatingCount   flexNumber `json:"ratingCount"`
}

// normalize maps one vendor item to the internal product shape.
func normalize(item productItem) models.RawProduct {
	product := models.RawProduct{
		Name: firstNonEmpty(item.ProductName, item.Name),
		URL:  firstNonEmpty(item.ProductURL, item.ProductURLAlt, item.Link),
	}

	product.ID = firstNonEmpty(string(item.ProductID), string(item.ProductIDAlt), string(item.ItemID), string(item.ID))
	if product.ID == "" {
		product.ID = urlIdentity(product.URL)
	}

	for _, price := range []flexNumber{item.ProductPrice, item.Price, item.SalePrice, item.PriceAlt} {
		if price.Valid {
			product.Price = int(price.Value)
			product.HasPrice = true
			break
		}
	}

	product.FastDelivery = bool(item.IsRocket) || bool(item.Rocket) || bool(item.IsRocketDeliv) ||
		strings.Contains(product.Name, fastDeliveryMarker)

	if item.ReviewCount.Valid {
		product.Reviews = int(item.ReviewCount.Value)
	} else if item.RatingCount.Valid {
		product.Reviews = int(item.RatingCount.Value)
	}
	return product
}

// parseProducts decodes data as either a container object or a bare list.
func parseProducts(data json.RawMessage) ([]models.RawProduct, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	var items []productItem
	if data[0] == '[' {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
	} else {
		var container searchData
		if err := json.Unmarshal(data, &container); err != nil {
			return nil, err
		}
		items = container.items()
	}

	products := make([]models.RawProduct, 0, len(items))
	for _, item := range items {
		products = append(products, normalize(item))
	}
	return products, nil
}

// urlIdentity derives a stable key from a product link: a known id query
// parameter if present, otherwise the last path segment.
func urlIdentity(raw string) string {
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return strings.TrimRight(raw, "/")
	}
	query := parsed.Query()
	for _, key := range []string{"itemId", "productId", "vendorItemId", "pageKey"} {
		if v := query.Get(key); v != "" {
			return key + ":" + v
		}
	}
	segments := strings.Split(strings.TrimRight(parsed.Path, "/"), "/")
	if tail := segments[len(segments)-1]; tail != "" {
		return tail
	}
	return raw
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// flexString accepts JSON strings and numbers.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexNumber accepts numbers and numeric strings such as "12,900".
type flexNumber struct {
	Value float64
	Valid bool
}

func (f *flexNumber) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		f.Value, f.Valid = n, true
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	if v, ok := ParseNumber(s); ok {
		f.Value, f.Valid = v, true
	}
	return nil
}

// flexBool accepts booleans, "true"/"Y" strings and non-zero numbers.
type flexBool bool

func (f *flexBool) UnmarshalJSON(b []byte) error {
	var v bool
	if err := json.Unmarshal(b, &v); err == nil {
		*f = flexBool(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		s = strings.ToLower(strings.TrimSpace(s))
		*f = flexBool(s == "true" || s == "y" || s == "yes" || s == "1")
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexBool(n != 0)
	}
	return nil
}

// ParseNumber reads a price-like string, ignoring commas and currency text.
func ParseNumber(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
