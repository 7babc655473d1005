package apiclient

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Signer attaches authentication headers to an outgoing request.
// rawQuery is the exact encoded query string that will be sent.
type Signer interface {
	Sign(header http.Header, method, path, rawQuery string, now time.Time) error
}

// MarketplaceSigner implements the CEA HMAC scheme: the signature covers
// signed-date + method + path + query and travels in Authorization.
type MarketplaceSigner struct {
	AccessKey string
	SecretKey string
}

const marketplaceDateLayout = "060102T150405Z"

func (s MarketplaceSigner) Sign(header http.Header, method, path, rawQuery string, now time.Time) error {
	if s.AccessKey == "" || s.SecretKey == "" {
		return ConfigError("marketplace", "access/secret key")
	}
	signedDate := now.UTC().Format(marketplaceDateLayout)
	message := signedDate + method + path + rawQuery

	mac := hmac.New(sha256.New, []byte(s.SecretKey))
	mac.Write([]byte(message))
	signature := hex.EncodeToString(mac.Sum(nil))

	header.Set("Authorization", fmt.Sprintf(
		"CEA algorithm=HmacSHA256, access-key=%s, signed-date=%s, signature=%s",
		s.AccessKey, signedDate, signature,
	))
	return nil
}

// AdPlatformSigner implements the timestamped search-ad scheme:
// base64(HMAC-SHA256(secret, ts.method.path)).
type AdPlatformSigner struct {
	CustomerID    string
	AccessLicense string
	SecretKey     string
}

func (s AdPlatformSigner) Sign(header http.Header, method, path, _ string, now time.Time) error {
	if s.CustomerID == "" || s.AccessLicense == "" || s.SecretKey == "" {
		return ConfigError("ad-platform", "customer id/license/secret")
	}
	timestamp := strconv.FormatInt(now.UnixMilli(), 10)
	message := timestamp + "." + method + "." + path

	mac := hmac.New(sha256.New, SecretBytes(s.SecretKey))
	mac.Write([]byte(message))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	header.Set("X-Timestamp", timestamp)
	header.Set("X-API-KEY", s.AccessLicense)
	header.Set("X-Customer", s.CustomerID)
	header.Set("X-Signature", signature)
	return nil
}

// SecretBytes hex-decodes a 64-character hex secret, otherwise returns the raw bytes.
func SecretBytes(secret string) []byte {
	if len(secret) == 64 {
		if decoded, err := hex.DecodeString(secret); err == nil {
			return decoded
		}
	}
	return []byte(secret)
}

// ClientKeySigner sends a static client id/secret pair as headers.
type ClientKeySigner struct {
	ClientID     string
	ClientSecret string
}

func (s ClientKeySigner) Sign(header http.Header, _, _, _ string, _ time.Time) error {
	if s.ClientID == "" || s.ClientSecret == "" {
		return ConfigError("client-key", "client id/secret")
	}
	header.Set("X-Naver-Client-Id", s.ClientID)
	header.Set("X-Naver-Client-Secret", s.ClientSecret)
	return nil
}

// NoSigner is used for public endpoints.
type NoSigner struct{}

func (NoSigner) Sign(http.Header, string, string, string, time.Time) error { return nil }
