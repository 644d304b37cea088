// Package arcgis is a minimal client for the describe and query endpoints of an
// ArcGIS REST map or feature service.
package arcgis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/atlasdatatech/geolayer/internal/log"
)

// Defaults applied by NewClient for zero config values.
const (
	DefaultRetryWaitMin = 200 * time.Millisecond
	DefaultRetryWaitMax = 2 * time.Second
	DefaultUserAgent    = "geolayer"
)

// ClientConfig tunes the http transport. RetryMax of 0 issues every request once.
type ClientConfig struct {
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	UserAgent    string
	// HTTPClient overrides the underlying client, mostly for tests.
	HTTPClient *http.Client
}

// Client issues describe and query requests. It is safe for concurrent use.
type Client struct {
	http      *retryablehttp.Client
	userAgent string
}

// NewClient returns a Client for cfg.
func NewClient(cfg ClientConfig) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = DefaultRetryWaitMin
	rc.RetryWaitMax = DefaultRetryWaitMax
	if cfg.RetryWaitMin > 0 {
		rc.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		rc.RetryWaitMax = cfg.RetryWaitMax
	}
	if cfg.HTTPClient != nil {
		rc.HTTPClient = cfg.HTTPClient
	}
	rc.Logger = leveledLogger{}

	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &Client{http: rc, userAgent: ua}
}

// Describe issues GET <serviceURL>?f=json.
func (c *Client) Describe(ctx context.Context, serviceURL string) (*Description, error) {
	u, err := endpoint(serviceURL, "", url.Values{"f": {"json"}})
	if err != nil {
		return nil, err
	}

	var d Description
	if err := c.get(ctx, u, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Query issues GET <serviceURL>/query for q and returns the page of results.
func (c *Client) Query(ctx context.Context, serviceURL string, q Query) (*FeatureSet, error) {
	u, err := endpoint(serviceURL, "query", q.values())
	if err != nil {
		return nil, err
	}

	var fs struct {
		FeatureSet
		Features *[]Feature `json:"features"`
	}
	if err := c.get(ctx, u, &fs); err != nil {
		return nil, err
	}
	if fs.Features == nil {
		return nil, ErrMissingFeatures{URL: u}
	}
	fs.FeatureSet.Features = *fs.Features
	return &fs.FeatureSet, nil
}

// get fetches u and decodes the body into v, surfacing the server's error envelope.
func (c *Client) get(ctx context.Context, u string, v interface{}) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	log.Debugf("arcgis: GET %v", u)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("arcgis: reading response from %v: %w", u, err)
	}

	// the server reports most failures with a 200 and an error envelope
	var envelope struct {
		Error *ErrService `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		return *envelope.Error
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ErrStatus{URL: u, StatusCode: resp.StatusCode}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	// keep object ids as exact integers
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("arcgis: decoding response from %v: %w", u, err)
	}
	return nil
}

// leveledLogger routes retryablehttp's logging through the package logger.
type leveledLogger struct{}

func (leveledLogger) Error(msg string, kv ...interface{}) { log.Errorf("arcgis: %v %v", msg, kv) }
func (leveledLogger) Warn(msg string, kv ...interface{})  { log.Warnf("arcgis: %v %v", msg, kv) }
func (leveledLogger) Info(msg string, kv ...interface{})  { log.Debugf("arcgis: %v %v", msg, kv) }
func (leveledLogger) Debug(msg string, kv ...interface{}) { log.Debugf("arcgis: %v %v", msg, kv) }
