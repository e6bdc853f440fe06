// Package geocode is a thin client for the Nominatim search API used to pin
// property addresses on the map.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Place is one Nominatim search hit.  Only the fields the map UI reads are
// decoded; lat/lon stay strings as Nominatim sends them.
type Place struct {
	PlaceID     int64             `json:"place_id"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	DisplayName string            `json:"display_name"`
	Class       string            `json:"class,omitempty"`
	Type        string            `json:"type,omitempty"`
	Importance  float64           `json:"importance,omitempty"`
	BoundingBox []string          `json:"boundingbox,omitempty"`
	Address     map[string]string `json:"address,omitempty"`
}

// UpstreamError describes a failed call to the geocoding service.  Message
// is safe to show to users.
type UpstreamError struct {
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ErrNoResults is returned when neither the query nor its broadened
// variants matched anything.
var ErrNoResults = errors.New("no results")

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Country   string // appended to queries that do not mention it
	Capital   string // also counts as "mentions the country"
	UserAgent string
}

// Client queries Nominatim with a fixed timeout.  It never retries except
// for the broadened fallback queries.
type Client struct {
	opts Options
	http *http.Client
	log  logrus.FieldLogger
}

func NewClient(opts Options, log logrus.FieldLogger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "RentConnect/1.0"
	}
	return &Client{
		opts: opts,
		http: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy: nil,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		log: log,
	}
}

// Contextualize appends the configured country unless the query already
// names the country or its capital (case-insensitive).
func (c *Client) Contextualize(q string) string {
	if c.opts.Country == "" {
		return q
	}
	lower := strings.ToLower(q)
	if strings.Contains(lower, strings.ToLower(c.opts.Country)) ||
		(c.opts.Capital != "" && strings.Contains(lower, strings.ToLower(c.opts.Capital))) {
		return q
	}
	return q + ", " + c.opts.Country
}

// fallbacks are tried in order when the primary search is empty.
func (c *Client) fallbacks(q string) []string {
	if c.opts.Country == "" {
		return nil
	}
	var out []string
	if c.opts.Capital != "" {
		out = append(out, fmt.Sprintf("%s, Metro %s, %s", q, c.opts.Capital, c.opts.Country))
	}
	return append(out, q+", "+c.opts.Country)
}

// Search resolves q to at most five places.  q must already be trimmed and
// non-empty.  Failures of the primary request are returned as
// *UpstreamError; an empty outcome yields ErrNoResults.
func (c *Client) Search(ctx context.Context, q string) ([]Place, error) {
	query := c.Contextualize(q)
	l := c.log.WithFields(logrus.Fields{"query": q, "search": query})

	places, err := c.fetch(ctx, query, true, 5)
	if err != nil {
		l.WithError(err).Warn("geocode: request failed")
		return nil, err
	}
	if len(places) == 0 {
		for _, alt := range c.fallbacks(q) {
			l.WithField("alternate", alt).Debug("geocode: trying alternate")
			// Fallback failures only mean "no better answer".
			more, ferr := c.fetch(ctx, alt, false, 3)
			if ferr == nil && len(more) > 0 {
				places = more
				break
			}
		}
	}
	if len(places) == 0 {
		l.Info("geocode: no results")
		return nil, ErrNoResults
	}
	l.WithFields(logrus.Fields{"results": len(places), "top": places[0].DisplayName}).Info("geocode: ok")
	return places, nil
}

func (c *Client) fetch(ctx context.Context, q string, details bool, limit int) ([]Place, error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("format", "json")
	if details {
		params.Set("addressdetails", "1")
	}
	params.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &UpstreamError{Message: "Connection failed", Err: err}
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &UpstreamError{Message: "Connection failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Message: fmt.Sprintf("Service returned error: %d", resp.StatusCode)}
	}
	var places []Place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, &UpstreamError{Message: "Invalid response format", Err: err}
	}
	return places, nil
}
