// Package overpass queries the OpenStreetMap Overpass API for the
// administrative areas, settlements and schools the catalogue is keyed on.
package overpass

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	uhttp "github.com/shashiranjanraj/uniformhub/pkg/http"
)

// Element is one node, way or relation from an `out tags center` result.
type Element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat,omitempty"`
	Lon    float64           `json:"lon,omitempty"`
	Center *Point            `json:"center,omitempty"`
	Tags   map[string]string `json:"tags"`
}

type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Name prefers the English name when OSM carries one.
func (e Element) Name() string {
	if n := strings.TrimSpace(e.Tags["name:en"]); n != "" {
		return n
	}
	return strings.TrimSpace(e.Tags["name"])
}

// Address joins the addr:* tags into one line.
func (e Element) Address() string {
	street := strings.TrimSpace(strings.Join(nonEmpty(e.Tags["addr:housenumber"], e.Tags["addr:street"]), " "))
	return strings.Join(nonEmpty(street, e.Tags["addr:city"], e.Tags["addr:postcode"]), ", ")
}

func (e Element) Website() string {
	if w := e.Tags["website"]; w != "" {
		return w
	}
	return e.Tags["contact:website"]
}

func nonEmpty(parts ...string) []string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type response struct {
	Elements []Element `json:"elements"`
}

type Client struct {
	endpoint string
	timeout  time.Duration
	attempts int
	wait     time.Duration
}

func New(endpoint string) *Client {
	return &Client{endpoint: endpoint, timeout: 180 * time.Second, attempts: 3, wait: 2 * time.Second}
}

// WithRetry overrides the retry policy; tests use it to avoid sleeping.
func (c *Client) WithRetry(attempts int, wait time.Duration) *Client {
	c.attempts, c.wait = attempts, wait
	return c
}

var countryCode = regexp.MustCompile(`^[A-Z]{2}$`)

// Counties returns the admin_level 6 boundaries inside country (ISO 3166-1
// alpha-2).
func (c *Client) Counties(ctx context.Context, country string) ([]Element, error) {
	country = strings.ToUpper(strings.TrimSpace(country))
	if !countryCode.MatchString(country) {
		return nil, fmt.Errorf("overpass: invalid country code %q", country)
	}
	q := fmt.Sprintf(`[out:json][timeout:120];
area["ISO3166-1"="%s"][admin_level=2]->.country;
rel(area.country)["boundary"="administrative"]["admin_level"="6"];
out tags;`, country)
	return c.Query(ctx, q)
}

// Localities returns city, town and village nodes inside the county
// relation.
func (c *Client) Localities(ctx context.Context, countyOSMID int64) ([]Element, error) {
	q := fmt.Sprintf(`[out:json][timeout:120];
rel(%d);map_to_area->.county;
node(area.county)["place"~"^(city|town|village)$"];
out tags;`, countyOSMID)
	return c.Query(ctx, q)
}

// Schools returns amenity=school features inside the county relation.
func (c *Client) Schools(ctx context.Context, countyOSMID int64) ([]Element, error) {
	q := fmt.Sprintf(`[out:json][timeout:180];
rel(%d);map_to_area->.county;
nwr(area.county)["amenity"="school"];
out tags center;`, countyOSMID)
	return c.Query(ctx, q)
}

// Query runs raw Overpass QL and returns the elements.
func (c *Client) Query(ctx context.Context, ql string) ([]Element, error) {
	var out response
	err := uhttp.Post(c.endpoint).
		WithContext(ctx).
		Form(url.Values{"data": {ql}}).
		Timeout(c.timeout).
		Retry(c.attempts, c.wait).
		DecodeJSON(&out)
	if err != nil {
		return nil, fmt.Errorf("overpass: %w", err)
	}
	return out.Elements, nil
}
