// Package places resolves free-text course locations ("Pebble Beach, CA") to an address and
// coordinates using a Nominatim-compatible search service. Course forms call it before
// saving so the stored location carries lat/lng.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/becketmccurdy/buddiesgolf/internal/models"
)

var (
	ErrEmptyQuery = errors.New("search text is required")
	ErrNoResults  = errors.New("no places matched")
)

const (
	defaultLimit   = 5
	requestTimeout = 10 * time.Second
)

// Place is one search hit.
type Place struct {
	Name     string          `json:"name"`
	Location models.Location `json:"location"`
}

// nominatimResult mirrors the fields we read from /search?format=json.
// Coordinates arrive as strings.
type nominatimResult struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Client is safe for concurrent use.
type Client struct {
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
	calls     *prometheus.CounterVec
}

// NewClient builds a client against baseURL that issues at most perSecond requests per
// second. calls may be nil.
func NewClient(baseURL, userAgent string, perSecond float64, calls *prometheus.CounterVec) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		limiter:   rate.NewLimiter(rate.Limit(perSecond), 1),
		calls:     calls,
	}
}

// Search returns up to limit places for query, best match first.
// A limit of zero or less uses the service default of five.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("place search: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))

	agent := fiber.Get(c.baseURL + "/search?" + params.Encode())
	agent.UserAgent(c.userAgent)
	agent.Timeout(requestTimeout)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		c.observe("error")
		return nil, fmt.Errorf("place search: %w", errors.Join(errs...))
	}
	if code != fiber.StatusOK {
		c.observe("error")
		return nil, fmt.Errorf("place search: unexpected status %d", code)
	}

	var raw []nominatimResult
	if err := json.Unmarshal(body, &raw); err != nil {
		c.observe("error")
		return nil, fmt.Errorf("place search: decode response: %w", err)
	}

	out := make([]Place, 0, len(raw))
	for _, r := range raw {
		lat, errLat := strconv.ParseFloat(r.Lat, 64)
		lng, errLng := strconv.ParseFloat(r.Lon, 64)
		if errLat != nil || errLng != nil {
			continue
		}
		name := r.Name
		if name == "" {
			name, _, _ = strings.Cut(r.DisplayName, ",")
		}
		out = append(out, Place{
			Name:     name,
			Location: models.Location{Address: r.DisplayName, Lat: lat, Lng: lng},
		})
	}
	if len(out) == 0 {
		c.observe("empty")
		return nil, ErrNoResults
	}
	c.observe("ok")
	return out, nil
}

func (c *Client) observe(outcome string) {
	if c.calls != nil {
		c.calls.WithLabelValues(outcome).Inc()
	}
}
