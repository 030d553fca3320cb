package geocode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"places-api/internal/domain"
	"places-api/internal/metrics"
)

const breakerName = "olamaps-geocode"

// Config configures the Ola Maps geocoding client.
type Config struct {
	BaseURL  string
	APIKey   string
	Language string
	Timeout  time.Duration
	// RPS caps outbound lookups per second; zero disables the limit.
	RPS    float64
	Logger logrus.FieldLogger
}

// OlaMapsClient queries the Ola Maps geocode endpoint.
type OlaMapsClient struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[domain.Coordinates]
}

type geocodeResponse struct {
	Status           string `json:"status"`
	GeocodingResults []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"geocodingResults"`
}

func NewOlaMapsClient(cfg Config) (*OlaMapsClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("geocoding api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.olamaps.io"
	}
	if cfg.Language == "" {
		cfg.Language = "English"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), 1)
	}

	logger := cfg.Logger
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	cb := gobreaker.NewCircuitBreaker[domain.Coordinates](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// an unknown address is a valid answer, not a provider failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNoResults)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("geocoder circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &OlaMapsClient{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		cb:      cb,
	}, nil
}

func (c *OlaMapsClient) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.GeocodeRequests.WithLabelValues("rejected").Inc()
		return domain.Coordinates{}, fmt.Errorf("geocode rate limit: %w", err)
	}

	coords, err := c.cb.Execute(func() (domain.Coordinates, error) {
		return c.lookup(ctx, address)
	})
	switch {
	case err == nil:
		metrics.GeocodeRequests.WithLabelValues("ok").Inc()
	case errors.Is(err, ErrNoResults):
		metrics.GeocodeRequests.WithLabelValues("no_results").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.GeocodeRequests.WithLabelValues("rejected").Inc()
	default:
		metrics.GeocodeRequests.WithLabelValues("error").Inc()
	}
	return coords, err
}

func (c *OlaMapsClient) lookup(ctx context.Context, address string) (domain.Coordinates, error) {
	query := url.Values{}
	query.Set("address", address)
	query.Set("language", c.cfg.Language)
	query.Set("api_key", c.cfg.APIKey)
	endpoint := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/places/v1/geocode?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Coordinates{}, fmt.Errorf("geocode request: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if strings.EqualFold(payload.Status, "zero_results") || len(payload.GeocodingResults) == 0 {
		return domain.Coordinates{}, ErrNoResults
	}

	loc := payload.GeocodingResults[0].Geometry.Location
	return domain.Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

var _ Geocoder = (*OlaMapsClient)(nil)
