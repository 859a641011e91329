package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/smallbiznis/courierfare/internal/config"
	distancedomain "github.com/smallbiznis/courierfare/internal/distance/domain"
	"github.com/smallbiznis/courierfare/internal/geo"
)

const GoogleProviderName = "google_distance_matrix"

// Google resolves driving distance through the Distance Matrix API with a
// bounded timeout. Without an API key it reports unconfigured and the chain
// skips straight to the fallback.
type Google struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewGoogle(cfg config.ProviderConfig) *Google {
	return &Google{
		apiKey:   cfg.APIKey,
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: cfg.Timeout()},
	}
}

func (g *Google) Name() string { return GoogleProviderName }

func (g *Google) Configured() bool { return g.apiKey != "" }

func (g *Google) Resolve(ctx context.Context, origin, destination geo.Location) (distancedomain.Result, error) {
	if err := validateRoute(origin, destination); err != nil {
		return distancedomain.Result{}, err
	}

	params := url.Values{}
	params.Set("origins", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	params.Set("destinations", fmt.Sprintf("%f,%f", destination.Lat, destination.Lng))
	params.Set("mode", "driving")
	params.Set("units", "metric")
	params.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return distancedomain.Result{}, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return distancedomain.Result{}, fmt.Errorf("distance matrix request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return distancedomain.Result{}, fmt.Errorf("distance matrix returned HTTP %d", resp.StatusCode)
	}

	var payload googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return distancedomain.Result{}, fmt.Errorf("decode distance matrix response: %w", err)
	}
	if payload.Status != "OK" {
		return distancedomain.Result{}, fmt.Errorf("distance matrix status %q", payload.Status)
	}
	if len(payload.Rows) == 0 || len(payload.Rows[0].Elements) == 0 {
		return distancedomain.Result{}, fmt.Errorf("distance matrix response missing elements")
	}

	element := payload.Rows[0].Elements[0]
	if element.Status != "OK" {
		return distancedomain.Result{}, fmt.Errorf("distance matrix element status %q", element.Status)
	}
	if element.Distance.Value <= 0 {
		return distancedomain.Result{}, fmt.Errorf("distance matrix returned invalid distance %d", element.Distance.Value)
	}

	result := distancedomain.Result{DistanceMeters: element.Distance.Value}
	if element.Duration.Value > 0 {
		duration := element.Duration.Value
		result.DurationSeconds = &duration
	}
	if raw, err := json.Marshal(element); err == nil {
		result.Raw = raw
	}
	return result, nil
}

type googleResponse struct {
	Status string      `json:"status"`
	Rows   []googleRow `json:"rows"`
}

type googleRow struct {
	Elements []googleElement `json:"elements"`
}

type googleElement struct {
	Status   string      `json:"status"`
	Distance googleValue `json:"distance"`
	Duration googleValue `json:"duration"`
}

type googleValue struct {
	Value int64  `json:"value"`
	Text  string `json:"text"`
}
