package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/adeelhaq/sinchai/internal/core/ports"
	"github.com/adeelhaq/sinchai/internal/pkg/metrics"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Client wraps the OpenWeather 5-day/3-hour forecast API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NewClientWithBaseURL is used by tests to point at a fake server.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	return c
}

type forecastResponse struct {
	List []forecastStep `json:"list"`
}

type forecastStep struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Rain struct {
		ThreeHour float64 `json:"3h"`
	} `json:"rain"`
}

// Snapshot aggregates the next 24 hours of forecast (eight 3-hour steps)
// into a mean temperature, accumulated rainfall, and a Hargreaves-style
// reference evapotranspiration estimate.
func (c *Client) Snapshot(ctx context.Context, lat, lon float64) (*ports.WeatherSnapshot, error) {
	u := fmt.Sprintf("%s/forecast?lat=%f&lon=%f&appid=%s&units=metric",
		c.baseURL, lat, lon, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.WeatherFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.WeatherFetchErrors.Inc()
		return nil, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.WeatherFetchErrors.Inc()
		return nil, fmt.Errorf("forecast API returned HTTP %d", resp.StatusCode)
	}

	var fc forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decoding forecast: %w", err)
	}

	steps := fc.List
	if len(steps) > 8 {
		steps = steps[:8]
	}

	tempC := 30.0
	if len(steps) > 0 {
		sum := 0.0
		for _, s := range steps {
			sum += s.Main.Temp
		}
		tempC = round1(sum / float64(len(steps)))
	}

	rain := 0.0
	for _, s := range steps {
		rain += s.Rain.ThreeHour
	}

	et0 := round1(math.Max(0, 0.0023*(tempC+17.8)) * 24.0)

	return &ports.WeatherSnapshot{
		TempC:          tempC,
		RainForecastMm: round1(rain),
		ET0Mm:          et0,
	}, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
