// Package power reads daily soil moisture from the NASA POWER API.
package power

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"time"
)

const defaultBaseURL = "https://power.larc.nasa.gov/api/temporal/daily"

// Client fetches the SOILM_TOT parameter (total profile soil moisture,
// kg/m^2) for a point and converts it to a rough volumetric percentage.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewClientWithBaseURL is used by tests to point at a fake server.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

type powerResponse struct {
	Properties struct {
		Parameter struct {
			SoilMTot map[string]float64 `json:"SOILM_TOT"`
		} `json:"parameter"`
	} `json:"properties"`
}

// MoisturePct returns an estimated volumetric soil moisture percentage,
// or nil when no usable reading is available. A nil reading is not an
// error: the upstream dataset lags real time and callers are expected to
// retry later.
func (c *Client) MoisturePct(ctx context.Context, lat, lon float64) (*float64, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -7)
	u := fmt.Sprintf(
		"%s/point?parameters=SOILM_TOT&community=AG&longitude=%f&latitude=%f&start=%s&end=%s&format=JSON",
		c.baseURL, lon, lat, start.Format("20060102"), end.Format("20060102"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Treat transport failures as "no reading yet".
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var pr powerResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, nil
	}

	vals := pr.Properties.Parameter.SoilMTot
	if len(vals) == 0 {
		return nil, nil
	}

	days := make([]string, 0, len(vals))
	for d := range vals {
		days = append(days, d)
	}
	sort.Strings(days)

	// Walk backwards past the fill value the dataset uses for days not
	// yet processed.
	for i := len(days) - 1; i >= 0; i-- {
		kgM2 := vals[days[i]]
		if kgM2 <= -900 {
			continue
		}
		// crude: volumetric % over the top 10 cm
		pct := math.Round(kgM2/10.0*10) / 10
		if pct < 0 || pct > 60 {
			return nil, nil
		}
		return &pct, nil
	}
	return nil, nil
}
