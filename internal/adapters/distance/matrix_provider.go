package distance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"journey-times/internal/platform/obs"
	"journey-times/internal/ports"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DistanceMatrixProvider implements DistanceProvider using the Google
// Distance Matrix API, one origin and one destination per request.
//
// Requests are synchronous and never retried. A zero timeout blocks until the
// endpoint answers.
type DistanceMatrixProvider struct {
	session *http.Client
	baseURL string
	mode    string
	units   string
	logger  logrus.FieldLogger
	metrics *obs.Metrics
}

func NewDistanceMatrixProvider(
	baseURL string,
	timeout time.Duration,
	logger logrus.FieldLogger,
	metrics *obs.Metrics,
) (*DistanceMatrixProvider, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("distance matrix base URL is empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("distance matrix base URL %q: %w", baseURL, err)
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	provider := &DistanceMatrixProvider{
		session: &http.Client{Timeout: timeout},
		baseURL: baseURL,
		mode:    "driving",
		units:   "metric",
		logger:  logger,
		metrics: metrics,
	}

	return provider, nil
}

// GetDistance queries the driving distance and duration between two
// "lat,lon" locations. Caller-supplied params (e.g. key) are added to the
// query; origins, destinations, mode and units always win.
//
// Responses that cannot yield a sample return an error wrapping
// ports.ErrBadSample. Transport failures, error statuses and undecodable
// bodies are returned as plain errors.
func (p *DistanceMatrixProvider) GetDistance(
	ctx context.Context,
	origin string,
	destination string,
	params ports.QueryParams,
) (_ ports.DistanceResult, err error) {
	defer obs.Time(ctx, p.logger, "distance.GetDistance")(&err)

	if origin == "" || destination == "" {
		return ports.DistanceResult{}, errors.New("get distance: origin and destination must be non-empty")
	}

	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("origins", origin)
	q.Set("destinations", destination)
	q.Set("mode", p.mode)
	q.Set("units", p.units)

	req, err := p.newRequest(ctx, p.baseURL, q.Encode())
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("get distance request: %w", err)
	}

	start := time.Now()
	resp, err := p.do(req)
	if p.metrics != nil {
		p.metrics.RoutingDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		p.observe("error")
		return ports.DistanceResult{}, fmt.Errorf("get distance %q -> %q: %w", origin, destination, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		p.observe("error")
		return ports.DistanceResult{}, fmt.Errorf("get distance: read response: %w", err)
	}

	result, err := parseMatrixResponse(body)
	if err != nil {
		if errors.Is(err, ports.ErrMalformedResponse) {
			p.logger.WithField("response", string(body)).Warn("downloaded data does not match expectations")
		}
		if errors.Is(err, ports.ErrBadSample) {
			p.observe("bad_sample")
		} else {
			p.observe("error")
		}
		return ports.DistanceResult{}, fmt.Errorf("get distance %q -> %q: %w", origin, destination, err)
	}

	p.observe("success")
	return result, nil
}

func (p *DistanceMatrixProvider) observe(outcome string) {
	if p.metrics == nil {
		return
	}
	p.metrics.RoutingRequests.WithLabelValues(outcome).Inc()
}
