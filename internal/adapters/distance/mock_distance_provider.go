package distance

import (
	"context"
	"fmt"
	"journey-times/internal/domain"
	"journey-times/internal/ports"
)

type MockPair struct {
	From, To string
	Meters   float64
	Seconds  float64
	Err      error
}

// MockDistanceProvider answers from a fixed table of pairs. Unknown pairs use
// Fallback when set and fail otherwise.
type MockDistanceProvider struct {
	m        map[string]MockPair
	Fallback *MockPair
	Calls    []MockCall
}

type MockCall struct {
	Origin, Destination string
	Params              ports.QueryParams
}

func NewMockDistanceProvider(pairs []MockPair) *MockDistanceProvider {
	m := make(map[string]MockPair, len(pairs))
	for _, p := range pairs {
		m[p.From+"|"+p.To] = p
	}
	return &MockDistanceProvider{m: m}
}

func (p *MockDistanceProvider) GetDistance(
	ctx context.Context,
	origin, destination string,
	params ports.QueryParams,
) (ports.DistanceResult, error) {
	p.Calls = append(p.Calls, MockCall{Origin: origin, Destination: destination, Params: params})

	pair, ok := p.m[origin+"|"+destination]
	if !ok {
		if p.Fallback == nil {
			return ports.DistanceResult{}, fmt.Errorf("missing pair %q -> %q", origin, destination)
		}
		pair = *p.Fallback
	}

	if pair.Err != nil {
		return ports.DistanceResult{}, pair.Err
	}
	if pair.Seconds == 0 {
		return ports.DistanceResult{}, fmt.Errorf("mock pair %q -> %q: %w", origin, destination, ports.ErrZeroDuration)
	}

	return ports.DistanceResult{
		DistanceMeters:  pair.Meters,
		DurationSeconds: pair.Seconds,
		AvgSpeedKmph:    domain.MpsToKmph(pair.Meters / pair.Seconds),
	}, nil
}
