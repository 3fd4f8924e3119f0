package distance

import (
	"encoding/json"
	"fmt"
	"journey-times/internal/domain"
	"journey-times/internal/ports"
)

type metricValue struct {
	Value *float64 `json:"value"`
	Text  string   `json:"text"`
}

type matrixElement struct {
	Status   string       `json:"status"`
	Duration *metricValue `json:"duration"`
	Distance *metricValue `json:"distance"`
}

type matrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []matrixElement `json:"elements"`
	} `json:"rows"`
}

// parseMatrixResponse extracts the first row/element of a distance matrix
// response and derives the average speed.
func parseMatrixResponse(body []byte) (ports.DistanceResult, error) {
	var mr matrixResponse
	if err := json.Unmarshal(body, &mr); err != nil {
		return ports.DistanceResult{}, fmt.Errorf("decode matrix response: %w", err)
	}

	if len(mr.Rows) == 0 || len(mr.Rows[0].Elements) == 0 {
		return ports.DistanceResult{}, fmt.Errorf("parse matrix response: status=%q: %w", mr.Status, ports.ErrMalformedResponse)
	}

	el := mr.Rows[0].Elements[0]
	if el.Duration == nil || el.Duration.Value == nil || el.Distance == nil || el.Distance.Value == nil {
		return ports.DistanceResult{}, fmt.Errorf("parse matrix response: element status=%q: %w", el.Status, ports.ErrMissingField)
	}

	duration := *el.Duration.Value
	distance := *el.Distance.Value
	if duration == 0 {
		return ports.DistanceResult{}, fmt.Errorf("parse matrix response: distance=%v: %w", distance, ports.ErrZeroDuration)
	}

	return ports.DistanceResult{
		DistanceMeters:  distance,
		DurationSeconds: duration,
		AvgSpeedKmph:    domain.MpsToKmph(distance / duration),
	}, nil
}
