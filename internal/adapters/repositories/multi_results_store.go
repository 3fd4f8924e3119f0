package repositories

import (
	"context"
	"fmt"
	"journey-times/internal/domain"
	"journey-times/internal/ports"
)

// FanOutResultsStore writes every record to Primary and then to each mirror.
// Reads are served by Primary.
type FanOutResultsStore struct {
	Primary ports.ResultsRepository
	Mirrors []ports.ResultsRepository
}

func NewFanOutResultsStore(primary ports.ResultsRepository, mirrors ...ports.ResultsRepository) *FanOutResultsStore {
	return &FanOutResultsStore{Primary: primary, Mirrors: mirrors}
}

func (s *FanOutResultsStore) Append(ctx context.Context, countryCode string, record domain.ResultRecord) error {
	if err := s.Primary.Append(ctx, countryCode, record); err != nil {
		return err
	}
	for i, m := range s.Mirrors {
		if err := m.Append(ctx, countryCode, record); err != nil {
			return fmt.Errorf("append result: mirror #%d: %w", i+1, err)
		}
	}
	return nil
}

func (s *FanOutResultsStore) LoadAll(ctx context.Context, countryCode string) ([]domain.ResultRecord, error) {
	return s.Primary.LoadAll(ctx, countryCode)
}

func (s *FanOutResultsStore) Countries(ctx context.Context) ([]string, error) {
	return s.Primary.Countries(ctx)
}
