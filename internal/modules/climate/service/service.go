package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"climate-server/internal/modules/climate/repository"
	"climate-server/internal/modules/climate/types"
)

// ClimateService answers the climate API queries. Every call opens its own
// repository session and closes it before returning.
type ClimateService interface {
	Precipitation(ctx context.Context) ([]types.PrecipitationEntry, error)
	Stations(ctx context.Context) ([]types.StationEntry, error)
	ActiveStationYear(ctx context.Context) ([]types.Observation, error)
	StatsFrom(ctx context.Context, start string) ([]types.TemperatureStats, error)
	StatsBetween(ctx context.Context, start, end string) ([]types.TemperatureStats, error)
}

type serviceImpl struct {
	repository repository.ClimateRepository
	logger     *slog.Logger
}

func NewService(repository repository.ClimateRepository, logger *slog.Logger) ClimateService {
	if logger == nil {
		logger = slog.Default()
	}
	return &serviceImpl{repository: repository, logger: logger}
}

func (s *serviceImpl) withSession(ctx context.Context, fn func(repository.Session) error) error {
	sess, err := s.repository.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			s.logger.Error("close session", "error", err)
		}
	}()
	return fn(sess)
}

func (s *serviceImpl) Precipitation(ctx context.Context) ([]types.PrecipitationEntry, error) {
	var rows []types.Precipitation
	err := s.withSession(ctx, func(sess repository.Session) error {
		var err error
		rows, err = sess.GetPrecipitation(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return FoldPrecipitation(rows), nil
}

func (s *serviceImpl) Stations(ctx context.Context) ([]types.StationEntry, error) {
	var stations []types.Station
	err := s.withSession(ctx, func(sess repository.Session) error {
		var err error
		stations, err = sess.GetStations(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]types.StationEntry, 0, len(stations))
	for _, st := range stations {
		out = append(out, types.StationEntry{
			Station: st.ID,
			Name:    st.Name,
			Geo:     types.Geo{Lng: st.Longitude, Lat: st.Latitude, Elev: st.Elevation},
		})
	}
	return out, nil
}

// ActiveStationYear returns the most active station's observations from one
// calendar year before its latest date up to that date.
func (s *serviceImpl) ActiveStationYear(ctx context.Context) ([]types.Observation, error) {
	out := []types.Observation{}
	err := s.withSession(ctx, func(sess repository.Session) error {
		active, err := sess.GetMostActiveStation(ctx)
		if err != nil {
			return err
		}
		latest, err := sess.GetLatestDate(ctx, active.ID)
		if err != nil {
			return err
		}
		start, err := OneYearEarlier(latest)
		if err != nil {
			return fmt.Errorf("station %s: %w", active.ID, err)
		}
		s.logger.Debug("active station window", "station", active.ID, "count", active.Count, "start", start, "end", latest)

		out, err = sess.GetTemperatureSeries(ctx, active.ID, start, latest)
		return err
	})
	if errors.Is(err, repository.ErrNoMeasurements) {
		return []types.Observation{}, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *serviceImpl) StatsFrom(ctx context.Context, start string) ([]types.TemperatureStats, error) {
	return s.stats(ctx, func(sess repository.Session, stationID string) (types.TemperatureStats, error) {
		return sess.GetTemperatureStatsFrom(ctx, stationID, start)
	})
}

func (s *serviceImpl) StatsBetween(ctx context.Context, start, end string) ([]types.TemperatureStats, error) {
	return s.stats(ctx, func(sess repository.Session, stationID string) (types.TemperatureStats, error) {
		return sess.GetTemperatureStatsBetween(ctx, stationID, start, end)
	})
}

// stats always answers with a single element; no active station means an
// all-null aggregate.
func (s *serviceImpl) stats(ctx context.Context, query func(repository.Session, string) (types.TemperatureStats, error)) ([]types.TemperatureStats, error) {
	var result types.TemperatureStats
	err := s.withSession(ctx, func(sess repository.Session) error {
		active, err := sess.GetMostActiveStation(ctx)
		if err != nil {
			return err
		}
		result, err = query(sess, active.ID)
		return err
	})
	if err != nil && !errors.Is(err, repository.ErrNoMeasurements) {
		return nil, err
	}
	result.TAVG = RoundTo2(result.TAVG)
	return []types.TemperatureStats{result}, nil
}
