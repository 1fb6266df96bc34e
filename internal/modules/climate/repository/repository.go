package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"climate-server/internal/modules/climate/types"
)

//go:embed sql/get-precipitation.sql
var getPrecipitationSQL string

//go:embed sql/get-stations.sql
var getStationsSQL string

//go:embed sql/get-most-active-station.sql
var getMostActiveStationSQL string

//go:embed sql/get-latest-date.sql
var getLatestDateSQL string

//go:embed sql/get-temperature-series.sql
var getTemperatureSeriesSQL string

//go:embed sql/get-temperature-stats-from.sql
var getTemperatureStatsFromSQL string

//go:embed sql/get-temperature-stats-between.sql
var getTemperatureStatsBetweenSQL string

// ErrNoMeasurements is returned when a lookup needs measurement rows and
// there are none.
var ErrNoMeasurements = errors.New("no measurements")

// QueryObserver receives the duration and outcome of every query.
type QueryObserver interface {
	ObserveQuery(name string, elapsed time.Duration, err error)
}

// ClimateRepository hands out per-request sessions.
type ClimateRepository interface {
	Open(ctx context.Context) (Session, error)
}

// Session pins one pooled connection until Close. Dates are compared as
// strings, so callers pass them through unparsed.
type Session interface {
	GetPrecipitation(ctx context.Context) ([]types.Precipitation, error)
	GetStations(ctx context.Context) ([]types.Station, error)
	GetMostActiveStation(ctx context.Context) (types.ActiveStation, error)
	GetLatestDate(ctx context.Context, stationID string) (string, error)
	GetTemperatureSeries(ctx context.Context, stationID, start, end string) ([]types.Observation, error)
	GetTemperatureStatsFrom(ctx context.Context, stationID, start string) (types.TemperatureStats, error)
	GetTemperatureStatsBetween(ctx context.Context, stationID, start, end string) (types.TemperatureStats, error)
	Close() error
}

type repositoryImpl struct {
	db       *sql.DB
	observer QueryObserver
	logger   *slog.Logger
}

// NewRepository wraps db. observer may be nil; a nil logger means
// slog.Default().
func NewRepository(db *sql.DB, observer QueryObserver, logger *slog.Logger) ClimateRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &repositoryImpl{db: db, observer: observer, logger: logger}
}

func (r *repositoryImpl) Open(ctx context.Context) (Session, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &session{conn: conn, observer: r.observer, logger: r.logger}, nil
}

type session struct {
	conn     *sql.Conn
	observer QueryObserver
	logger   *slog.Logger
}

func (s *session) Close() error {
	return s.conn.Close()
}

func (s *session) observe(name string, start time.Time, err error) {
	if s.observer != nil {
		s.observer.ObserveQuery(name, time.Since(start), err)
	}
}

func (s *session) query(ctx context.Context, name, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := s.conn.QueryContext(ctx, query, args...)
	s.observe(name, start, err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return rows, nil
}

func (s *session) queryRow(ctx context.Context, name, query string, dest []any, args ...any) error {
	start := time.Now()
	err := s.conn.QueryRowContext(ctx, query, args...).Scan(dest...)
	s.observe(name, start, ignoreNoRows(err))
	return err
}

func ignoreNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}

func (s *session) closeRows(rows *sql.Rows, name string) {
	if err := rows.Close(); err != nil {
		s.logger.Error("close rows", "query", name, "error", err)
	}
}

func (s *session) GetPrecipitation(ctx context.Context) ([]types.Precipitation, error) {
	const name = "precipitation"
	rows, err := s.query(ctx, name, getPrecipitationSQL)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows, name)

	out := []types.Precipitation{}
	for rows.Next() {
		var (
			p    types.Precipitation
			prcp sql.NullFloat64
		)
		if err := rows.Scan(&p.Date, &p.Station, &prcp); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", name, err)
		}
		p.Prcp = nullableFloat(prcp)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *session) GetStations(ctx context.Context) ([]types.Station, error) {
	const name = "stations"
	rows, err := s.query(ctx, name, getStationsSQL)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows, name)

	out := []types.Station{}
	for rows.Next() {
		var st types.Station
		if err := rows.Scan(&st.ID, &st.Name, &st.Latitude, &st.Longitude, &st.Elevation); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", name, err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// GetMostActiveStation ranks stations by measurement count; ties go to the
// lowest station id.
func (s *session) GetMostActiveStation(ctx context.Context) (types.ActiveStation, error) {
	const name = "most_active_station"
	var a types.ActiveStation
	err := s.queryRow(ctx, name, getMostActiveStationSQL, []any{&a.ID, &a.Name, &a.Count})
	if errors.Is(err, sql.ErrNoRows) {
		return types.ActiveStation{}, ErrNoMeasurements
	}
	if err != nil {
		return types.ActiveStation{}, fmt.Errorf("%s: %w", name, err)
	}
	return a, nil
}

func (s *session) GetLatestDate(ctx context.Context, stationID string) (string, error) {
	const name = "latest_date"
	var latest sql.NullString
	if err := s.queryRow(ctx, name, getLatestDateSQL, []any{&latest}, stationID); err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	if !latest.Valid {
		return "", ErrNoMeasurements
	}
	return latest.String, nil
}

func (s *session) GetTemperatureSeries(ctx context.Context, stationID, start, end string) ([]types.Observation, error) {
	const name = "temperature_series"
	rows, err := s.query(ctx, name, getTemperatureSeriesSQL, stationID, start, end)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows, name)

	out := []types.Observation{}
	for rows.Next() {
		var o types.Observation
		if err := rows.Scan(&o.Date, &o.Tobs); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", name, err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *session) GetTemperatureStatsFrom(ctx context.Context, stationID, start string) (types.TemperatureStats, error) {
	return s.temperatureStats(ctx, "temperature_stats_from", getTemperatureStatsFromSQL, stationID, start)
}

func (s *session) GetTemperatureStatsBetween(ctx context.Context, stationID, start, end string) (types.TemperatureStats, error) {
	return s.temperatureStats(ctx, "temperature_stats_between", getTemperatureStatsBetweenSQL, stationID, start, end)
}

// temperatureStats returns unrounded aggregates; an empty match yields nulls.
func (s *session) temperatureStats(ctx context.Context, name, query string, args ...any) (types.TemperatureStats, error) {
	var tmin, tmax, tavg sql.NullFloat64
	if err := s.queryRow(ctx, name, query, []any{&tmin, &tmax, &tavg}, args...); err != nil {
		return types.TemperatureStats{}, fmt.Errorf("%s: %w", name, err)
	}
	return types.TemperatureStats{
		TMIN: nullableFloat(tmin),
		TMAX: nullableFloat(tmax),
		TAVG: nullableFloat(tavg),
	}, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
