// Package testutil builds in-memory climate databases for tests.
package testutil

import (
	"database/sql"
	"testing"

	"climate-server/internal/modules/climate/types"

	_ "github.com/mattn/go-sqlite3"
)

// Schema matches the layout of the hawaii climate database.
const Schema = `
CREATE TABLE station (
  id        INTEGER PRIMARY KEY,
  station   TEXT,
  name      TEXT,
  latitude  FLOAT,
  longitude FLOAT,
  elevation FLOAT
);

CREATE TABLE measurement (
  id      INTEGER PRIMARY KEY,
  station TEXT,
  date    TEXT,
  prcp    FLOAT,
  tobs    FLOAT
);
`

// OpenMemory returns a single-connection in-memory database with Schema
// applied. A single connection keeps every query on the same memory database.
func OpenMemory(t *testing.T) *sql.DB {
	t.Helper()
	db := OpenEmpty(t)
	if _, err := db.Exec(Schema); err != nil {
		t.Fatalf("exec schema: %v", err)
	}
	return db
}

// OpenEmpty returns a single-connection in-memory database without tables.
func OpenEmpty(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	return db
}

func SeedStations(t *testing.T, db *sql.DB, stations ...types.Station) {
	t.Helper()
	for _, s := range stations {
		_, err := db.Exec(
			`INSERT INTO station (station, name, latitude, longitude, elevation) VALUES (?, ?, ?, ?, ?)`,
			s.ID, s.Name, s.Latitude, s.Longitude, s.Elevation,
		)
		if err != nil {
			t.Fatalf("insert station %s: %v", s.ID, err)
		}
	}
}

func SeedMeasurements(t *testing.T, db *sql.DB, measurements ...types.Measurement) {
	t.Helper()
	for _, m := range measurements {
		var prcp any
		if m.Prcp != nil {
			prcp = *m.Prcp
		}
		_, err := db.Exec(
			`INSERT INTO measurement (station, date, prcp, tobs) VALUES (?, ?, ?, ?)`,
			m.Station, m.Date, prcp, m.Tobs,
		)
		if err != nil {
			t.Fatalf("insert measurement %s/%s: %v", m.Station, m.Date, err)
		}
	}
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Stations used across the package tests.
var (
	Waikiki = types.Station{ID: "USC00519397", Name: "WAIKIKI 717.2, HI US", Latitude: 21.2716, Longitude: -157.8168, Elevation: 3}
	Waihee  = types.Station{ID: "USC00519281", Name: "WAIHEE 837.5, HI US", Latitude: 21.45167, Longitude: -157.84889, Elevation: 32.9}
	Kaneohe = types.Station{ID: "USC00513117", Name: "KANEOHE 838.1, HI US", Latitude: 21.4234, Longitude: -157.8015, Elevation: 14.6}
)
