package db

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"climate-server/internal/config"
	"climate-server/internal/testutil"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "plain path is opened read-only",
			cfg:  config.Config{Path: "data/hawaii.sqlite"},
			want: "file:data/hawaii.sqlite?mode=ro&_busy_timeout=5000",
		},
		{
			name: "file uri without query",
			cfg:  config.Config{Path: "file:/srv/hawaii.sqlite"},
			want: "file:/srv/hawaii.sqlite?mode=ro&_busy_timeout=5000",
		},
		{
			name: "file uri with query",
			cfg:  config.Config{Path: "file:/srv/hawaii.sqlite?cache=shared"},
			want: "file:/srv/hawaii.sqlite?cache=shared&mode=ro&_busy_timeout=5000",
		},
		{
			name: "explicit dsn wins",
			cfg:  config.Config{Path: "ignored", DSN: ":memory:"},
			want: ":memory:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildDSN(tt.cfg); got != tt.want {
				t.Errorf("buildDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpen_MissingFileFails(t *testing.T) {
	cfg := config.Config{
		Driver: "sqlite3",
		Path:   filepath.Join(t.TempDir(), "missing.sqlite"),
	}

	conn, err := Open(context.Background(), cfg, slog.Default())
	if err == nil {
		_ = Close(conn)
		t.Fatal("Open() error = nil, want error for missing database file")
	}
	if !strings.Contains(err.Error(), "db ping") {
		t.Errorf("error = %v, want db ping failure", err)
	}
}

func TestOpen_ReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hawaii.sqlite")
	seed, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open seed db: %v", err)
	}
	if _, err := seed.Exec(testutil.Schema); err != nil {
		t.Fatalf("exec schema: %v", err)
	}
	if err := seed.Close(); err != nil {
		t.Fatalf("close seed db: %v", err)
	}

	for _, logSQL := range []bool{false, true} {
		cfg := config.Config{Driver: "sqlite3", Path: path, MaxOpenConns: 2, MaxIdleConns: 2, LogSQL: logSQL}
		conn, err := Open(context.Background(), cfg, slog.Default())
		if err != nil {
			t.Fatalf("Open(logSQL=%v) error = %v", logSQL, err)
		}

		if err := VerifySchema(context.Background(), conn, nil); err != nil {
			t.Errorf("VerifySchema(logSQL=%v) error = %v", logSQL, err)
		}
		if _, err := conn.Exec(`INSERT INTO station (station, name) VALUES ('X', 'x')`); err == nil {
			t.Errorf("insert succeeded on read-only handle (logSQL=%v)", logSQL)
		}
		if err := Close(conn); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}
}

func TestOpen_LogSQLRejectsOtherDrivers(t *testing.T) {
	cfg := config.Config{Driver: "postgres", Path: "unused.sqlite", LogSQL: true}
	conn, err := Open(context.Background(), cfg, slog.Default())
	if err == nil {
		_ = Close(conn)
		t.Fatal("Open() error = nil, want error for db_log_sql with a non-sqlite3 driver")
	}
	if !strings.Contains(err.Error(), `requires db_driver "sqlite3"`) || !strings.Contains(err.Error(), `"postgres"`) {
		t.Errorf("error = %v, want driver mismatch", err)
	}
}

func TestClose_Nil(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Fatalf("Close(nil) = %v, want nil", err)
	}
}

func TestVerifySchema(t *testing.T) {
	t.Run("full schema passes", func(t *testing.T) {
		conn := testutil.OpenMemory(t)
		if err := VerifySchema(context.Background(), conn, nil); err != nil {
			t.Fatalf("VerifySchema() error = %v", err)
		}
	})

	t.Run("missing table fails", func(t *testing.T) {
		conn := testutil.OpenEmpty(t)
		if _, err := conn.Exec(`CREATE TABLE station (station TEXT, name TEXT, latitude FLOAT, longitude FLOAT, elevation FLOAT)`); err != nil {
			t.Fatalf("create table: %v", err)
		}
		err := VerifySchema(context.Background(), conn, nil)
		if err == nil || !strings.Contains(err.Error(), `"measurement" not found`) {
			t.Fatalf("VerifySchema() error = %v, want missing measurement table", err)
		}
	})

	t.Run("missing column fails", func(t *testing.T) {
		conn := testutil.OpenEmpty(t)
		if _, err := conn.Exec(`
			CREATE TABLE station (station TEXT, name TEXT, latitude FLOAT, longitude FLOAT, elevation FLOAT);
			CREATE TABLE measurement (station TEXT, date TEXT, prcp FLOAT);
		`); err != nil {
			t.Fatalf("create tables: %v", err)
		}
		err := VerifySchema(context.Background(), conn, nil)
		if err == nil || !strings.Contains(err.Error(), "missing columns: tobs") {
			t.Fatalf("VerifySchema() error = %v, want missing tobs column", err)
		}
	})

	t.Run("logs through the given logger", func(t *testing.T) {
		conn := testutil.OpenMemory(t)
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

		if err := VerifySchema(context.Background(), conn, logger); err != nil {
			t.Fatalf("VerifySchema() error = %v", err)
		}
		out := buf.String()
		for _, table := range []string{"table=measurement", "table=station"} {
			if !strings.Contains(out, "schema table ok") || !strings.Contains(out, table) {
				t.Errorf("log output missing %q: %s", table, out)
			}
		}
	})

	t.Run("empty database fails", func(t *testing.T) {
		conn := testutil.OpenEmpty(t)
		if err := VerifySchema(context.Background(), conn, nil); err == nil {
			t.Fatal("VerifySchema() error = nil, want error")
		}
	})
}
