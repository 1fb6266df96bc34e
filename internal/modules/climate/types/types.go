package types

// Station is one row of the station table.
type Station struct {
	ID        string
	Name      string
	Latitude  float64
	Longitude float64
	Elevation float64
}

// Measurement is one row of the measurement table. Prcp is nullable.
type Measurement struct {
	Station string
	Date    string
	Prcp    *float64
	Tobs    float64
}

// ActiveStation is the station with the most measurement rows.
type ActiveStation struct {
	ID    string
	Name  string
	Count int
}

// Precipitation is one grouped (date, station) precipitation row.
type Precipitation struct {
	Date    string
	Station string
	Prcp    *float64
}

// Observation is a dated temperature reading.
type Observation struct {
	Date string  `json:"date"`
	Tobs float64 `json:"tobs"`
}

// TemperatureStats aggregates tobs over a date range; all fields are null
// when no rows match.
type TemperatureStats struct {
	TMIN *float64 `json:"TMIN"`
	TMAX *float64 `json:"TMAX"`
	TAVG *float64 `json:"TAVG"`
}

// PrecipitationEntry is one element of the precipitation response. Date is
// only set on the first entry of a run of entries sharing a date.
type PrecipitationEntry struct {
	Date string              `json:"date,omitempty"`
	Prcp map[string]*float64 `json:"prcp"`
}

type Geo struct {
	Lng  float64 `json:"lng"`
	Lat  float64 `json:"lat"`
	Elev float64 `json:"elev"`
}

type StationEntry struct {
	Station string `json:"station"`
	Name    string `json:"name"`
	Geo     Geo    `json:"geo"`
}
