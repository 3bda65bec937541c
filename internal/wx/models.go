package wx

import (
	"encoding/json"
)

// FlightCategory represents the derived flight rules for a report
type FlightCategory string

const (
	CategoryVFR  FlightCategory = "VFR"
	CategoryMVFR FlightCategory = "MVFR"
	CategoryIFR  FlightCategory = "IFR"
	CategoryLIFR FlightCategory = "LIFR"
)

// ReportKind distinguishes routine from special reports
type ReportKind string

const (
	ReportKindMETAR ReportKind = "METAR"
	ReportKindSPECI ReportKind = "SPECI"
)

// CloudLayer represents one reported cloud layer. Layers are kept in the
// order reported; lowest-first is not guaranteed.
type CloudLayer struct {
	Cover    string `json:"cover"`   // FEW, SCT, BKN, OVC, VV, CLR, ...
	BaseFeet int    `json:"base_ft"` // feet AGL
}

// Observation is the normalized form of one station report, one per
// station per fetch cycle
type Observation struct {
	StationID          string         `json:"station_id"`
	RawText            string         `json:"raw_text"`
	StationName        string         `json:"station_name"`
	Latitude           float64        `json:"latitude"`
	Longitude          float64        `json:"longitude"`
	ElevationMeters    float64        `json:"elevation_m"`
	ObservedAtISO      string         `json:"observed_at,omitempty"`
	ObservationZulu    string         `json:"observation_zulu,omitempty"` // 6-digit day-hour-minute + "Z" token from the raw text
	ObservationEpochMs int64          `json:"observation_epoch_ms"`
	WindDirectionDeg   *int           `json:"wind_direction_deg"` // nil encodes variable/calm
	WindSpeedKt        int            `json:"wind_speed_kt"`
	WindGustKt         *int           `json:"wind_gust_kt,omitempty"`
	VisibilitySM       float64        `json:"visibility_sm"`
	TemperatureC       *float64       `json:"temperature_c"`
	DewpointC          *float64       `json:"dewpoint_c"`
	TemperatureF       *int           `json:"temperature_f,omitempty"` // display-only conversion
	AltimeterInHg      *float64       `json:"altimeter_inhg"`
	FlightCategory     FlightCategory `json:"flight_category"`
	Clouds             []CloudLayer   `json:"clouds"`
	WeatherPhenomena   []string       `json:"weather_phenomena,omitempty"` // raw phenomenon tokens as reported
	WeatherDecoded     string         `json:"weather_decoded,omitempty"`   // human-readable, lossy
	HasMaintenanceFlag bool           `json:"maintenance_flag"`
	ReportKind         ReportKind     `json:"report_kind"`
}

// Forecast is a decoded TAF with per-period derived flight categories
type Forecast struct {
	StationID   string           `json:"station_id"`
	StationName string           `json:"station_name"`
	RawText     string           `json:"raw_text"`
	IssuedAtISO string           `json:"issued_at,omitempty"`
	ValidFromMs int64            `json:"valid_from_epoch_ms"`
	ValidToMs   int64            `json:"valid_to_epoch_ms"`
	Periods     []ForecastPeriod `json:"periods"`
}

// ForecastPeriod is one TAF forecast group. The provider supplies no
// flight category for forecasts, so it is always derived here.
type ForecastPeriod struct {
	FromEpochMs      int64          `json:"from_epoch_ms"`
	ToEpochMs        int64          `json:"to_epoch_ms"`
	ChangeIndicator  string         `json:"change_indicator,omitempty"` // FM, BECMG, TEMPO, PROB30, ...
	WindDirectionDeg *int           `json:"wind_direction_deg"`
	WindSpeedKt      *int           `json:"wind_speed_kt,omitempty"`
	WindGustKt       *int           `json:"wind_gust_kt,omitempty"`
	VisibilitySM     float64        `json:"visibility_sm"`
	Clouds           []CloudLayer   `json:"clouds"`
	WeatherDecoded   string         `json:"weather_decoded,omitempty"`
	FlightCategory   FlightCategory `json:"flight_category"`
}

// METARRecord mirrors one element of the aviationweather.gov METAR JSON
// array. Fields that arrive as either numbers or strings (visibility
// "10+", wind direction "VRB") are kept raw and parsed by the decoder.
type METARRecord struct {
	ICAOID     string          `json:"icaoId"`
	ReportTime string          `json:"reportTime"` // ISO8601, may be absent
	ObsTime    *int64          `json:"obsTime"`    // epoch seconds
	Temp       *float64        `json:"temp"`       // Celsius
	Dewp       *float64        `json:"dewp"`       // Celsius
	WDir       json.RawMessage `json:"wdir"`       // degrees or "VRB"
	WSpd       *int            `json:"wspd"`       // knots
	WGst       *int            `json:"wgst"`       // knots
	Visib      json.RawMessage `json:"visib"`      // statute miles or "10+"
	Altim      *float64        `json:"altim"`      // hPa
	WxString   *string         `json:"wxString"`
	MetarType  string          `json:"metarType"` // "METAR" or "SPECI"
	RawOb      string          `json:"rawOb"`
	Lat        float64         `json:"lat"`
	Lon        float64         `json:"lon"`
	Elev       float64         `json:"elev"` // meters
	Name       string          `json:"name"`
	Clouds     []CloudRecord   `json:"clouds"`
	FltCat     string          `json:"fltCat"`
}

// CloudRecord mirrors one cloud layer in the provider's JSON
type CloudRecord struct {
	Cover string   `json:"cover"`
	Base  *float64 `json:"base"` // feet AGL, null for CLR/SKC
}

// TAFRecord mirrors one element of the aviationweather.gov TAF JSON array
type TAFRecord struct {
	ICAOID        string              `json:"icaoId"`
	IssueTime     string              `json:"issueTime"`
	ValidTimeFrom int64               `json:"validTimeFrom"` // epoch seconds
	ValidTimeTo   int64               `json:"validTimeTo"`   // epoch seconds
	RawTAF        string              `json:"rawTAF"`
	Name          string              `json:"name"`
	Fcsts         []TAFForecastRecord `json:"fcsts"`
}

// TAFForecastRecord mirrors one forecast group in the provider's TAF JSON
type TAFForecastRecord struct {
	TimeFrom   int64           `json:"timeFrom"` // epoch seconds
	TimeTo     int64           `json:"timeTo"`   // epoch seconds
	FcstChange *string         `json:"fcstChange"`
	WDir       json.RawMessage `json:"wdir"`
	WSpd       *int            `json:"wspd"`
	WGst       *int            `json:"wgst"`
	Visib      json.RawMessage `json:"visib"`
	WxString   *string         `json:"wxString"`
	Clouds     []CloudRecord   `json:"clouds"`
}
