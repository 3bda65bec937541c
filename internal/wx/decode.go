package wx

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedRecord is returned when a provider record cannot yield a
// usable Observation (missing station identity). Such records are
// dropped by the collector, never fatal.
var ErrMalformedRecord = errors.New("malformed provider record")

// zuluTokenRe matches the observation day-hour-minute group in raw
// report text, e.g. "092251Z"
var zuluTokenRe = regexp.MustCompile(`\b(\d{6})Z\b`)

// Unit conversion factors
const (
	feetPerMeter   = 0.3048
	hpaPerInHg     = 33.8639
	defaultVisibSM = 10.0 // visibility >= 10 SM unless stated
)

// FeetToMeters converts feet to meters
func FeetToMeters(ft float64) float64 {
	return ft * feetPerMeter
}

// HpaToInHg converts hectopascals to inches of mercury
func HpaToInHg(hpa float64) float64 {
	return hpa / hpaPerInHg
}

// CelsiusToFahrenheit converts Celsius to whole-degree Fahrenheit for display
func CelsiusToFahrenheit(c float64) int {
	return int(math.Round(c*9.0/5.0 + 32.0))
}

// ClassifyFlightCategory derives a flight category from visibility and
// cloud layers. The ceiling is the lowest BKN/OVC/VV layer; with no
// such layer the ceiling is unlimited. First match wins, and the MVFR
// visibility bound is inclusive while IFR/LIFR are strict.
func ClassifyFlightCategory(visibilitySM float64, clouds []CloudLayer) FlightCategory {
	ceiling := math.Inf(1)
	for _, layer := range clouds {
		switch layer.Cover {
		case "BKN", "OVC", "VV":
			if float64(layer.BaseFeet) < ceiling {
				ceiling = float64(layer.BaseFeet)
			}
		}
	}

	switch {
	case ceiling < 500 || visibilitySM < 1:
		return CategoryLIFR
	case ceiling < 1000 || visibilitySM < 3:
		return CategoryIFR
	case ceiling < 3000 || visibilitySM <= 5:
		return CategoryMVFR
	default:
		return CategoryVFR
	}
}

// ExtractZulu returns the first 6-digit+Z observation time token found
// in raw report text, or "" when none is present. Never synthesized
// from wall-clock time.
func ExtractZulu(rawText string) string {
	return zuluTokenRe.FindString(rawText)
}

// HasMaintenanceFlag reports whether the trimmed raw text ends with the
// "$" maintenance indicator. No other encoding is recognized.
func HasMaintenanceFlag(rawText string) bool {
	return strings.HasSuffix(strings.TrimSpace(rawText), "$")
}

// DecodeMETAR converts one provider METAR record into a normalized
// Observation. Records without a station id are rejected with
// ErrMalformedRecord; every other missing field degrades to a default.
// The provided now is used only as the epoch fallback when the
// provider's numeric timestamp is absent.
func DecodeMETAR(rec METARRecord, now time.Time) (Observation, error) {
	stationID := strings.TrimSpace(rec.ICAOID)
	if stationID == "" {
		return Observation{}, ErrMalformedRecord
	}

	obs := Observation{
		StationID:          stationID,
		RawText:            rec.RawOb,
		StationName:        rec.Name,
		Latitude:           rec.Lat,
		Longitude:          rec.Lon,
		ElevationMeters:    rec.Elev,
		ObservedAtISO:      rec.ReportTime,
		ObservationZulu:    ExtractZulu(rec.RawOb),
		WindDirectionDeg:   parseWindDirection(rec.WDir),
		WindGustKt:         rec.WGst,
		VisibilitySM:       parseVisibility(rec.Visib),
		TemperatureC:       rec.Temp,
		DewpointC:          rec.Dewp,
		Clouds:             decodeClouds(rec.Clouds),
		HasMaintenanceFlag: HasMaintenanceFlag(rec.RawOb),
		ReportKind:         ReportKindMETAR,
	}

	if rec.MetarType == string(ReportKindSPECI) {
		obs.ReportKind = ReportKindSPECI
	}

	if rec.WSpd != nil {
		obs.WindSpeedKt = *rec.WSpd
	}

	// Observation epoch is the authoritative event time for outage
	// bookkeeping; fall back to now only when the provider omits it.
	if rec.ObsTime != nil {
		obs.ObservationEpochMs = *rec.ObsTime * 1000
	} else {
		obs.ObservationEpochMs = now.UnixMilli()
	}

	if rec.Temp != nil {
		f := CelsiusToFahrenheit(*rec.Temp)
		obs.TemperatureF = &f
	}

	if rec.Altim != nil {
		obs.AltimeterInHg = normalizeAltimeter(*rec.Altim)
	}

	if rec.WxString != nil {
		obs.WeatherPhenomena, obs.WeatherDecoded = DecodePhenomena(*rec.WxString)
	}

	// Always derive the category rather than trusting rec.FltCat; the
	// provider omits it for forecast-shaped records and the boundary
	// rules must be identical everywhere.
	obs.FlightCategory = ClassifyFlightCategory(obs.VisibilitySM, obs.Clouds)

	return obs, nil
}

// DecodeTAF converts one provider TAF record into a Forecast with a
// derived flight category per period
func DecodeTAF(rec TAFRecord) (Forecast, error) {
	stationID := strings.TrimSpace(rec.ICAOID)
	if stationID == "" {
		return Forecast{}, ErrMalformedRecord
	}

	fc := Forecast{
		StationID:   stationID,
		StationName: rec.Name,
		RawText:     rec.RawTAF,
		IssuedAtISO: rec.IssueTime,
		ValidFromMs: rec.ValidTimeFrom * 1000,
		ValidToMs:   rec.ValidTimeTo * 1000,
	}

	for _, f := range rec.Fcsts {
		period := ForecastPeriod{
			FromEpochMs:      f.TimeFrom * 1000,
			ToEpochMs:        f.TimeTo * 1000,
			WindDirectionDeg: parseWindDirection(f.WDir),
			WindSpeedKt:      f.WSpd,
			WindGustKt:       f.WGst,
			VisibilitySM:     parseVisibility(f.Visib),
			Clouds:           decodeClouds(f.Clouds),
		}
		if f.FcstChange != nil {
			period.ChangeIndicator = *f.FcstChange
		}
		if f.WxString != nil {
			_, period.WeatherDecoded = DecodePhenomena(*f.WxString)
		}
		period.FlightCategory = ClassifyFlightCategory(period.VisibilitySM, period.Clouds)
		fc.Periods = append(fc.Periods, period)
	}

	return fc, nil
}

func decodeClouds(records []CloudRecord) []CloudLayer {
	layers := make([]CloudLayer, 0, len(records))
	for _, c := range records {
		layer := CloudLayer{Cover: c.Cover}
		if c.Base != nil {
			layer.BaseFeet = int(*c.Base)
		}
		layers = append(layers, layer)
	}
	return layers
}

// parseVisibility handles the provider's mixed encoding: a JSON number,
// or a string such as "10+" or "6SM". Absent or non-numeric values
// default to 10 SM.
func parseVisibility(raw json.RawMessage) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return defaultVisibSM
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num
	}

	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return defaultVisibSM
	}
	str = strings.TrimSuffix(strings.TrimSpace(str), "SM")
	str = strings.TrimSuffix(str, "+")
	if val, err := strconv.ParseFloat(str, 64); err == nil {
		return val
	}
	return defaultVisibSM
}

// parseWindDirection handles the provider's mixed encoding: degrees as
// a JSON number, or "VRB" for variable wind. nil encodes variable/calm.
func parseWindDirection(raw json.RawMessage) *int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var num int
	if err := json.Unmarshal(raw, &num); err == nil {
		return &num
	}
	return nil
}

// normalizeAltimeter converts the provider's altimeter value to inches
// of mercury. Values above 40 can only be hectopascals (inHg readings
// sit near 30); anything lower is passed through unchanged.
func normalizeAltimeter(altim float64) *float64 {
	if altim > 40 {
		inHg := HpaToInHg(altim)
		return &inHg
	}
	return &altim
}
