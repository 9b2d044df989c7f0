package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

const (
	DefaultGeocodeURL  = "https://nominatim.openstreetmap.org/search"
	DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"
)

// Place is a geocoded location.
type Place struct {
	Name string
	Lat  float64
	Lon  float64
}

// Conditions are current weather readings in the requested unit.
type Conditions struct {
	Temperature float64
	High        float64
	Low         float64
	Humidity    float64 // fraction, 0..1
	WindKph     float64
	Code        int
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Name        string `json:"name"`
}

type openMeteoForecast struct {
	Current struct {
		Temperature      float64 `json:"temperature_2m"`
		RelativeHumidity float64 `json:"relative_humidity_2m"`
		WindSpeed        float64 `json:"wind_speed_10m"`
		WeatherCode      int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		TemperatureMax []float64 `json:"temperature_2m_max"`
		TemperatureMin []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

// WeatherService geocodes with Nominatim and reads Open-Meteo forecasts.
type WeatherService struct {
	geocode     *HTTPClient
	forecast    *HTTPClient
	geocodeURL  string
	forecastURL string
}

// NewWeatherService wires the two upstreams. Empty URLs use the public defaults.
func NewWeatherService(geocode, forecast *HTTPClient, geocodeURL, forecastURL string) *WeatherService {
	if geocodeURL == "" {
		geocodeURL = DefaultGeocodeURL
	}
	if forecastURL == "" {
		forecastURL = DefaultForecastURL
	}
	return &WeatherService{geocode: geocode, forecast: forecast, geocodeURL: geocodeURL, forecastURL: forecastURL}
}

// Geocode resolves a free-text location to coordinates.
func (s *WeatherService) Geocode(ctx context.Context, location string) (Place, error) {
	q := url.Values{}
	q.Set("q", location)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")

	var places []nominatimPlace
	if err := s.geocode.GetJSON(ctx, s.geocodeURL, q, nil, &places); err != nil {
		return Place{}, err
	}
	if len(places) == 0 {
		return Place{}, &UpstreamError{Service: s.geocode.Name(), Message: fmt.Sprintf("location not found: %q", location)}
	}
	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return Place{}, &UpstreamError{Service: s.geocode.Name(), Message: "bad latitude", Err: err}
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return Place{}, &UpstreamError{Service: s.geocode.Name(), Message: "bad longitude", Err: err}
	}
	name := places[0].Name
	if name == "" {
		name = location
	}
	return Place{Name: name, Lat: lat, Lon: lon}, nil
}

// Current fetches current conditions and today's range. fahrenheit selects
// the temperature unit; wind is always km/h.
func (s *WeatherService) Current(ctx context.Context, p Place, fahrenheit bool) (Conditions, error) {
	unit := "celsius"
	if fahrenheit {
		unit = "fahrenheit"
	}
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(p.Lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(p.Lon, 'f', 4, 64))
	q.Set("current", "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code")
	q.Set("daily", "temperature_2m_max,temperature_2m_min")
	q.Set("temperature_unit", unit)
	q.Set("wind_speed_unit", "kmh")
	q.Set("timezone", "auto")
	q.Set("forecast_days", "1")

	var raw openMeteoForecast
	if err := s.forecast.GetJSON(ctx, s.forecastURL, q, nil, &raw); err != nil {
		return Conditions{}, err
	}
	if len(raw.Daily.TemperatureMax) == 0 || len(raw.Daily.TemperatureMin) == 0 {
		return Conditions{}, &UpstreamError{Service: s.forecast.Name(), Message: "daily forecast data is missing"}
	}
	return Conditions{
		Temperature: raw.Current.Temperature,
		High:        raw.Daily.TemperatureMax[0],
		Low:         raw.Daily.TemperatureMin[0],
		Humidity:    raw.Current.RelativeHumidity / 100,
		WindKph:     raw.Current.WindSpeed,
		Code:        raw.Current.WeatherCode,
	}, nil
}

// Describe maps a WMO weather code to a condition label and icon name.
func Describe(code int) (condition, icon string) {
	switch {
	case code == 0:
		return "Sunny", "weather-sun"
	case code <= 2:
		return "Partly cloudy", "weather-partly"
	case code == 3:
		return "Overcast", "weather-cloud"
	case code == 45 || code == 48:
		return "Fog", "weather-fog"
	case code >= 51 && code <= 67, code >= 80 && code <= 82:
		return "Rain", "weather-rain"
	case code >= 71 && code <= 77, code == 85 || code == 86:
		return "Snow", "weather-snow"
	case code >= 95:
		return "Thunderstorm", "weather-storm"
	}
	return "Unknown", "weather-cloud"
}
