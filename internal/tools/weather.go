package tools

import (
	"context"
	"math"

	"github.com/aitools/aitools/internal/schema"
	"github.com/aitools/aitools/internal/service"
)

type WeatherInput struct {
	Location string `json:"location"`
	Unit     string `json:"unit"`
}

type WeatherResult struct {
	Location    string  `json:"location"`
	Unit        string  `json:"unit"`
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Humidity    float64 `json:"humidity"`
	WindKph     float64 `json:"windKph"`
	Icon        string  `json:"icon"`
}

// Weather reports current conditions for a free-text location.
func Weather(svc *service.WeatherService) (*Tool[WeatherInput, WeatherResult], error) {
	return New(Spec[WeatherInput, WeatherResult]{
		Name:        "weather",
		Description: "Get the current weather for a location.",
		Input: schema.Object(
			schema.Prop("location", schema.String("City or place name, e.g. San Francisco.").Require()),
			schema.Prop("unit", schema.String("Temperature unit.").OneOf("C", "F").WithDefault("C")),
		),
		Policy: PolicyFallback,
		Execute: func(ctx context.Context, in WeatherInput) (WeatherResult, error) {
			place, err := svc.Geocode(ctx, in.Location)
			if err != nil {
				return WeatherResult{}, err
			}
			cond, err := svc.Current(ctx, place, in.Unit == "F")
			if err != nil {
				return WeatherResult{}, err
			}
			label, icon := service.Describe(cond.Code)
			return WeatherResult{
				Location:    place.Name,
				Unit:        in.Unit,
				Temperature: round1(cond.Temperature),
				Condition:   label,
				High:        round1(cond.High),
				Low:         round1(cond.Low),
				Humidity:    math.Round(cond.Humidity*100) / 100,
				WindKph:     round1(cond.WindKph),
				Icon:        icon,
			}, nil
		},
		Fallback: func() WeatherResult {
			return WeatherResult{
				Location:    "San Francisco",
				Unit:        "C",
				Temperature: 21,
				Condition:   "Sunny",
				High:        24,
				Low:         18,
				Humidity:    0.45,
				WindKph:     8,
				Icon:        "weather-sun",
			}
		},
	})
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
