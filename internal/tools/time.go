package tools

import (
	"context"
	"time"

	"github.com/aitools/aitools/internal/schema"
)

type TimeInput struct {
	TimeZone string `json:"timeZone"`
}

type TimeNowResult struct {
	TimeZone  string `json:"timeZone"`
	ISO       string `json:"iso"`
	Formatted string `json:"formatted"`
}

// TimeNow reports the current time in an IANA time zone. now defaults to time.Now.
func TimeNow(now func() time.Time) (*Tool[TimeInput, TimeNowResult], error) {
	if now == nil {
		now = time.Now
	}
	return New(Spec[TimeInput, TimeNowResult]{
		Name:        "time",
		Description: "Get the current date and time in a time zone.",
		Input: schema.Object(
			schema.Prop("timeZone", schema.String("IANA time zone, e.g. Europe/Paris.").WithDefault("UTC")),
		),
		Policy: PolicyFailLoud,
		Execute: func(_ context.Context, in TimeInput) (TimeNowResult, error) {
			loc, err := time.LoadLocation(in.TimeZone)
			if err != nil || in.TimeZone == "" || in.TimeZone == "Local" {
				return TimeNowResult{}, invalidField("timeZone", "unknown time zone "+in.TimeZone)
			}
			t := now().In(loc)
			return TimeNowResult{
				TimeZone:  in.TimeZone,
				ISO:       t.Format(time.RFC3339),
				Formatted: t.Format(time.RFC1123),
			}, nil
		},
	})
}
