package tools

import (
	"fmt"
	"time"

	"github.com/aitools/aitools/internal/service"
)

// Upstreams are the clients the built-in tools depend on.
type Upstreams struct {
	Shop      *service.MCPClient
	Stats     *service.StatsService
	Weather   *service.WeatherService
	News      *service.NewsService
	Translate *service.TranslateService
	WebSearch *service.WebSearchService
	QRCode    *service.QRCodeService
	// Timeout overrides the default execution timeout of upstream-backed tools.
	Timeout time.Duration
	Now     func() time.Time
}

type builder func(up Upstreams) (Invoker, error)

func upstreamTool[In, Out any](t *Tool[In, Out], err error, timeout time.Duration) (Invoker, error) {
	if err != nil {
		return nil, err
	}
	return t.WithTimeout(timeout), nil
}

func localTool[In, Out any](t *Tool[In, Out], err error) (Invoker, error) {
	if err != nil {
		return nil, err
	}
	return t, nil
}

// builtins lists the tools in catalog order.
var builtins = []builder{
	func(up Upstreams) (Invoker, error) {
		t, err := SearchProducts(up.Shop)
		return upstreamTool(t, err, up.Timeout)
	},
	func(up Upstreams) (Invoker, error) {
		t, err := Stats(up.Stats)
		return upstreamTool(t, err, up.Timeout)
	},
	func(up Upstreams) (Invoker, error) {
		t, err := Weather(up.Weather)
		return upstreamTool(t, err, up.Timeout)
	},
	func(up Upstreams) (Invoker, error) {
		t, err := News(up.News)
		return upstreamTool(t, err, up.Timeout)
	},
	func(Upstreams) (Invoker, error) {
		t, err := Calculator()
		return localTool(t, err)
	},
	func(up Upstreams) (Invoker, error) {
		t, err := Translate(up.Translate)
		return upstreamTool(t, err, up.Timeout)
	},
	func(up Upstreams) (Invoker, error) {
		t, err := TimeNow(up.Now)
		return localTool(t, err)
	},
	func(up Upstreams) (Invoker, error) {
		t, err := WebSearch(up.WebSearch)
		return upstreamTool(t, err, up.Timeout)
	},
	func(Upstreams) (Invoker, error) {
		t, err := Markdown()
		return localTool(t, err)
	},
	func(up Upstreams) (Invoker, error) {
		t, err := QRCode(up.QRCode)
		return upstreamTool(t, err, up.Timeout)
	},
}

// RegisterBuiltins registers every built-in tool on r.
func RegisterBuiltins(r *Registry, up Upstreams) error {
	for _, build := range builtins {
		t, err := build(up)
		if err != nil {
			return fmt.Errorf("build tool: %w", err)
		}
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}
