package schema

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Decode copies a normalized argument map into a typed input struct using
// its json tags.
func Decode(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}
