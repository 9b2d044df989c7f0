package tools

import (
	"context"

	"github.com/aitools/aitools/internal/schema"
	"github.com/aitools/aitools/internal/service"
)

type TranslateInput struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage"`
}

type TranslateResult struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage"`
	Translated     string `json:"translated"`
}

// Translate translates text through a LibreTranslate-compatible endpoint.
func Translate(svc *service.TranslateService) (*Tool[TranslateInput, TranslateResult], error) {
	return New(Spec[TranslateInput, TranslateResult]{
		Name:        "translate",
		Description: "Translate text into a target language.",
		Input: schema.Object(
			schema.Prop("text", schema.String("Text to translate.").Require()),
			schema.Prop("targetLanguage", schema.String("ISO 639-1 code of the target language, e.g. es.").Require()),
		),
		Policy: PolicyFallback,
		Execute: func(ctx context.Context, in TranslateInput) (TranslateResult, error) {
			if len(in.TargetLanguage) < 2 || len(in.TargetLanguage) > 5 {
				return TranslateResult{}, invalidField("targetLanguage", "must be a language code such as es or pt-BR")
			}
			translated, err := svc.Translate(ctx, in.Text, in.TargetLanguage)
			if err != nil {
				return TranslateResult{}, err
			}
			return TranslateResult{Text: in.Text, TargetLanguage: in.TargetLanguage, Translated: translated}, nil
		},
		Fallback: func() TranslateResult {
			return TranslateResult{Text: "Hello, world!", TargetLanguage: "es", Translated: "¡Hola, mundo!"}
		},
	})
}
