package tools

import (
	"context"
	"encoding/base64"

	"github.com/aitools/aitools/internal/schema"
	"github.com/aitools/aitools/internal/service"
)

type QRCodeInput struct {
	Data string `json:"data"`
	Size int    `json:"size"`
}

// QRCodeResult references the generated image by URL and inline data URL.
type QRCodeResult struct {
	Data    string `json:"data"`
	Size    int    `json:"size"`
	URL     string `json:"url"`
	DataURL string `json:"dataUrl"`
}

// QRCode renders text as a QR code image. Failures are always surfaced.
func QRCode(svc *service.QRCodeService) (*Tool[QRCodeInput, QRCodeResult], error) {
	return New(Spec[QRCodeInput, QRCodeResult]{
		Name:        "qrcode",
		Description: "Generate a QR code image for a URL or text.",
		Input: schema.Object(
			schema.Prop("data", schema.String("URL or text to encode.").Require()),
			schema.Prop("size", schema.Integer("Image width and height in pixels.").Between(100, 1000).WithDefault(300)),
		),
		Policy: PolicyFailLoud,
		Execute: func(ctx context.Context, in QRCodeInput) (QRCodeResult, error) {
			if in.Data == "" {
				return QRCodeResult{}, invalidField("data", "must not be empty")
			}
			img, err := svc.Generate(ctx, in.Data, in.Size)
			if err != nil {
				return QRCodeResult{}, err
			}
			return QRCodeResult{
				Data:    in.Data,
				Size:    in.Size,
				URL:     img.URL,
				DataURL: "data:" + img.ContentType + ";base64," + base64.StdEncoding.EncodeToString(img.Data),
			}, nil
		},
	})
}
