package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

const (
	DefaultQRCodeURL = "https://api.qrserver.com/v1/create-qr-code/"
	maxQRCodeBytes   = 1 << 20
)

// QRImage is a generated QR code image.
type QRImage struct {
	URL         string
	ContentType string
	Data        []byte
}

// QRCodeService renders QR codes through the goqr.me API.
type QRCodeService struct {
	http     *HTTPClient
	endpoint string
}

func NewQRCodeService(c *HTTPClient, endpoint string) *QRCodeService {
	if endpoint == "" {
		endpoint = DefaultQRCodeURL
	}
	return &QRCodeService{http: c, endpoint: endpoint}
}

// Generate renders data as a size x size PNG. The response must be an image.
func (s *QRCodeService) Generate(ctx context.Context, data string, size int) (QRImage, error) {
	q := url.Values{}
	q.Set("data", data)
	q.Set("size", fmt.Sprintf("%dx%d", size, size))
	q.Set("format", "png")
	imageURL := s.endpoint + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return QRImage{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := s.http.Do(ctx, req)
	if err != nil {
		return QRImage{}, err
	}
	defer resp.Body.Close()

	ct, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(ct, "image/") {
		return QRImage{}, &UpstreamError{Service: s.http.Name(), Message: fmt.Sprintf("unexpected content type %q", resp.Header.Get("Content-Type"))}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxQRCodeBytes+1))
	if err != nil {
		return QRImage{}, &UpstreamError{Service: s.http.Name(), Message: "read image", Err: err}
	}
	if len(body) == 0 || len(body) > maxQRCodeBytes {
		return QRImage{}, &UpstreamError{Service: s.http.Name(), Message: fmt.Sprintf("image size %d out of range", len(body))}
	}
	return QRImage{URL: imageURL, ContentType: ct, Data: body}, nil
}
