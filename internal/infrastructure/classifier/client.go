// Package classifier talks to the hosted image classification service.
package classifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"

	"telehealth-portal/config"
)

var (
	ErrNotConfigured      = errors.New("classifier token is not configured")
	ErrUnsupportedDisease = errors.New("unsupported disease type")
	ErrEmptyImage         = errors.New("image is empty")
	ErrImageTooLarge      = errors.New("image exceeds the upload limit")
	ErrUnsupportedImage   = errors.New("image must be JPEG or PNG")
	ErrResponseTooLarge   = errors.New("classifier response exceeds the size limit")
)

// Diseases lists the disease types the classifier has models for.
var Diseases = []string{"skin", "bone", "lung", "eye"}

var allowedImageTypes = []string{"image/jpeg", "image/png"}

// Error is a non-2xx response from the classifier. Body is the raw response.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("classifier returned status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL  string
	token    string
	maxBytes int64
	http     *http.Client
	log      *logrus.Logger
}

func NewClient(cfg config.ClassifierConfig, log *logrus.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		token:    cfg.Token,
		maxBytes: cfg.MaxUploadBytes,
		http:     &http.Client{Timeout: cfg.Timeout},
		log:      log,
	}
}

func ValidDisease(disease string) bool {
	for _, d := range Diseases {
		if d == disease {
			return true
		}
	}
	return false
}

// responseLimit bounds a reply. The Grad-CAM overlay is a base64 PNG at the
// input resolution, so the bound scales with the upload limit.
func (c *Client) responseLimit() int64 {
	const base = 1 << 20
	if c.maxBytes <= 0 {
		return 4*(10<<20) + base
	}
	return 4*c.maxBytes + base
}

// CheckImage validates an upload locally and returns its detected MIME type.
func (c *Client) CheckImage(image []byte) (string, error) {
	if len(image) == 0 {
		return "", ErrEmptyImage
	}
	if c.maxBytes > 0 && int64(len(image)) > c.maxBytes {
		return "", ErrImageTooLarge
	}
	mt := mimetype.Detect(image)
	if !mimetype.EqualsAny(mt.String(), allowedImageTypes...) {
		return "", fmt.Errorf("%w: got %s", ErrUnsupportedImage, mt.String())
	}
	return mt.String(), nil
}

// Classify sends image to the model for disease. Invalid input is rejected
// before any network call.
func (c *Client) Classify(ctx context.Context, disease, filename string, image []byte) (*Result, error) {
	if !ValidDisease(disease) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDisease, disease)
	}
	if c.token == "" {
		return nil, ErrNotConfigured
	}
	contentType, err := c.CheckImage(image)
	if err != nil {
		return nil, err
	}
	if filename == "" {
		filename = "image"
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if err := mw.WriteField("with_gradcam", "true"); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict/"+disease, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier request: %w", err)
	}
	defer resp.Body.Close()

	limit := c.responseLimit()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read classifier response: %w", err)
	}
	if int64(len(raw)) > limit {
		c.log.Warnf("Classifier response for %s exceeded %d bytes", disease, limit)
		return nil, ErrResponseTooLarge
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warnf("Classifier returned %d for %s", resp.StatusCode, disease)
		return nil, &Error{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	return Normalize(disease, raw)
}
