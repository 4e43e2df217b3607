// Package transcribe sends recorded check-in audio to a speech-to-text
// API and tracks the per-patient recording sessions that feed it.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

var ErrNotConfigured = errors.New("transcription API key not configured")

type Clip struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Transcriber interface {
	Transcribe(ctx context.Context, clip Clip) (string, error)
}

type Client struct {
	url    string
	apiKey string
	model  string
	http   *http.Client
}

func NewClient(url, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		url:    url,
		apiKey: apiKey,
		model:  model,
		http:   &http.Client{Timeout: timeout},
	}
}

type apiResponse struct {
	Text  string `json:"text"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Transcribe posts one clip and returns the recognised text. It makes a
// single attempt.
func (c *Client) Transcribe(ctx context.Context, clip Clip) (string, error) {
	op := "transcribe.Client.Transcribe"
	if c.apiKey == "" {
		return "", fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	body, contentType, err := c.encode(clip)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%s: read body: %w", op, err)
	}

	var out apiResponse
	decodeErr := json.Unmarshal(raw, &out)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg := snippet(raw)
		if decodeErr == nil && out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return "", fmt.Errorf("%s: status %d: %s", op, res.StatusCode, msg)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("%s: decode response: %w", op, decodeErr)
	}
	return strings.TrimSpace(out.Text), nil
}

func (c *Client) encode(clip Clip) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	filename := clip.Filename
	if filename == "" {
		filename = "clip.webm"
	}
	contentType := clip.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(clip.Data); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("model", c.model); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

const snippetLen = 200

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if r := []rune(s); len(r) > snippetLen {
		s = string(r[:snippetLen])
	}
	return s
}
