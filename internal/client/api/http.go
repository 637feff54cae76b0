package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/emergqr/emergqr/internal/client/models"
	"github.com/emergqr/emergqr/internal/common"
)

const defaultTimeout = 15 * time.Second

type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *HTTPClient) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", creds, &resp); err != nil {
		return nil, err
	}
	if err := checkAuthResponse(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Register(ctx context.Context, payload models.RegisterPayload) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", payload, &resp); err != nil {
		return nil, err
	}
	if err := checkAuthResponse(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/change-password", req, nil)
}

func (c *HTTPClient) Profile(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	if err := c.doJSON(ctx, http.MethodGet, "/clients/me/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) UploadAvatar(ctx context.Context, filename string, data []byte) (*models.Profile, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreatePart(avatarPartHeader(filepath.Base(filename)))
	if err != nil {
		return nil, fmt.Errorf("build avatar form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("build avatar form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build avatar form: %w", err)
	}

	var p models.Profile
	if err := c.do(ctx, http.MethodPost, "/clients/me/avatar", &body, mw.FormDataContentType(), &p); err != nil {
		return nil, err
	}
	if p.UUID == "" {
		return nil, fmt.Errorf("%w: profile without uuid", ErrProtocol)
	}
	return &p, nil
}

func (c *HTTPClient) QR(ctx context.Context) (*models.QRCode, error) {
	return c.qr(ctx, http.MethodGet, "/qr/me")
}

func (c *HTTPClient) RegenerateQR(ctx context.Context) (*models.QRCode, error) {
	return c.qr(ctx, http.MethodPost, "/qr/me/regenerate")
}

func (c *HTTPClient) qr(ctx context.Context, method, path string) (*models.QRCode, error) {
	var q models.QRCode
	if err := c.doJSON(ctx, method, path, nil, &q); err != nil {
		return nil, err
	}
	if q.URL == "" {
		return nil, fmt.Errorf("%w: qr response without url", ErrProtocol)
	}
	return &q, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, "", nil)
}

func checkAuthResponse(resp *models.AuthResponse) error {
	if resp.AccessToken == "" {
		return fmt.Errorf("%w: missing access_token", ErrProtocol)
	}
	if resp.Client == nil || resp.Client.UUID == "" {
		return fmt.Errorf("%w: missing client uuid", ErrProtocol)
	}
	return nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.bearer(); token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return mapTransportError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return mapTransportError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Detail: parseDetail(raw)}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		if out != nil {
			return fmt.Errorf("%w: empty body", ErrProtocol)
		}
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	return nil
}

// A cancelled caller context stays a cancellation; every other transport
// failure means the server could not be reached.
func mapTransportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// parseDetail extracts {detail} in either its string or validation-list form,
// falling back to {message} and then to the raw body.
func parseDetail(raw []byte) string {
	var body struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}

	if len(body.Detail) > 0 {
		var s string
		if err := json.Unmarshal(body.Detail, &s); err == nil {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(body.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	return body.Message
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// avatarPartHeader labels the file part with an image type taken from the
// extension, e.g. image/png. Files without an extension go as octet-stream.
func avatarPartHeader(name string) textproto.MIMEHeader {
	ctype := "application/octet-stream"
	if ext := strings.ToLower(filepath.Ext(name)); ext != "" {
		ctype = mime.TypeByExtension(ext)
		if !strings.HasPrefix(ctype, "image/") {
			ctype = "image/" + strings.TrimPrefix(ext, ".")
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(name)))
	h.Set("Content-Type", ctype)
	return h
}
