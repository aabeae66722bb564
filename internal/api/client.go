package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "GIFSTASH_HTTP_TIMEOUT"
	apiTokenEnvKey     = "GIFSTASH_API_TOKEN"
	adminTokenEnvKey   = "GIFSTASH_ADMIN_TOKEN"
)

// Client is a simple HTTP client for the gifstash API.
type Client struct {
	baseURL    string
	http       *http.Client
	authToken  string
	adminToken string
}

var (
	_ CollectionAPI = (*Client)(nil)
	_ PopupAPI      = (*Client)(nil)
)

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: httpTimeoutFromEnv()},
		authToken:  strings.TrimSpace(os.Getenv(apiTokenEnvKey)),
		adminToken: strings.TrimSpace(os.Getenv(adminTokenEnvKey)),
	}
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

func (c *Client) GetInfo(ctx context.Context) (InfoResponse, error) {
	var resp InfoResponse
	err := c.do(ctx, http.MethodGet, "/v1/info", nil, nil, &resp)
	return resp, err
}

func (c *Client) ListClips(ctx context.Context) ([]ClipResponse, error) {
	var resp []ClipResponse
	err := c.do(ctx, http.MethodGet, "/v1/clips", nil, nil, &resp)
	return resp, err
}

// GetClip returns nil without an error when the clip does not exist.
func (c *Client) GetClip(ctx context.Context, id string) (*ClipResponse, error) {
	var resp ClipResponse
	err := c.do(ctx, http.MethodGet, clipPath(id), nil, nil, &resp)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) AddClip(ctx context.Context, req ClipCreateRequest) (ClipResponse, error) {
	var resp ClipResponse
	err := c.do(ctx, http.MethodPost, "/v1/clips", nil, req, &resp)
	return resp, err
}

func (c *Client) UpdateClip(ctx context.Context, id string, req ClipUpdateRequest) (ClipResponse, error) {
	var resp ClipResponse
	err := c.do(ctx, http.MethodPatch, clipPath(id), nil, req, &resp)
	return resp, err
}

func (c *Client) DeleteClip(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, clipPath(id), nil, nil, nil)
}

func (c *Client) SearchClips(ctx context.Context, query string) ([]ClipResponse, error) {
	var resp []ClipResponse
	err := c.do(ctx, http.MethodGet, "/v1/clips/search", url.Values{"q": []string{query}}, nil, &resp)
	return resp, err
}

func (c *Client) ClipFilePath(ctx context.Context, id string) (string, error) {
	var resp ClipPathResponse
	if err := c.do(ctx, http.MethodGet, clipPath(id)+"/path", nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Path, nil
}

func (c *Client) CopyClip(ctx context.Context, id string) (CopyResponse, error) {
	var resp CopyResponse
	err := c.do(ctx, http.MethodPost, clipPath(id)+"/copy", nil, nil, &resp)
	return resp, err
}

// ClipContent streams the raw bytes of a clip to w.
func (c *Client) ClipContent(ctx context.Context, id string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+clipPath(id)+"/content", nil)
	if err != nil {
		return err
	}
	c.setAuthHeader(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

func (c *Client) AttachLabel(ctx context.Context, clipID string, labelID int64) error {
	return c.do(ctx, http.MethodPost, clipLabelPath(clipID, labelID), nil, nil, nil)
}

func (c *Client) DetachLabel(ctx context.Context, clipID string, labelID int64) error {
	return c.do(ctx, http.MethodDelete, clipLabelPath(clipID, labelID), nil, nil, nil)
}

func (c *Client) ListLabels(ctx context.Context) ([]LabelResponse, error) {
	var resp []LabelResponse
	err := c.do(ctx, http.MethodGet, "/v1/labels", nil, nil, &resp)
	return resp, err
}

func (c *Client) CreateLabel(ctx context.Context, name string) (LabelResponse, error) {
	var resp LabelResponse
	err := c.do(ctx, http.MethodPost, "/v1/labels", nil, LabelRequest{Name: name}, &resp)
	return resp, err
}

func (c *Client) RenameLabel(ctx context.Context, id int64, name string) (LabelResponse, error) {
	var resp LabelResponse
	err := c.do(ctx, http.MethodPatch, labelPath(id), nil, LabelRequest{Name: name}, &resp)
	return resp, err
}

func (c *Client) DeleteLabel(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, labelPath(id), nil, nil, nil)
}

func (c *Client) ClipsForLabel(ctx context.Context, labelID int64) ([]ClipResponse, error) {
	var resp []ClipResponse
	err := c.do(ctx, http.MethodGet, labelPath(labelID)+"/clips", nil, nil, &resp)
	return resp, err
}

func (c *Client) AdminSweepOrphans(ctx context.Context, req OrphanSweepRequest) (OrphanSweepResponse, error) {
	var resp OrphanSweepResponse
	err := c.doAdmin(ctx, http.MethodPost, "/v1/admin/gc", req, &resp)
	return resp, err
}

func (c *Client) AdminImportLegacy(ctx context.Context, req LegacyImportRequest) (LegacyImportResponse, error) {
	var resp LegacyImportResponse
	err := c.doAdmin(ctx, http.MethodPost, "/v1/admin/import-legacy", req, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := newJSONRequest(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	c.setAuthHeader(req)
	return c.send(req, out)
}

func (c *Client) doAdmin(ctx context.Context, method, path string, body any, out any) error {
	req, err := newJSONRequest(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	c.setAuthHeader(req)
	c.setAdminHeader(req)
	return c.send(req, out)
}

func newJSONRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: resp.Status}
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		apiErr.Message = errResp.Error
		apiErr.Code = errResp.Code
		apiErr.ErrorCode = errResp.ErrorCode
	}
	return apiErr
}

func (c *Client) setAuthHeader(req *http.Request) {
	if c.authToken == "" || req == nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.authToken)
}

func (c *Client) setAdminHeader(req *http.Request) {
	if c.adminToken == "" || req == nil {
		return
	}
	req.Header.Set("X-Admin-Token", c.adminToken)
}

func clipPath(id string) string {
	return "/v1/clips/" + url.PathEscape(id)
}

func labelPath(id int64) string {
	return "/v1/labels/" + strconv.FormatInt(id, 10)
}

func clipLabelPath(clipID string, labelID int64) string {
	return clipPath(clipID) + "/labels/" + strconv.FormatInt(labelID, 10)
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
