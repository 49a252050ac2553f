package forge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/aciforge/portal/internal/models"
)

// Client talks to the remote ACI FORGE API. All persistent state lives
// behind it; the portal only caches what it fetches here.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient constructs a client targeting the provided base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// LoginResponse is the token pair issued by the remote API.
type LoginResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	User         models.User `json:"user"`
}

// listEnvelope is the canonical list contract: every list endpoint wraps
// its records, the client never special-cases bare arrays.
type listEnvelope struct {
	Requests []models.MaintenanceRequest `json:"requests"`
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request body")
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrapf(err, "decode %s %s response", method, path)
		}
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthenticated
	case resp.StatusCode == http.StatusForbidden:
		return ErrForbidden
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	}

	// FastAPI reports failures as {"detail": "..."}.
	var remote struct {
		Detail string `json:"detail"`
	}
	if payload, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil {
		_ = json.Unmarshal(payload, &remote)
	}
	return &RemoteError{StatusCode: resp.StatusCode, Detail: remote.Detail}
}

// Health pings the remote API root health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "health check")
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var out LoginResponse
	in := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListRequests(ctx context.Context, token string) ([]models.MaintenanceRequest, error) {
	var out listEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/maintenance-requests", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Requests, nil
}

func (c *Client) ListMyRequests(ctx context.Context, token string) ([]models.MaintenanceRequest, error) {
	var out listEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/maintenance-requests/my-requests", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Requests, nil
}

func (c *Client) Statistics(ctx context.Context, token string) (*models.Statistics, error) {
	var out models.Statistics
	if err := c.do(ctx, http.MethodGet, "/api/maintenance-requests/statistics", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetRequest(ctx context.Context, token string, id int) (*models.MaintenanceRequest, error) {
	var out models.MaintenanceRequest
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/maintenance-requests/%d", id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateRequest(ctx context.Context, token string, in models.MaintenanceRequestInput) (*models.MaintenanceRequest, error) {
	var out models.MaintenanceRequest
	if err := c.do(ctx, http.MethodPost, "/api/maintenance-requests", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRequestStatus(ctx context.Context, token string, id int, status models.RequestStatus) (*models.MaintenanceRequest, error) {
	var out models.MaintenanceRequest
	in := map[string]models.RequestStatus{"status": status}
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/maintenance-requests/%d/status", id), token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRequest(ctx context.Context, token string, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/maintenance-requests/%d", id), token, nil, nil)
}

// Attachment is a file queued for upload.
type Attachment struct {
	Filename string
	Content  io.Reader
}

// UploadAttachments posts the given files as a multipart form.
func (c *Client) UploadAttachments(ctx context.Context, token string, id int, files []Attachment) error {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range files {
		part, err := writer.CreateFormFile("files", f.Filename)
		if err != nil {
			return errors.Wrap(err, "create form file")
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return errors.Wrapf(err, "copy %s", f.Filename)
		}
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "close multipart writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/maintenance-requests/%d/upload", c.baseURL, id), body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "upload attachments")
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

// DownloadAttachment streams an attachment. The remote API accepts the
// token as a query parameter so browsers can open files in a new tab.
// Callers must close the returned reader.
func (c *Client) DownloadAttachment(ctx context.Context, token string, id int, filename string) (io.ReadCloser, string, error) {
	u := fmt.Sprintf("%s/api/maintenance-requests/%d/attachments/%s?token=%s",
		c.baseURL, id, url.PathEscape(filename), url.QueryEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", errors.Wrap(err, "build request")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", errors.Wrapf(err, "download %s", filename)
	}
	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, "", err
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

func (c *Client) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	var out []models.User
	if err := c.do(ctx, http.MethodGet, "/api/users", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateUser(ctx context.Context, token string, in models.UserInput) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPost, "/api/users", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, token string, id int, in models.UserUpdate) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/users/%d", id), token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, token string, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/users/%d", id), token, nil, nil)
}

func (c *Client) SendCredentials(ctx context.Context, token string, id int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/users/send-credentials/%d", id), token, nil, nil)
}

func (c *Client) SendCredentialsToAll(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/users/send-credentials-to-all", token, nil, nil)
}

func (c *Client) ListRoles(ctx context.Context, token string) ([]models.Role, error) {
	var out []models.Role
	if err := c.do(ctx, http.MethodGet, "/api/roles", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListTools(ctx context.Context, token string) ([]models.Tool, error) {
	var out []models.Tool
	if err := c.do(ctx, http.MethodGet, "/api/tools", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ToolAccess asks the remote API whether the caller may launch a tool.
func (c *Client) ToolAccess(ctx context.Context, token, name string) error {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/api/tools/%s/access", url.PathEscape(name)), token, nil, nil)
}
