package repoclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/arkivo/depositor/common/config"
	"github.com/arkivo/depositor/common/logger"
	"github.com/arkivo/depositor/common/models"
)

// HTTPClient talks to a repository node over its REST API. The transport
// semantics are deliberately thin; the orchestrators only depend on the
// Client interface.
type HTTPClient struct {
	base  string
	token string
	http  *http.Client
	log   *logger.Logger
}

// NewHTTPClient creates a repository client from configuration
func NewHTTPClient(cfg config.RepositoryConfig, log *logger.Logger) *HTTPClient {
	return &HTTPClient{
		base:  strings.TrimRight(cfg.BaseURL, "/"),
		token: cfg.AuthToken,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

// Ping validates the session against the node
func (c *HTTPClient) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, c.base+"/ping", "", nil)
	if err != nil {
		return &Error{Kind: KindTransient, Op: "ping", Err: err}
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, "ping", ""); err != nil {
		return err
	}
	return nil
}

// ObjectExists reports whether an object is stored under pid
func (c *HTTPClient) ObjectExists(ctx context.Context, pid string) (bool, error) {
	resp, err := c.do(ctx, http.MethodHead, c.objectURL(pid), "", nil)
	if err != nil {
		return false, &Error{Kind: KindTransient, Op: "exists", PID: pid, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if err := c.checkStatus(resp, "exists", pid); err != nil {
		return false, err
	}
	return true, nil
}

// CreateObject stores body under pid
func (c *HTTPClient) CreateObject(ctx context.Context, pid string, desc *models.Descriptor, body io.Reader) (string, error) {
	return c.upload(ctx, http.MethodPost, c.objectURL(pid), "create", pid, desc, body)
}

// UpdateObject stores body under newPID, superseding oldPID
func (c *HTTPClient) UpdateObject(ctx context.Context, oldPID, newPID string, desc *models.Descriptor, body io.Reader) (string, error) {
	u := c.objectURL(newPID) + "?supersedes=" + url.QueryEscape(oldPID)
	return c.upload(ctx, http.MethodPut, u, "update", newPID, desc, body)
}

// MintIdentifier requests a fresh identifier under the given scheme
func (c *HTTPClient) MintIdentifier(ctx context.Context, scheme string) (string, error) {
	u := c.base + "/identifiers?scheme=" + url.QueryEscape(scheme)
	resp, err := c.do(ctx, http.MethodPost, u, "", nil)
	if err != nil {
		return "", &Error{Kind: KindTransient, Op: "mint", Err: err}
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, "mint", ""); err != nil {
		return "", err
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", &Error{Kind: KindTransient, Op: "mint", Err: err}
	}
	return strings.TrimSpace(string(raw)), nil
}

// upload streams a multipart request with a "sysmeta" JSON part and an
// "object" content part, the shape repository nodes expect.
func (c *HTTPClient) upload(ctx context.Context, method, u, op, pid string, desc *models.Descriptor, body io.Reader) (string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		sysmeta, err := mw.CreateFormField("sysmeta")
		if err == nil {
			err = json.NewEncoder(sysmeta).Encode(desc)
		}
		if err == nil {
			var object io.Writer
			object, err = mw.CreateFormFile("object", desc.FileName)
			if err == nil {
				_, err = io.Copy(object, body)
			}
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	resp, err := c.do(ctx, method, u, mw.FormDataContentType(), pr)
	if err != nil {
		return "", &Error{Kind: KindTransient, Op: op, PID: pid, Err: err}
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, op, pid); err != nil {
		return "", err
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", &Error{Kind: KindTransient, Op: op, PID: pid, Err: err}
	}
	confirmed := strings.TrimSpace(string(raw))
	if confirmed == "" {
		confirmed = pid
	}
	return confirmed, nil
}

func (c *HTTPClient) do(ctx context.Context, method, u, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.http.Do(req)
}

func (c *HTTPClient) objectURL(pid string) string {
	return c.base + "/objects/" + url.PathEscape(pid)
}

// checkStatus maps HTTP status codes onto the failure taxonomy
func (c *HTTPClient) checkStatus(resp *http.Response, op, pid string) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &Error{Kind: KindAuthExpired, Op: op, PID: pid, Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode == http.StatusNotFound:
		return &Error{Kind: KindNotFound, Op: op, PID: pid, Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode == http.StatusConflict:
		return &Error{Kind: KindConflict, Op: op, PID: pid, Err: fmt.Errorf("status %d", resp.StatusCode)}
	default:
		return &Error{Kind: KindTransient, Op: op, PID: pid, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
}
