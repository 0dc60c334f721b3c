// Package apiclient is the REST client for the document-ingestion API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/raghq/docpipe/internal/models"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type listResponse struct {
	Documents []models.Document `json:"documents"`
	Count     int               `json:"count"`
}

func (c *Client) List(ctx context.Context) ([]models.Document, error) {
	var out listResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/documents", nil, &out); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

func (c *Client) GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/documents/"+id.String(), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/v1/documents/"+id.String(), nil, nil)
}

func (c *Client) Requeue(ctx context.Context, id uuid.UUID) error {
	return c.doJSON(ctx, http.MethodPost, "/api/v1/documents/"+id.String()+"/requeue", nil, nil)
}

// Analysis calls the joint analysis endpoint. A 404 means the deployment
// does not serve it (the document's existence was already established by
// the primary fetch); callers degrade rather than fail.
func (c *Client) Analysis(ctx context.Context, id uuid.UUID) (*models.AnalysisResult, error) {
	var out models.AnalysisResult
	err := c.doJSON(ctx, http.MethodGet, "/api/v1/documents/"+id.String()+"/analysis", nil, &out)
	if isNotFound(err) {
		return nil, ErrAnalysisUnsupported
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type uploadRequest struct {
	Name string `json:"name,omitempty"`
	Text string `json:"text,omitempty"`
	URL  string `json:"url,omitempty"`
}

func (c *Client) UploadText(ctx context.Context, text, name string) (*models.Document, error) {
	var doc models.Document
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/documents", uploadRequest{Name: name, Text: text}, &doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) UploadURL(ctx context.Context, sourceURL, name string) (*models.Document, error) {
	var doc models.Document
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/documents", uploadRequest{Name: name, URL: sourceURL}, &doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) UploadFile(ctx context.Context, path, name string) (*models.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if name == "" {
		name = filepath.Base(path)
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("create multipart: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := mw.WriteField("name", name); err != nil {
		return nil, fmt.Errorf("write name field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/documents", body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var doc models.Document
	if err := c.send(req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, ErrNotFound)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, errorMessage(resp))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorMessage(resp *http.Response) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Sprintf("%s (%d)", body.Error, resp.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d", resp.StatusCode)
}
