package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Client calls the external molecular-analysis backend. The ledger only
// depends on success or failure of these calls, never on result content.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the configured backend base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// AnalyzeFile uploads a molecule file for processing with the selected
// approach.
func (c *Client) AnalyzeFile(ctx context.Context, filename string, contents io.Reader, approach Approach) (*FileResult, error) {
	if !approach.Valid() {
		return nil, fmt.Errorf("unknown analysis approach %q", approach)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, contents); err != nil {
		return nil, err
	}
	if err := writer.WriteField("approach", string(approach)); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze/file", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result FileResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, backendError(result.Error)
	}
	return &result, nil
}

// GenerateIsomers asks the backend to enumerate and rank stereoisomers for a
// SMILES string.
func (c *Client) GenerateIsomers(ctx context.Context, smiles string) (*IsomerResult, error) {
	var result IsomerResult
	if err := c.postJSON(ctx, "/isomers", map[string]string{"smiles": smiles}, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, backendError(result.Error)
	}
	return &result, nil
}

// Render2D requests a 2D structure rendering for a SMILES string.
func (c *Client) Render2D(ctx context.Context, smiles string) (*RenderResult, error) {
	return c.render(ctx, "/render/2d", smiles)
}

// Render3D requests an interactive 3D rendering for a SMILES string.
func (c *Client) Render3D(ctx context.Context, smiles string) (*RenderResult, error) {
	return c.render(ctx, "/render/3d", smiles)
}

func (c *Client) render(ctx context.Context, path, smiles string) (*RenderResult, error) {
	var result RenderResult
	if err := c.postJSON(ctx, path, map[string]string{"smiles": smiles}, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, backendError(result.Error)
	}
	return &result, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("analysis backend unreachable: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		// Error payloads still carry {"error": msg} when the backend set one.
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
			return backendError(payload.Error)
		}
		return fmt.Errorf("analysis backend returned status %d", resp.StatusCode)
	}

	return json.Unmarshal(raw, out)
}

func backendError(msg string) error {
	if msg == "" {
		msg = "analysis failed"
	}
	return fmt.Errorf("analysis backend: %s", msg)
}
