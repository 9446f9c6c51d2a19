// Package pinning uploads files to a Pinata compatible IPFS pinning
// service.
package pinning

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

	"github.com/sethgrid/pester"

	"balloting-backend/errors"
	"balloting-backend/metrics"
)

const (
	PinFilePath     = "/pinning/pinFileToIPFS"
	DefaultTimeout  = 60 * time.Second
	MaxResponseSize = 1 << 20
)

type HttpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type BackoffStrategy = pester.BackoffStrategy

type Credentials struct {
	JWT       string
	APIKey    string
	APISecret string
}

func (c Credentials) Validate() error {
	if len(c.JWT) > 0 {
		return nil
	}
	if len(c.APIKey) < 1 || len(c.APISecret) < 1 {
		return errors.InvalidConfig.Clone().SetData("pinata", "either jwt or api_key and api_secret are required")
	}
	return nil
}

type PinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

type Client struct {
	endpoint    string
	credentials Credentials
	doer        HttpDoer
}

// NewClient returns a client that makes up to maxRetries attempts per
// upload, retrying on transport errors and 5xx responses.
func NewClient(endpoint string, credentials Credentials, maxRetries int, backoff BackoffStrategy) (*Client, error) {
	if err := credentials.Validate(); err != nil {
		return nil, err
	}

	if maxRetries < 1 {
		maxRetries = 1
	}

	hc := &http.Client{Timeout: DefaultTimeout}

	ec := pester.NewExtendedClient(hc)
	{
		ec.MaxRetries = maxRetries
		ec.Concurrency = 1
		if backoff != nil {
			ec.Backoff = backoff
		}
	}

	return &Client{
		endpoint:    strings.TrimSuffix(endpoint, "/"),
		credentials: credentials,
		doer:        ec,
	}, nil
}

func (c *Client) authorize(req *http.Request) {
	if len(c.credentials.JWT) > 0 {
		req.Header.Set("Authorization", "Bearer "+c.credentials.JWT)
		return
	}
	req.Header.Set("pinata_api_key", c.credentials.APIKey)
	req.Header.Set("pinata_secret_api_key", c.credentials.APISecret)
}

func multipartBody(path string) (*bytes.Buffer, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	meta, err := json.Marshal(map[string]string{"name": filepath.Base(path)})
	if err != nil {
		return nil, "", err
	}
	if err := writer.WriteField("pinataMetadata", string(meta)); err != nil {
		return nil, "", err
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

// PinFile uploads the file at path and returns its content identifier.
func (c *Client) PinFile(ctx context.Context, path string) (*PinResponse, error) {
	pinned, err := c.pinFile(ctx, path)
	if err != nil {
		metrics.Pinning.UploadsTotal.With("result", "error").Add(1)
		return nil, err
	}
	metrics.Pinning.UploadsTotal.With("result", "ok").Add(1)
	return pinned, nil
}

func (c *Client) pinFile(ctx context.Context, path string) (*PinResponse, error) {
	body, contentType, err := multipartBody(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", c.endpoint+PinFilePath, body)
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", contentType)
	c.authorize(req)

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read pinning response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.PinningFailed.Clone().
			SetData("file", filepath.Base(path)).
			SetData("status", resp.StatusCode).
			SetData("body", string(data))
	}

	var pinned PinResponse
	if err := json.Unmarshal(data, &pinned); err != nil {
		return nil, fmt.Errorf("failed to decode pinning response: %w", err)
	}
	if len(pinned.IpfsHash) < 1 {
		return nil, errors.PinningFailed.Clone().
			SetData("file", filepath.Base(path)).
			SetData("body", string(data))
	}

	log.Debug("file pinned", "file", path, "cid", pinned.IpfsHash, "size", pinned.PinSize)
	return &pinned, nil
}
