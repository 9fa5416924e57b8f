// Package client talks to the gateway API the way the inbox CLI needs it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"smsvault/internal/common"
	"smsvault/internal/logger"
	"smsvault/internal/sms"
)

// APIError is any response the client did not expect.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL       string
	authorization string
	key           []byte
	http          *http.Client
	log           logger.Logger
}

// New returns a client that authenticates with the gateway scheme derived
// from authKey. encryptionKey may be nil; bodies are then shown as served.
func New(baseURL, authKey string, encryptionKey []byte, log logger.Logger) *Client {
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		authorization: common.CisabCredential(authKey),
		key:           encryptionKey,
		http:          createHTTPClient(),
		log:           log,
	}
}

// UseBearer switches the client to a signed token instead of the shared key.
func (c *Client) UseBearer(token string) {
	c.authorization = common.SchemeBearer + " " + token
}

func createHTTPClient() *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}
}

func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}
	return nil
}

// List fetches every message, newest first.
func (c *Client) List(ctx context.Context) ([]*common.Message, error) {
	resp, err := c.do(ctx, http.MethodGet, "/get", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readAPIError(resp)
	}

	var messages []*common.Message
	if err := json.NewDecoder(resp.Body).Decode(&messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	for _, m := range messages {
		c.normalize(m)
	}
	return messages, nil
}

func (c *Client) Get(ctx context.Context, id string) (*common.Message, error) {
	resp, err := c.do(ctx, http.MethodGet, "/get/"+id, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, common.ErrNotFound
	default:
		return nil, readAPIError(resp)
	}

	var msg common.Message
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}
	c.normalize(&msg)
	return &msg, nil
}

// Send posts msg and returns the id the server assigned.
func (c *Client) Send(ctx context.Context, msg common.Message) (string, error) {
	msg.ID = nil
	body, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to encode message: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/set", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", readAPIError(resp)
	}

	location := resp.Header.Get("Location")
	if !strings.HasPrefix(location, "/get/") {
		return "", errors.New("server did not return the new message location")
	}
	return strings.TrimPrefix(location, "/get/"), nil
}

// normalize lets a row served by an older server, which returned bodies as
// stored, still be read.
func (c *Client) normalize(m *common.Message) {
	if len(c.key) == 0 {
		return
	}
	m.SMS = sms.NormalizeStored(m.SMS, c.key, c.log)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("error building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.authorization)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling %s %s: %w", method, path, err)
	}
	return resp, nil
}

func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
