package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jonasfh/picobell-api/models"
)

var (
	// ErrInvalidCredentials is returned by Login on a rejected email/password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoActiveRing is returned by OpenDoor when no unconsumed ring exists
	// inside the validity window.
	ErrNoActiveRing = errors.New("no active ring")
	// ErrNotLinked is returned by OpenDoor when the user has no link to the
	// apartment.
	ErrNotLinked = errors.New("not linked to apartment")
	// ErrNoDevice is returned by OpenDoor when the apartment has no doorbell
	// device registered.
	ErrNoDevice = errors.New("apartment has no device")
)

// Client is the HTTP client for the picobell API user surface.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	token string
}

// New creates a client against the given base URL, e.g. "https://bell.example.com".
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Token returns the session token from the last successful Login, for reuse
// with WSRingSource.
func (c *Client) Token() string {
	return c.token
}

// Login exchanges email and password for a session token and stores it on
// the client for subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return err
		}
		c.token = out.Token
		return nil
	case http.StatusUnauthorized:
		return ErrInvalidCredentials
	default:
		return unexpectedStatus(resp)
	}
}

// OpenDoor requests the door open for the apartment. A success only flags
// the latest valid ring; the lock releases when the device next polls.
// Rejections map to ErrNotLinked, ErrNoActiveRing and ErrNoDevice.
func (c *Client) OpenDoor(ctx context.Context, apartmentID string) (string, error) {
	body, err := json.Marshal(map[string]string{"apartment_id": apartmentID})
	if err != nil {
		return "", err
	}
	req, err := c.authedRequest(ctx, http.MethodPost, "/doorbell/open", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out struct {
			EventID string `json:"event_id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return "", err
		}
		return out.EventID, nil
	case http.StatusForbidden:
		if strings.Contains(errorMessage(resp), "no active ring") {
			return "", ErrNoActiveRing
		}
		return "", ErrNotLinked
	case http.StatusNotFound:
		return "", ErrNoDevice
	default:
		return "", unexpectedStatus(resp)
	}
}

// RecentEvents lists the apartment's recent doorbell events, newest first.
func (c *Client) RecentEvents(ctx context.Context, apartmentID string) ([]models.DoorbellEvent, error) {
	req, err := c.authedRequest(ctx, http.MethodGet, "/doorbell/events?apartment_id="+apartmentID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unexpectedStatus(resp)
	}
	var events []models.DoorbellEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) authedRequest(ctx context.Context, method, path string, body *bytes.Reader) (*http.Request, error) {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.BaseURL+path, nil)
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	return req, nil
}

func errorMessage(resp *http.Response) string {
	var out models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ""
	}
	return out.Error
}

func unexpectedStatus(resp *http.Response) error {
	if msg := errorMessage(resp); msg != "" {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg)
	}
	return fmt.Errorf("unexpected status %d", resp.StatusCode)
}
