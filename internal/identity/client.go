package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pingup/backend/internal/models"
)

// ErrUserNotFound is returned when the identity provider has no such subject
var ErrUserNotFound = errors.New("identity: user not found")

// ErrNoEmail is returned for accounts without any email address
var ErrNoEmail = errors.New("identity: account has no email address")

// Client reads canonical account data from a Clerk-style users API
type Client struct {
	client    *http.Client
	baseURL   string
	secretKey string
}

func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		client:    &http.Client{Timeout: timeout},
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
	}
}

type emailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type userResponse struct {
	ID                    string         `json:"id"`
	FirstName             string         `json:"first_name"`
	LastName              string         `json:"last_name"`
	ImageURL              string         `json:"image_url"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
	EmailAddresses        []emailAddress `json:"email_addresses"`
}

func (u userResponse) primaryEmail() string {
	for _, e := range u.EmailAddresses {
		if e.ID != "" && e.ID == u.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

// GetProfile fetches the profile of subject
func (c *Client) GetProfile(ctx context.Context, subject string) (models.Profile, error) {
	endpoint := c.baseURL + "/users/" + url.PathEscape(subject)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.Profile{}, err
	}
	req.Header.Set("Accept", "application/json")
	if c.secretKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.secretKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return models.Profile{}, fmt.Errorf("identity request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return models.Profile{}, ErrUserNotFound
	case resp.StatusCode >= http.StatusBadRequest:
		return models.Profile{}, fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	var u userResponse
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return models.Profile{}, fmt.Errorf("decoding identity response: %w", err)
	}

	email := u.primaryEmail()
	if email == "" {
		return models.Profile{}, ErrNoEmail
	}

	return models.Profile{
		Email:     email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		ImageURL:  u.ImageURL,
	}, nil
}
