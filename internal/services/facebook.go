package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// FacebookClient resolves a Facebook access token to the profile it
// belongs to via the Graph API.
type FacebookClient struct {
	httpClient *http.Client
	graphURL   string
}

type FacebookProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func NewFacebookClient() *FacebookClient {
	return &FacebookClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		graphURL:   "https://graph.facebook.com/v10.0",
	}
}

// VerifyAccessToken fetches the token owner's profile. A token that the
// Graph API rejects yields an error; a profile without an email is also
// rejected since email is the identity key.
func (c *FacebookClient) VerifyAccessToken(accessToken string) (*FacebookProfile, error) {
	endpoint := fmt.Sprintf("%s/me?fields=id,name,email&access_token=%s",
		c.graphURL, url.QueryEscape(accessToken))

	resp, err := c.httpClient.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to reach Graph API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph API returned status %d", resp.StatusCode)
	}

	var profile FacebookProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("facebook profile has no email")
	}

	return &profile, nil
}
