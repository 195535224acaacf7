package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Profile is the public summary of a GitHub account.
type Profile struct {
	Login     string `json:"login"`
	Name      string `json:"name,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Followers int    `json:"followers"`
}

type restUser struct {
	Login     string  `json:"login"`
	Name      *string `json:"name"`
	Bio       *string `json:"bio"`
	Followers int     `json:"followers"`
}

// GetUser resolves a username to its profile. A missing account yields
// ErrNotFound.
func (c *Client) GetUser(ctx context.Context, username string) (*Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: empty username", ErrNotFound)
	}

	var u restUser
	if err := c.getJSON(ctx, "/users/"+url.PathEscape(username), nil, &u); err != nil {
		return nil, fmt.Errorf("get user %s: %w", username, err)
	}

	return &Profile{
		Login:     u.Login,
		Name:      strings.TrimSpace(deref(u.Name)),
		Bio:       strings.TrimSpace(deref(u.Bio)),
		Followers: u.Followers,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
