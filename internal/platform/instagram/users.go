package instagram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

type User struct {
	PK            string `json:"pk"`
	Username      string `json:"username"`
	FullName      string `json:"full_name"`
	ProfilePicURL string `json:"profile_pic_url"`
	IsPrivate     bool   `json:"is_private"`
	IsVerified    bool   `json:"is_verified"`
}

type userInfoResponse struct {
	User struct {
		PK            flexibleID `json:"pk"`
		Username      string     `json:"username"`
		FullName      string     `json:"full_name"`
		ProfilePicURL string     `json:"profile_pic_url"`
		IsPrivate     bool       `json:"is_private"`
		IsVerified    bool       `json:"is_verified"`
	} `json:"user"`
	Status string `json:"status"`
}

type webProfileResponse struct {
	Data struct {
		User *struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	} `json:"data"`
	Status string `json:"status"`
}

// UserInfo fetches the public profile of userID.
func (c *Client) UserInfo(ctx context.Context, userID int64) (*User, error) {
	if userID == 0 {
		return nil, ErrNotLoggedIn
	}

	endpoint := fmt.Sprintf("%sapi/v1/users/%d/info/", c.webBaseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.setWebHeaders(req, "")

	var resp userInfoResponse
	if err := c.getJSON(req, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}

	pk := string(resp.User.PK)
	if pk == "" {
		pk = strconv.FormatInt(userID, 10)
	}

	return &User{
		PK:            pk,
		Username:      resp.User.Username,
		FullName:      resp.User.FullName,
		ProfilePicURL: resp.User.ProfilePicURL,
		IsPrivate:     resp.User.IsPrivate,
		IsVerified:    resp.User.IsVerified,
	}, nil
}

// UserIDFromUsername resolves a username to its numeric account id.
func (c *Client) UserIDFromUsername(ctx context.Context, username string) (string, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return "", fmt.Errorf("empty username")
	}

	endpoint := c.webBaseURL + "api/v1/users/web_profile_info/?username=" + url.QueryEscape(strings.ToLower(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	c.setWebHeaders(req, username+"/")

	var resp webProfileResponse
	if err := c.getJSON(req, &resp); err != nil {
		return "", fmt.Errorf("failed to resolve user %q: %w", username, err)
	}

	if resp.Data.User == nil || resp.Data.User.ID == "" {
		return "", fmt.Errorf("user %q not found", username)
	}

	return resp.Data.User.ID, nil
}

// flexibleID accepts ids encoded either as JSON numbers or strings.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		s = ""
	}
	*f = flexibleID(s)
	return nil
}
