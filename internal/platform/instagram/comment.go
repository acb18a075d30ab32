package instagram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

type Comment struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type commentResponse struct {
	ID     flexibleID `json:"id"`
	Text   string     `json:"text"`
	Status string     `json:"status"`
}

// Comment adds a comment to mediaID. Both "<pk>" and "<pk>_<owner>" ids
// are accepted.
func (c *Client) Comment(ctx context.Context, mediaID, text string) (*Comment, error) {
	if text == "" {
		return nil, fmt.Errorf("empty comment")
	}

	pk, _, _ := strings.Cut(mediaID, "_")

	formData := url.Values{}
	formData.Set("comment_text", text)

	endpoint := fmt.Sprintf("%sapi/v1/web/comments/%s/add/", c.webBaseURL, pk)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(formData.Encode()))
	if err != nil {
		return nil, err
	}
	c.setWebHeaders(req, "")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp commentResponse
	if err := c.getJSON(req, &resp); err != nil {
		return nil, fmt.Errorf("failed to comment on %s: %w", mediaID, err)
	}

	return &Comment{ID: string(resp.ID), Text: resp.Text}, nil
}
