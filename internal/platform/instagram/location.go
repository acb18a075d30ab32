package instagram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Location is a venue that can be attached to a feed post.
type Location struct {
	PK         string  `json:"pk"`
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	ExternalID string  `json:"external_id"`
	Source     string  `json:"external_id_source"`
}

type locationSearchResponse struct {
	Venues []struct {
		ExternalID       flexibleID `json:"external_id"`
		ExternalIDSource string     `json:"external_id_source"`
		Name             string     `json:"name"`
		Address          string     `json:"address"`
		Lat              float64    `json:"lat"`
		Lng              float64    `json:"lng"`
	} `json:"venues"`
	Status string `json:"status"`
}

// SearchLocation looks up venues matching query.
func (c *Client) SearchLocation(ctx context.Context, query string) ([]Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty location query")
	}

	params := url.Values{}
	params.Set("search_query", query)
	params.Set("rank_token", c.UUID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.webBaseURL+"api/v1/location_search/?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	c.setWebHeaders(req, "")

	var resp locationSearchResponse
	if err := c.getJSON(req, &resp); err != nil {
		return nil, fmt.Errorf("location search failed: %w", err)
	}

	locations := make([]Location, 0, len(resp.Venues))
	for _, v := range resp.Venues {
		locations = append(locations, Location{
			PK:         string(v.ExternalID),
			Name:       v.Name,
			Address:    v.Address,
			Lat:        v.Lat,
			Lng:        v.Lng,
			ExternalID: string(v.ExternalID),
			Source:     v.ExternalIDSource,
		})
	}

	return locations, nil
}
