package instagram

import "errors"

// Media identifies a published feed post or story.
type Media struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	PK   string `json:"pk"`
}

// Usertag places a tagged account on an image; X and Y are fractions of
// the image width and height.
type Usertag struct {
	UserID string
	X      float64
	Y      float64
}

type PhotoOptions struct {
	Caption         string
	Usertags        []Usertag
	Location        *Location
	DisableComments bool
	DisableLikes    bool
}

type configureResponse struct {
	Media struct {
		ID   string     `json:"id"`
		Code string     `json:"code"`
		PK   flexibleID `json:"pk"`
	} `json:"media"`
	Status string `json:"status"`
}

func (r *configureResponse) media() (*Media, error) {
	if r.Media.ID == "" && r.Media.PK == "" {
		return nil, errors.New("configure response has no media")
	}

	return &Media{
		ID:   r.Media.ID,
		Code: r.Media.Code,
		PK:   string(r.Media.PK),
	}, nil
}
