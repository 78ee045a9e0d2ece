package testmodels

import "github.com/go-openapi/strfmt"

type RatingSystem struct {

	// Timestamp when the rating system was created.
	// Format: date-time
	CreatedAt *strfmt.DateTime `json:"createdAt,omitempty"`

	// A description of the rating system.
	Description string `json:"description,omitempty"`

	// Unique identifier for the rating system.
	ID string `json:"id,omitempty"`

	// Name of the rating system.
	Name string `json:"name,omitempty"`

	// site Url
	SiteURL string `json:"siteUrl,omitempty"`

	// Tags attached to the rating system.
	Tags []string `json:"tags,omitempty"`
}
