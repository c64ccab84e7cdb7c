package models

import (
	"strings"
	"time"

	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
)

// MediaType is a required evidence category for submission.
type MediaType string

const (
	MediaPhoto          MediaType = "photo"
	MediaDocument       MediaType = "document"
	MediaWalkthrough360 MediaType = "walkthrough360"
)

// RequiredMediaTypes must all be present before a unit can be submitted.
var RequiredMediaTypes = []MediaType{MediaPhoto, MediaDocument, MediaWalkthrough360}

// ParseMediaType normalizes input; "360" is accepted for walkthrough360.
func ParseMediaType(s string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "photo":
		return MediaPhoto, nil
	case "document":
		return MediaDocument, nil
	case "walkthrough360", "360":
		return MediaWalkthrough360, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "media type must be photo, document or walkthrough360")
	}
}

// Media is a reference to listing evidence held in external blob storage.
// Locked media can no longer be replaced or added to.
type Media struct {
	ID        id.MediaID `json:"id"`
	UnitID    id.UnitID  `json:"unit_id"`
	Type      MediaType  `json:"type"`
	URL       string     `json:"url"`
	Locked    bool       `json:"locked"`
	CreatedAt time.Time  `json:"created_at"`
}

// MissingMediaTypes returns the required types absent from media, in
// RequiredMediaTypes order.
func MissingMediaTypes(media []*Media) []MediaType {
	have := make(map[MediaType]bool, len(media))
	for _, m := range media {
		have[m.Type] = true
	}
	var missing []MediaType
	for _, t := range RequiredMediaTypes {
		if !have[t] {
			missing = append(missing, t)
		}
	}
	return missing
}

// AnyLocked reports whether submission has already frozen the set.
func AnyLocked(media []*Media) bool {
	for _, m := range media {
		if m.Locked {
			return true
		}
	}
	return false
}
