// Package outfit holds the rows of the recommendation database and the
// parser for model replies.
package outfit

import (
	"fmt"
	"strings"
	"time"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type ClothingType string

const (
	ClothingTop    ClothingType = "top"
	ClothingBottom ClothingType = "bottom"
)

// ParseGender accepts "male" or "female" in any case.
func ParseGender(s string) (Gender, error) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case GenderMale, GenderFemale:
		return g, nil
	default:
		return "", fmt.Errorf("invalid gender %q: want male or female", s)
	}
}

// ParseClothingType accepts "top" or "bottom" in any case.
func ParseClothingType(s string) (ClothingType, error) {
	switch c := ClothingType(strings.ToLower(strings.TrimSpace(s))); c {
	case ClothingTop, ClothingBottom:
		return c, nil
	default:
		return "", fmt.Errorf("invalid clothing type %q: want top or bottom", s)
	}
}

// Complement is the garment type that pairs with c.
func (c ClothingType) Complement() ClothingType {
	if c == ClothingTop {
		return ClothingBottom
	}
	return ClothingTop
}

type Param struct {
	ID           int64        `json:"id"`
	CreatedAt    time.Time    `json:"created_at"`
	Gender       Gender       `json:"gender"`
	ClothingType ClothingType `json:"clothing_type"`
	Model        string       `json:"model"`
}

type Upload struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ImageURL  string    `json:"image_url"`
	UserID    string    `json:"user_id"`
}

type Recommendation struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ParamID   int64     `json:"param_id"`
	UploadID  int64     `json:"upload_id"`
	UserID    string    `json:"user_id"`
}

// RecommendationPreview is a recommendation with the image of its upload embedded.
type RecommendationPreview struct {
	Recommendation `json:",squash"`
	Upload         *PreviewUpload `json:"upload"`
}

type PreviewUpload struct {
	ImageURL string `json:"image_url"`
}

type Suggestion struct {
	ID               int64     `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	RecommendationID int64     `json:"recommendation_id"`
	LabelString      string    `json:"label_string"`
	StyleName        string    `json:"style_name"`
	Description      string    `json:"description"`
}

type Result struct {
	ID           int64     `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	SuggestionID int64     `json:"suggestion_id"`
	ItemID       string    `json:"item_id"`
	Distance     float64   `json:"distance"`
}

// UnstoredResult is a result row before insertion.
type UnstoredResult struct {
	SuggestionID int64   `json:"suggestion_id" validate:"required"`
	ItemID       string  `json:"item_id" validate:"required"`
	Distance     float64 `json:"distance"`
}

type Item struct {
	ID           string       `json:"id"`
	CreatedAt    time.Time    `json:"created_at"`
	Title        string       `json:"title"`
	ImageURL     string       `json:"image_url"`
	ExternalLink string       `json:"external_link"`
	Provider     string       `json:"provider"`
	Gender       Gender       `json:"gender"`
	ClothingType ClothingType `json:"clothing_type"`
	Color        string       `json:"color"`
}

type Series struct {
	SeriesID  string    `json:"series_id"`
	CreatedAt time.Time `json:"created_at"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"image_url"`
}

type Profile struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
}
