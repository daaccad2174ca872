// Package prompt renders the instructions sent to the model together with the photo.
package prompt

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/spigell/outfit-advisor/internal/outfit"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// DefaultMaxSuggestions is used when a recommendation does not ask for a count.
const DefaultMaxSuggestions = 3

// MaxUserRequestRunes bounds the free-text request embedded into a prompt.
const MaxUserRequestRunes = 500

type data struct {
	GenderLabel      string
	ClothingLabel    string
	ComplementLabel  string
	MaxSuggestions   int
	UserRequest      string
	StyleLabel       string
	DescriptionLabel string
	// Attributes selects the garment specific keys: "top" for collar and
	// sleeve, "bottom" for leg and hem.
	Attributes outfit.ClothingType
}

func genderLabel(g outfit.Gender) string {
	if g == outfit.GenderMale {
		return "男性"
	}
	return "女性"
}

func clothingLabel(c outfit.ClothingType) string {
	if c == outfit.ClothingTop {
		return "上衣"
	}
	return "下身類衣物"
}

// ForRecommendation asks for maxSuggestions garments that pair with the
// photographed one. A non-positive maxSuggestions uses the default.
func ForRecommendation(clothingType outfit.ClothingType, gender outfit.Gender, maxSuggestions int) (string, error) {
	if maxSuggestions <= 0 {
		maxSuggestions = DefaultMaxSuggestions
	}

	return render("recommendation.tmpl", data{
		GenderLabel:      genderLabel(gender),
		ClothingLabel:    clothingLabel(clothingType),
		ComplementLabel:  clothingLabel(clothingType.Complement()),
		MaxSuggestions:   maxSuggestions,
		StyleLabel:       "風格名稱",
		DescriptionLabel: "推薦原因",
		Attributes:       clothingType.Complement(),
	})
}

// ForImageSearch asks for a structured description of the photographed garment.
func ForImageSearch(clothingType outfit.ClothingType, gender outfit.Gender) (string, error) {
	return render("image_search.tmpl", data{
		GenderLabel:      genderLabel(gender),
		ClothingLabel:    clothingLabel(clothingType),
		StyleLabel:       "衣物風格",
		DescriptionLabel: "衣物描述",
		Attributes:       clothingType,
	})
}

// ForTextSearch asks to rewrite a free-text request into the item format.
func ForTextSearch(clothingType outfit.ClothingType, gender outfit.Gender, userRequest string) (string, error) {
	userRequest = sanitizeRequest(userRequest)
	if userRequest == "" {
		return "", fmt.Errorf("user request must not be empty")
	}

	return render("text_search.tmpl", data{
		GenderLabel:      genderLabel(gender),
		ClothingLabel:    clothingLabel(clothingType),
		UserRequest:      userRequest,
		StyleLabel:       "衣物風格",
		DescriptionLabel: "衣物描述",
		Attributes:       clothingType,
	})
}

func render(name string, d data) (string, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, d); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimSpace(b.String()), nil
}

// sanitizeRequest folds the request to one line and caps its length.
func sanitizeRequest(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) > MaxUserRequestRunes {
		s = string(runes[:MaxUserRequestRunes])
	}
	return s
}
