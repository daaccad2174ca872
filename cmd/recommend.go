package cmd

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/outfit-advisor/internal/logger"
	"github.com/spigell/outfit-advisor/internal/outfit"
	"github.com/spigell/outfit-advisor/internal/recommend"
	"github.com/spigell/outfit-advisor/internal/supabase"
)

const accessTokenEnv = "OUTFIT_ACCESS_TOKEN"

var errNotImage = errors.New("file is not an image")

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Ask for pairings for a single garment photo",
	Run: func(cmd *cobra.Command, _ []string) {
		if err := recommendOnce(cmd); err != nil {
			log.Fatalf("recommend: %s", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringP("image", "i", "", "photo of the garment: http(s) url, data url or local file")
	recommendCmd.Flags().StringP("gender", "g", "", "male or female. Asked interactively if unset.")
	recommendCmd.Flags().StringP("clothing-type", "t", "", "top or bottom. Asked interactively if unset.")
	recommendCmd.Flags().StringP("model", "m", "", "chat model. Asked interactively if unset and several models are configured.")
	recommendCmd.Flags().IntP("max-suggestions", "n", 0, "maximum number of suggestions (default from recommend.max-suggestions)")
	recommendCmd.Flags().String("access-token", "", "user access token (default $"+accessTokenEnv+")")
	recommendCmd.Flags().Bool("no-store", false, "only print the model suggestions, nothing is stored")
}

func recommendOnce(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	config, err := getConfig()
	if err != nil {
		return fmt.Errorf("getting a config: %w", err)
	}

	flags := cmd.Flags()
	image, _ := flags.GetString("image")
	genderFlag, _ := flags.GetString("gender")
	clothingFlag, _ := flags.GetString("clothing-type")
	model, _ := flags.GetString("model")
	maxSuggestions, _ := flags.GetInt("max-suggestions")
	accessToken, _ := flags.GetString("access-token")
	noStore, _ := flags.GetBool("no-store")

	if strings.TrimSpace(image) == "" {
		return errors.New("--image is required")
	}

	gender, err := chooseGender(genderFlag)
	if err != nil {
		return err
	}

	clothingType, err := chooseClothingType(clothingFlag)
	if err != nil {
		return err
	}

	chatClient, err := newChatClient(ctx, config.Chat, logger)
	if err != nil {
		return err
	}

	if noStore {
		if !isHTTPURL(image) {
			return errors.New("--no-store needs an http(s) image url")
		}

		// Nothing is stored, so the service runs without a data layer.
		svc := newRecommender(nil, chatClient, config, logger)
		if model == "" {
			if model, err = chooseModel(svc.Models()); err != nil {
				return err
			}
		}

		drafts, err := svc.Suggest(ctx, recommend.SuggestRequest{
			ImageURL:       image,
			Gender:         gender,
			ClothingType:   clothingType,
			Model:          model,
			MaxSuggestions: maxSuggestions,
		})
		if err != nil {
			return err
		}

		return printJSON(drafts)
	}

	if accessToken == "" {
		accessToken = os.Getenv(accessTokenEnv)
	}
	if accessToken == "" {
		return fmt.Errorf("an access token is required to store recommendations (set --access-token or %s)", accessTokenEnv)
	}

	backend, err := newBackend(config.Supabase, logger)
	if err != nil {
		return err
	}

	ctx = supabase.WithAccessToken(ctx, accessToken)
	user, err := backend.Auth.GetUser(ctx)
	if err != nil {
		return fmt.Errorf("resolving the user: %w", err)
	}

	svc := newRecommender(newStore(backend, config.Supabase, logger), chatClient, config, logger)
	if model == "" {
		if model, err = chooseModel(svc.Models()); err != nil {
			return err
		}
	}

	req := recommend.Request{
		UserID:         user.ID,
		Gender:         gender,
		ClothingType:   clothingType,
		Model:          model,
		MaxSuggestions: maxSuggestions,
	}

	switch {
	case isHTTPURL(image):
		req.ImageURL = image
	case strings.HasPrefix(image, "data:"):
		req.ImageDataURL = image
	default:
		if req.ImageDataURL, err = fileToDataURL(image); err != nil {
			return err
		}
	}

	logger.Info("asking for a recommendation",
		zap.String("user_id", user.ID),
		zap.String("gender", string(gender)),
		zap.String("clothing_type", string(clothingType)),
		zap.String("model", model),
	)

	rec, err := svc.Recommend(ctx, req)
	if err != nil {
		return err
	}

	return printJSON(rec)
}

func chooseGender(flag string) (outfit.Gender, error) {
	if flag != "" {
		return outfit.ParseGender(flag)
	}

	_, selected, err := selectOne("Gender", []string{string(outfit.GenderMale), string(outfit.GenderFemale)})
	if err != nil {
		return "", err
	}

	return outfit.Gender(selected), nil
}

func chooseClothingType(flag string) (outfit.ClothingType, error) {
	if flag != "" {
		return outfit.ParseClothingType(flag)
	}

	_, selected, err := selectOne("What is on the photo?", []string{string(outfit.ClothingTop), string(outfit.ClothingBottom)})
	if err != nil {
		return "", err
	}

	return outfit.ClothingType(selected), nil
}

func chooseModel(models []string) (string, error) {
	switch len(models) {
	case 0:
		return "", errors.New("no chat model configured")
	case 1:
		return models[0], nil
	}

	_, selected, err := selectOne("Choose a model and press ENTER", models)
	return selected, err
}

func selectOne(label string, items []string) (int, string, error) {
	sel := promptui.Select{
		Label: label,
		Items: items,
	}

	return sel.Run()
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// fileToDataURL reads an image file into a base64 data URL.
func fileToDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%s: %w (detected %s)", path, errNotImage, contentType)
	}

	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func printJSON(v any) error {
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(pretty))
	return nil
}
