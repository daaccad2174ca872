package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/outfit-advisor/internal/chat"
	"github.com/spigell/outfit-advisor/internal/recommend"
	"github.com/spigell/outfit-advisor/internal/secrets"
	"github.com/spigell/outfit-advisor/internal/store"
	"github.com/spigell/outfit-advisor/internal/supabase"
)

func newBackend(config *SupabaseConfig, logger *zap.Logger) (*supabase.Client, error) {
	if strings.TrimSpace(config.URL) == "" {
		return nil, errors.New("supabase url is not configured (set SUPABASE_URL or supabase.url)")
	}

	key, err := secrets.Load(secrets.Source{
		Name:  "supabase anon key",
		Value: config.AnonKey,
		File:  config.AnonKeyFile,
		Env:   "SUPABASE_ANON_KEY",
	})
	if err != nil {
		return nil, err
	}

	client := supabase.New(logger.Named("supabase"), config.URL, key)
	if config.Timeout > 0 {
		client.HTTPClient.Timeout = config.Timeout
	}

	return client, nil
}

func newChatClient(ctx context.Context, config *ChatConfig, logger *zap.Logger) (*chat.Client, error) {
	provider := strings.ToLower(strings.TrimSpace(config.Provider))

	keyEnv := "OPENAI_API_KEY"
	if provider == chat.ProviderGemini {
		keyEnv = "GEMINI_API_KEY"
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  provider + " api key",
		Value: config.APIKey,
		File:  config.APIKeyFile,
		Env:   keyEnv,
	})
	if err != nil {
		return nil, err
	}

	var generator chat.Generator
	switch provider {
	case chat.ProviderOpenAI, "":
		generator, err = chat.NewOpenAI(apiKey, config.BaseURL, config.Timeout)
	case chat.ProviderGemini:
		generator, err = chat.NewGemini(ctx, apiKey)
	default:
		return nil, fmt.Errorf("unsupported chat provider: %s", config.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s generator: %w", provider, err)
	}

	return chat.New(generator, config.MaxRetries, config.MaxLogLength, logger.Named("chat")), nil
}

func newStore(backend *supabase.Client, config *SupabaseConfig, logger *zap.Logger) *store.Store {
	st := store.New(backend, logger)
	if config.Bucket != "" {
		st.Bucket = config.Bucket
	}
	return st
}

func newRecommender(st recommend.Store, chatClient recommend.Chat, config *Config, logger *zap.Logger) *recommend.Service {
	return recommend.New(st, chatClient, recommend.Config{
		DefaultModel:   config.Chat.DefaultModel,
		Models:         config.Chat.Models,
		MaxSuggestions: config.Recommend.MaxSuggestions,
	}, logger)
}
