// Package chat sends a photo URL and a prompt to a hosted multimodal model.
package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/outfit-advisor/internal/logger"
	"github.com/spigell/outfit-advisor/internal/metrics"
	"github.com/spigell/outfit-advisor/internal/util"
)

const (
	// DefaultMaxRetries is the number of attempts made for one request.
	DefaultMaxRetries   = 5
	defaultMaxLogLength = 200
)

// ErrNoResponse is returned when every attempt failed.
var ErrNoResponse = errors.New("no response from chat model")

// Generator makes a single attempt against one provider.
type Generator interface {
	Generate(ctx context.Context, model, prompt, imageURL string) (string, error)
	Provider() string
}

// Client retries a Generator a fixed number of times, without backoff.
type Client struct {
	generator  Generator
	maxRetries int
	maxLogLen  int
	logger     *zap.Logger
	// HTTPClient is used for image URL checks.
	HTTPClient *http.Client
}

func New(generator Generator, maxRetries, maxLogLength int, log *zap.Logger) *Client {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	provider := ""
	if generator != nil {
		provider = generator.Provider()
	}

	return &Client{
		generator:  generator,
		maxRetries: maxRetries,
		maxLogLen:  maxLogLength,
		logger:     log.With(logger.StringFields(logger.StringField{Key: logger.FieldProvider, Value: provider})...),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// MaxRetries reports the attempt bound.
func (c *Client) MaxRetries() int {
	return c.maxRetries
}

// SendImageURLAndPrompt asks model about the image at imageURL, or about the
// prompt alone when imageURL is empty. The first successful answer is
// returned, which may be empty when the model replied without text. After
// MaxRetries failures the error wraps ErrNoResponse.
func (c *Client) SendImageURLAndPrompt(ctx context.Context, model, prompt, imageURL string) (string, error) {
	if c == nil || c.generator == nil {
		return "", errors.New("chat client is not initialized")
	}

	model = strings.TrimSpace(model)
	if model == "" {
		return "", errors.New("model must not be empty")
	}
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt must not be empty")
	}

	provider := c.generator.Provider()
	log := c.logger.With(zap.String(logger.FieldModel, model), zap.String("image_url", imageURL))

	log.Debug("chat request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, c.maxLogLen)),
	)

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := c.generator.Generate(ctx, model, prompt, imageURL)
		if err == nil {
			metrics.ChatAttempts.WithLabelValues(provider, "ok").Inc()
			log.Debug("chat response",
				zap.Int("attempt", attempt),
				zap.Int("response_length", utf8.RuneCountInString(text)),
				zap.String("response_preview", util.TruncateForLog(text, c.maxLogLen)),
			)
			return text, nil
		}

		metrics.ChatAttempts.WithLabelValues(provider, "error").Inc()
		lastErr = err

		log.Warn("failed to get response from chat model",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.maxRetries),
			zap.Error(err),
		)
		if attempt < c.maxRetries {
			log.Info("retrying chat request", zap.Int("next_attempt", attempt+1))
		}
	}

	metrics.ChatExhausted.WithLabelValues(provider).Inc()

	return "", fmt.Errorf("%w after %d attempts: %w", ErrNoResponse, c.maxRetries, lastErr)
}
