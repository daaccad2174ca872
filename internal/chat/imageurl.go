package chat

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// IsImageURLValid reports whether url answers a HEAD request with a 2xx status.
// Failures are logged and reported as false.
func (c *Client) IsImageURLValid(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		c.logger.Warn("error checking image URL", zap.String("image_url", url), zap.Error(err))
		return false
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.logger.Warn("error checking image URL", zap.String("image_url", url), zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Info("image URL is not reachable",
			zap.String("image_url", url),
			zap.Int("status", resp.StatusCode),
		)
		return false
	}

	return true
}
