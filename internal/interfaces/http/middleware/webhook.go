package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storecore/backend/internal/interfaces/http/dto"
)

// WebhookSignatureHeader carries the provider's HMAC-SHA256 signature of
// the raw request body, hex encoded
const WebhookSignatureHeader = "X-Webhook-Signature"

// maxWebhookBodySize bounds how much of a webhook body is read before
// signature verification
const maxWebhookBodySize = 1 << 20 // 1 MiB

// WebhookAuth verifies the HMAC-SHA256 signature of the raw request body
// against the shared webhook secret. The payment webhook sits outside
// JWT; this signature is its only authentication, so an empty secret
// rejects every request rather than accepting all of them.
func WebhookAuth(secret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			logger.Error("webhook secret not configured, rejecting webhook")
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Webhook authentication not configured"))
			return
		}

		signature := c.GetHeader(WebhookSignatureHeader)
		if signature == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Missing webhook signature"))
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodySize+1))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponse(dto.ErrCodeBadRequest, "Failed to read request body"))
			return
		}
		if len(body) > maxWebhookBodySize {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodeBadRequest, "Webhook body too large"))
			return
		}

		if !verifySignature(secret, body, signature) {
			logger.Warn("webhook signature mismatch",
				zap.String("remote_addr", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Invalid webhook signature"))
			return
		}

		// The body was consumed for verification; restore it for binding.
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}

// verifySignature compares the expected HMAC of body against the
// hex-encoded signature in constant time
func verifySignature(secret string, body []byte, signature string) bool {
	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := mac.Sum(nil)

	return hmac.Equal(expected, provided)
}

// SignWebhookBody computes the hex-encoded HMAC-SHA256 signature for a
// body. Exported for tests and for the CLI tooling that replays events.
func SignWebhookBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
