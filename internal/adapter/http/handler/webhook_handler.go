package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"wallet-service/internal/adapter/http/dto"
	"wallet-service/internal/adapter/http/middleware"
	"wallet-service/internal/core/ports"
	"wallet-service/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Gateway notification bodies are small; anything larger is junk.
const maxWebhookBody = 256 << 10

// WebhookHandler receives payment gateway notifications.
//
// The response is always HTTP 200 with {"status": bool}. Signature and
// parse failures report status=false and are never retried by the
// gateway; processing failures also report status=false but leave the
// delivery log unprocessed so the gateway's redelivery schedule retries
// them.
type WebhookHandler struct {
	verifier   ports.SignatureVerifier
	reconciler ports.WebhookReconciler
	log        zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(verifier ports.SignatureVerifier, reconciler ports.WebhookReconciler, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, reconciler: reconciler, log: log}
}

// HandleEvent handles POST /webhooks/paystack.
func (h *WebhookHandler) HandleEvent(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.log.Warn().Err(err).Msg("webhook body read failed")
		c.JSON(http.StatusOK, gin.H{"status": false})
		return
	}

	signature := c.GetHeader(middleware.HeaderSignature)
	if signature == "" || !h.verifier.Verify(body, signature) {
		h.log.Warn().Str("client_ip", c.ClientIP()).Msg("webhook signature rejected")
		metrics.ObserveWebhook("invalid", false)
		c.JSON(http.StatusOK, gin.H{"status": false})
		return
	}

	var payload dto.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.Event == "" || payload.Data.Reference == "" {
		h.log.Warn().Err(err).Msg("webhook payload rejected")
		metrics.ObserveWebhook("invalid", false)
		c.JSON(http.StatusOK, gin.H{"status": false})
		return
	}

	err = h.reconciler.HandleEvent(
		c.Request.Context(),
		payload.Event,
		payload.Data.Status,
		payload.Data.Reference,
		payload.Data.Amount,
		body,
	)
	if err != nil {
		h.log.Error().Err(err).
			Str("event", payload.Event).
			Str("reference", payload.Data.Reference).
			Msg("webhook processing failed, awaiting redelivery")
		metrics.ObserveWebhook(payload.Event, false)
		c.JSON(http.StatusOK, gin.H{"status": false})
		return
	}

	metrics.ObserveWebhook(payload.Event, true)
	c.JSON(http.StatusOK, gin.H{"status": true})
}
