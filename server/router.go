// Package server exposes the responder over HTTP: one webhook ingress per
// provider plus a health probe.
package server

import "github.com/gin-gonic/gin"

type RouterConfig struct {
	// WebhookPath overrides the default ingress path.
	WebhookPath string
}

const defaultWebhookPath = "/webhooks/hubspot"

func SetupRoutes(router *gin.Engine, handler *WebhookHandler, cfg RouterConfig) {
	router.GET("/healthz", handler.Health)

	path := cfg.WebhookPath
	if path == "" {
		path = defaultWebhookPath
	}
	router.POST(path, handler.HandleDelivery)
}
