package main

import (
	"context"
	"log"
	"time"

	"campusBack/internal/services"
)

const (
	webhookRetrierInterval = 5 * time.Minute
	webhookRetrierTimeout  = 1 * time.Minute
	webhookRetrierBatch    = 100
)

// startWebhookRetrier re-runs webhook events that were recorded but whose
// processing failed. Acknowledged-but-unprocessed events are the retrier's
// responsibility; the provider never redelivers them.
func startWebhookRetrier(ctx context.Context, svc *services.WebhookService, infoLog, errorLog *log.Logger) {
	if svc == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(webhookRetrierInterval)
		defer ticker.Stop()

		runOnce := func() {
			runCtx, cancel := context.WithTimeout(ctx, webhookRetrierTimeout)
			done, err := svc.ReprocessPending(runCtx, webhookRetrierBatch, time.Now())
			cancel()
			if err != nil {
				if errorLog != nil {
					errorLog.Printf("webhook retrier: %v", err)
				}
				return
			}
			if done > 0 && infoLog != nil {
				infoLog.Printf("webhook retrier: reprocessed %d events", done)
			}
		}

		runOnce()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runOnce()
			}
		}
	}()
}
