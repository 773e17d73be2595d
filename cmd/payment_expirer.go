package main

import (
	"context"
	"log"
	"time"

	"campusBack/internal/services"
)

const (
	paymentExpirerInterval = 10 * time.Minute
	paymentExpirerTimeout  = 1 * time.Minute
)

// startPaymentExpirer sweeps requests whose 48-hour payment window lapsed and
// moves them to payment_expired. The webhook path handles the same condition
// inline, so the sweep only catches requests no webhook ever arrived for.
func startPaymentExpirer(ctx context.Context, svc *services.DocumentRequestService, infoLog, errorLog *log.Logger) {
	if svc == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(paymentExpirerInterval)
		defer ticker.Stop()

		runOnce := func() {
			runCtx, cancel := context.WithTimeout(ctx, paymentExpirerTimeout)
			expired, err := svc.ExpireOverduePayments(runCtx, time.Now())
			cancel()
			if err != nil {
				if errorLog != nil {
					errorLog.Printf("payment expirer: %v", err)
				}
				return
			}
			if len(expired) > 0 && infoLog != nil {
				infoLog.Printf("payment expirer: expired %d overdue requests", len(expired))
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
