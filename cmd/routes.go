package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"campusBack/internal/models"
)

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	studentAuth := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleStudent))
	cashierAuth := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleCashier))
	adminAuth := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleAdmin))

	mux := pat.New()

	// Auth
	mux.Post("/auth/sign_up", standardMiddleware.ThenFunc(app.userHandler.SignUp))
	mux.Post("/auth/sign_in", standardMiddleware.ThenFunc(app.userHandler.SignIn))
	mux.Post("/auth/refresh", standardMiddleware.ThenFunc(app.userHandler.Refresh))
	mux.Post("/auth/sign_out", standardMiddleware.ThenFunc(app.userHandler.SignOut))
	mux.Get("/me", studentAuth.ThenFunc(app.userHandler.Me))

	// Public status lookup by request number, no auth.
	mux.Get("/requests/status/:request_number", standardMiddleware.ThenFunc(app.requestHandler.GetStatus))

	// Student requests
	mux.Post("/requests", studentAuth.ThenFunc(app.requestHandler.CreateRequest))
	mux.Get("/requests/my", studentAuth.ThenFunc(app.requestHandler.GetMyRequests))
	mux.Get("/requests/my/:request_number", studentAuth.ThenFunc(app.requestHandler.GetMyRequest))
	mux.Post("/requests/my/:request_number/cancel", studentAuth.ThenFunc(app.requestHandler.CancelMyRequest))

	// Student payments
	mux.Post("/requests/:request_number/checkout", studentAuth.ThenFunc(app.paymentHandler.CreateCheckout))
	mux.Post("/requests/:request_number/cash", studentAuth.ThenFunc(app.paymentHandler.CreateCashPayment))

	// Cashier
	mux.Post("/payments/:id/confirm_cash", cashierAuth.ThenFunc(app.paymentHandler.ConfirmCash))
	mux.Get("/requests/:request_number/payments", cashierAuth.ThenFunc(app.paymentHandler.GetHistory))

	// Registrar staff
	mux.Get("/admin/requests", adminAuth.ThenFunc(app.requestHandler.ListRequests))
	mux.Post("/admin/requests/:request_number/process", adminAuth.ThenFunc(app.requestHandler.StartProcessing))
	mux.Post("/admin/requests/:request_number/ready", adminAuth.ThenFunc(app.requestHandler.MarkReady))
	mux.Post("/admin/requests/:request_number/release", adminAuth.ThenFunc(app.requestHandler.Release))
	mux.Post("/admin/requests/:request_number/cancel", adminAuth.ThenFunc(app.requestHandler.Cancel))

	// Fee schedule
	mux.Get("/fees", standardMiddleware.ThenFunc(app.feeHandler.GetFees))
	mux.Get("/fees/:id", standardMiddleware.ThenFunc(app.feeHandler.GetFeeByID))
	mux.Post("/admin/fees", adminAuth.ThenFunc(app.feeHandler.CreateFee))
	mux.Put("/admin/fees/:id", adminAuth.ThenFunc(app.feeHandler.UpdateFee))
	mux.Del("/admin/fees/:id", adminAuth.ThenFunc(app.feeHandler.DeleteFee))

	// Notifications
	mux.Post("/notifications/device_token", studentAuth.ThenFunc(app.notificationHandler.RegisterDeviceToken))
	mux.Get("/notifications", studentAuth.ThenFunc(app.notificationHandler.GetMyNotifications))
	mux.Post("/notifications/:id/read", studentAuth.ThenFunc(app.notificationHandler.MarkRead))

	// Live status stream
	mux.Get("/ws", studentAuth.ThenFunc(app.StatusSocketHandler))

	// Provider callback. Authenticated by HMAC signature, not JWT.
	mux.Post("/webhooks/paymongo", standardMiddleware.ThenFunc(app.webhookHandler.HandleWebhook))

	return standardMiddleware.Then(mux)
}
