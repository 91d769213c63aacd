package application

import "expvar"

// Counters published on /api/debug/vars.
var (
	registrations    = expvar.NewInt("auth_registrations_total")
	logins           = expvar.NewInt("auth_logins_total")
	loginFailures    = expvar.NewInt("auth_login_failures_total")
	passwordResets   = expvar.NewInt("auth_password_resets_total")
	ordersCreated    = expvar.NewInt("orders_created_total")
	orderTransitions = expvar.NewInt("order_transitions_total")
	paymentsDeclined = expvar.NewInt("payments_declined_total")
)
