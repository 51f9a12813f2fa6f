package http

import "net/http"

// NewRouter registers every endpoint behind the rate limiter.
func NewRouter(
	taxHandler *TaxHandler,
	gstHandler *GSTHandler,
	limiter *RateLimiter,
) *http.ServeMux {

	routes := map[string]http.HandlerFunc{
		"/tax/compute":   taxHandler.Compute,
		"/tax/savings":   taxHandler.Savings,
		"/tax/plan":      taxHandler.Plan,
		"/tax/compare":   taxHandler.Compare,
		"/tax/sections":  taxHandler.Sections,
		"/tax/history":   taxHandler.History,
		"/gst/calculate": gstHandler.Calculate,
	}

	mux := http.NewServeMux()
	for pattern, handler := range routes {
		mux.Handle(pattern, RateLimitMiddleware(limiter, handler))
	}
	return mux
}
