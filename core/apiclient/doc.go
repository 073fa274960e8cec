// Package apiclient implements the rate-limited retry HTTP client shared by
// both partner backends.
//
// # Request Spacing
//
// Every Client owns a token-bucket limiter with a burst of one, so two
// consecutive requests from the same instance are never closer than the
// configured spacing (250ms by default). Retries go through the limiter too.
//
// # Error Classification
//
// Non-2xx responses are converted into an *Error whose Kind is one of the
// package sentinels:
//
//	401  -> ErrAuthentication  (caller must re-authenticate upstream)
//	404  -> ErrNotFound        (negative lookup, not a failure)
//	429  -> ErrRateLimited     (retried, honors Retry-After)
//	5xx  -> ErrServer          (retried)
//	else -> ErrAPI
//
// Timeouts and connection failures are classified as ErrTransport.
//
// # Retry Policy
//
// Up to MaxAttempts attempts in total. Only ErrRateLimited, ErrServer and
// ErrTransport are retried; everything else is returned on first occurrence. The wait
// between attempts grows exponentially and is clamped to the
// [BackoffMin, BackoffMax] window. When retries are exhausted the returned
// error has Kind ErrAPI and still wraps the last classified error, so
// errors.Is(err, ErrRateLimited) keeps working.
//
// # Usage
//
//	c := apiclient.New("retail", baseURL, token, cfg.Config, apiclient.WithLogger(log))
//	resp, err := c.Get(ctx, "Account/1/Item.json", url.Values{"customSku": {"A1"}})
//	if errors.Is(err, apiclient.ErrNotFound) {
//	    // no such record
//	}
package apiclient
