// Package middleware groups the HTTP middleware of the serve command.
//
//   - auth: API key validation, with public paths such as /health.
//   - rayid: a RayID per request, stored in locals and echoed in the
//     X-Ray-ID response header so logger.WithRayID can correlate lines.
package middleware
