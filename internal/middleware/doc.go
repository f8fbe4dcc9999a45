// Package middleware holds the chi middleware shared by the HTTP surface:
// request IDs, rate limiting, security headers, body limits, JSON request
// validation and OpenTelemetry instrumentation.
package middleware
