// Package logger provides structured logging for the comparison service.
//
// It wraps zap (go.uber.org/zap) and configures it from the application
// configuration (level and encoding). Request handlers obtain a child logger
// carrying the request's ray_id via WithRayID so every log line of a request
// can be correlated.
package logger
