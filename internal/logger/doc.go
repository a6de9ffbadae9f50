// Package logger wraps zap for tzpack:
//   - a global sugared logger with a console encoder on stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and adjustment,
//   - convenience functions (Info, InfoKV, WarnKV, and so on).
//
// Pipeline steps receive a context and log through it, so names and
// key-value pairs attached by the driver follow every message.
package logger
