// Package logger provides a structured logging solution using the Zap logging library.
// It exposes context-first helpers (Debug, Infof, WarnKV, ...) so that request-scoped
// fields such as a login attempt ID travel with the context, a global atomic level,
// and optional rotating file output.
package logger
