// Package http adapts the analysis engine to the HTTP surface: multipart
// statement uploads in, AnalysisResult JSON or export artifacts out. Handlers
// translate transport concerns (forms, streaming, status codes) and keep the
// engine presentation-free.
package http
