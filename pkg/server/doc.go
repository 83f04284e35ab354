// Package server exposes the decision pipeline over HTTP.
//
// Routes:
//
//	POST /v1/evaluate  - run the pipeline on a request body
//	GET  /healthz      - liveness probe
//	GET  /metrics      - prometheus exposition (when metrics are enabled)
//
// Every response from /v1/evaluate is the full run result: decision,
// metrics, and output. Rate limiting, audit recording, and metrics
// collection happen around the pipeline, never inside it, so the pipeline
// itself stays deterministic.
package server
