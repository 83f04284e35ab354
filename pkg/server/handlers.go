package server

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"sentinel-hq/callisto/pkg/audit"
	"sentinel-hq/callisto/pkg/pipeline"
)

// maxRequestBody bounds the /v1/evaluate request body.
const maxRequestBody = 1 << 20 // 1 MiB

// errorResponse is the JSON body for non-2xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// evaluateRequest is the pipeline request plus transport-level options.
type evaluateRequest struct {
	pipeline.Request

	// Record opts this run out of the audit trail when set to false.
	// Defaults to true when audit recording is configured.
	Record *bool `json:"record,omitempty"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	caller := callerIdentity(r)
	if s.limiter != nil && !s.limiter.Allow(caller) {
		if s.collector != nil {
			s.collector.RecordRateLimited()
		}
		retry := s.limiter.RetryAfter(caller)
		w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	var req evaluateRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	start := time.Now()
	res, err := s.currentPipeline().Run(r.Context(), req.Request)
	if err != nil {
		// Run errors are input errors: a malformed mask.
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	elapsed := time.Since(start)

	if s.collector != nil {
		s.collector.RecordRun(res)
		if res.Output.Provider != "" {
			s.collector.RecordProviderCall(res.Output.Provider, elapsed, false)
		}
	}

	if s.recorder != nil && (req.Record == nil || *req.Record) {
		info := audit.RunInfo{
			Caller:          caller,
			UserText:        req.UserText,
			EvidenceCount:   len(req.Evidence),
			Seed:            req.Seed,
			Provider:        res.Output.Provider,
			ProviderLatency: elapsed,
		}
		// Audit failures must not fail the request.
		if _, err := s.recorder.Record(r.Context(), info, res); err != nil {
			s.logger.Error("audit recording failed", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// callerIdentity resolves the requesting principal: the X-Caller-ID header
// when present, the client IP otherwise.
func callerIdentity(r *http.Request) string {
	if caller := r.Header.Get("X-Caller-ID"); caller != "" {
		return caller
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
