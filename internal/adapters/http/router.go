package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/OSH212/phmarcel-rpg/internal/core/ports"
	"github.com/OSH212/phmarcel-rpg/internal/observability/metrics"
)

// DefaultMaxUploadBytes caps document uploads at 10 MiB.
const DefaultMaxUploadBytes = 10 << 20

type Router struct {
	clients   ports.ClientDirectory
	intakes   ports.IntakeManager
	ingestor  ports.DocumentIngestor
	processor ports.DocumentProcessor
	checklist ports.ChecklistReader
	documents ports.DocumentReader

	maxUploadBytes int64
	metrics        *metrics.HTTPServerMetrics
}

func NewRouter(
	clients ports.ClientDirectory,
	intakes ports.IntakeManager,
	ingestor ports.DocumentIngestor,
	processor ports.DocumentProcessor,
	checklist ports.ChecklistReader,
	documents ports.DocumentReader,
) *Router {
	return &Router{
		clients:        clients,
		intakes:        intakes,
		ingestor:       ingestor,
		processor:      processor,
		checklist:      checklist,
		documents:      documents,
		maxUploadBytes: DefaultMaxUploadBytes,
	}
}

// Options tune the middleware chain around the routes.
type Options struct {
	RateLimitRPS     float64
	RateLimitBurst   int
	MaxConcurrent    int
	BackpressureWait time.Duration
	Metrics          *metrics.HTTPServerMetrics
	ValidateRequests bool
}

func (rt *Router) Handler(opts Options) (http.Handler, error) {
	rt.metrics = opts.Metrics

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)

	mux.HandleFunc("POST /v1/clients", rt.createClient)
	mux.HandleFunc("GET /v1/clients/{id}", rt.getClient)

	mux.HandleFunc("POST /v1/intakes", rt.openIntake)
	mux.HandleFunc("GET /v1/intakes/{id}", rt.getIntake)
	mux.HandleFunc("POST /v1/intakes/{id}/documents", rt.uploadDocument)
	mux.HandleFunc("POST /v1/intakes/{id}/classify", rt.classifyIntake)
	mux.HandleFunc("POST /v1/intakes/{id}/extract", rt.extractIntake)
	mux.HandleFunc("GET /v1/intakes/{id}/checklist", rt.getChecklist)
	mux.HandleFunc("GET /v1/intakes/{id}/checklist/export", rt.exportChecklist)

	mux.HandleFunc("GET /v1/documents/{id}", rt.getDocument)
	mux.HandleFunc("POST /v1/documents/{id}/classify", rt.classifyDocument)
	mux.HandleFunc("POST /v1/documents/{id}/extract", rt.extractDocument)

	var handler http.Handler = mux
	if opts.ValidateRequests {
		validator, err := newRequestValidator()
		if err != nil {
			return nil, err
		}
		handler = validator.middleware(handler)
	}
	if opts.MaxConcurrent > 0 {
		wait := opts.BackpressureWait
		if wait <= 0 {
			wait = 100 * time.Millisecond
		}
		handler = backpressureMiddleware(handler, opts.MaxConcurrent, wait)
	}
	if opts.RateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, opts.RateLimitRPS, opts.RateLimitBurst)
	}
	if opts.Metrics != nil {
		handler = opts.Metrics.Middleware("api", handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler), nil
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
