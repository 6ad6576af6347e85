package router

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-insights-engine/internal/logger"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

type HandlerFunc func(http.ResponseWriter, *http.Request)

type prefixRoute struct {
	prefix  string
	handler http.Handler
}

// Router dispatches on METHOD:PATH, falling back to wildcard patterns and
// then to mounted prefix handlers. Every request is logged.
type Router struct {
	routes   map[string]HandlerFunc // key = METHOD:PATH
	paths    map[string]bool        // track registered paths
	wildcard []string               // registered wildcard patterns, in order
	prefixes []prefixRoute
	log      logger.Logger
}

func New(log logger.Logger) *Router {
	if log == nil {
		log = logger.NewNop()
	}
	return &Router{
		routes: make(map[string]HandlerFunc),
		paths:  make(map[string]bool),
		log:    log,
	}
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	requestID := req.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	lrw.Header().Set(RequestIDHeader, requestID)
	setCORSHeaders(lrw.Header())

	if req.Method == http.MethodOptions {
		lrw.WriteHeader(http.StatusNoContent)
	} else {
		r.dispatch(lrw, req)
	}

	r.log.Info("HTTP request",
		logger.String("request_id", requestID),
		logger.String("method", req.Method),
		logger.String("path", req.URL.Path),
		logger.Int("status", lrw.statusCode),
		logger.Duration("duration", time.Since(start)),
	)
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	key := req.Method + ":" + req.URL.Path
	if h, ok := r.routes[key]; ok {
		h(w, req)
		return
	}

	// Try wildcard routes in registration order, so more specific routes
	// registered first win
	for _, routePath := range r.wildcard {
		if !matchWildcardRoute(req.URL.Path, routePath) {
			continue
		}
		if h, ok := r.routes[req.Method+":"+routePath]; ok {
			h(w, req)
			return
		}
	}

	for _, p := range r.prefixes {
		if strings.HasPrefix(req.URL.Path, p.prefix) {
			p.handler.ServeHTTP(w, req)
			return
		}
	}

	if r.paths[req.URL.Path] {
		// Path exists but method not allowed
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	http.Error(w, "Not Found", http.StatusNotFound)
}

// matchWildcardRoute checks if a request path matches a wildcard route pattern
func matchWildcardRoute(requestPath, routePattern string) bool {
	requestSegments := strings.Split(strings.Trim(requestPath, "/"), "/")
	routeSegments := strings.Split(strings.Trim(routePattern, "/"), "/")

	// Handle single wildcard at the end (matches any number of remaining segments)
	if len(routeSegments) > 0 && routeSegments[len(routeSegments)-1] == "*" {
		if len(requestSegments) < len(routeSegments) {
			return false
		}
		for i := 0; i < len(routeSegments)-1; i++ {
			if requestSegments[i] != routeSegments[i] {
				return false
			}
		}
		return true
	}

	if len(requestSegments) != len(routeSegments) {
		return false
	}
	for i, routeSegment := range routeSegments {
		if routeSegment == "*" {
			continue
		}
		if requestSegments[i] != routeSegment {
			return false
		}
	}
	return true
}

// --- Register paths ---
func (r *Router) register(method, path string, handler HandlerFunc) {
	key := method + ":" + path
	r.routes[key] = handler
	if strings.Contains(path, "*") && !r.paths[path] {
		r.wildcard = append(r.wildcard, path)
	}
	r.paths[path] = true
}

func (r *Router) GET(path string, handler HandlerFunc)  { r.register(http.MethodGet, path, handler) }
func (r *Router) POST(path string, handler HandlerFunc) { r.register(http.MethodPost, path, handler) }

// Handle mounts handler for every path under prefix, any method.
func (r *Router) Handle(prefix string, handler http.Handler) {
	r.prefixes = append(r.prefixes, prefixRoute{prefix: prefix, handler: handler})
}

// Routes returns the registered METHOD:PATH keys.
func (r *Router) Routes() map[string]HandlerFunc {
	return r.routes
}

// --- Server ---

// Server returns an http.Server for the router.
func (r *Router) Server(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run serves on addr until ctx is done, then shuts down within grace.
func (r *Router) Run(ctx context.Context, addr string, grace time.Duration) error {
	srv := r.Server(addr)
	errCh := make(chan error, 1)
	go func() {
		r.log.Info("Server started", logger.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	r.log.Info("Server shutting down")
	return srv.Shutdown(shutdownCtx)
}

// --- Logging response writer to capture status codes ---
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func setCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
}
