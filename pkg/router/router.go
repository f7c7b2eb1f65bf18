package router

import (
	"log"
	"net/http"
	"strings"
	"time"
)

// --- ANSI color codes ---
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

type HandlerFunc func(http.ResponseWriter, *http.Request)

// route is one registered method+pattern pair. Patterns are matched segment
// by segment; "*" matches one segment, a trailing "*" matches the rest.
type route struct {
	method   string
	segments []string
	handler  HandlerFunc
}

type Router struct {
	routes []route
}

func New() *Router {
	return &Router{}
}

// Handle registers a handler for a method and path pattern. Registration
// order matters: the first matching route wins, so register specific
// patterns before generic ones.
func (r *Router) Handle(method, pattern string, handler HandlerFunc) {
	r.routes = append(r.routes, route{
		method:   method,
		segments: splitPath(pattern),
		handler:  handler,
	})
}

func (r *Router) GET(pattern string, handler HandlerFunc)  { r.Handle(http.MethodGet, pattern, handler) }
func (r *Router) POST(pattern string, handler HandlerFunc) { r.Handle(http.MethodPost, pattern, handler) }
func (r *Router) DELETE(pattern string, handler HandlerFunc) {
	r.Handle(http.MethodDelete, pattern, handler)
}

// ServeHTTP dispatches to the first matching route, logging every request
// with its status and duration.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	segments := splitPath(req.URL.Path)
	handler, pathExists := r.match(req.Method, segments)
	switch {
	case handler != nil:
		handler(lrw, req)
	case pathExists:
		http.Error(lrw, "Method Not Allowed", http.StatusMethodNotAllowed)
	default:
		http.Error(lrw, "Not Found", http.StatusNotFound)
	}

	duration := time.Since(start)
	log.Printf("%s[%s]%s %s%s%s %s %s%d%s %s(%v)%s",
		colorCyan, start.Format("2006-01-02 15:04:05"), colorReset,
		methodColor(req.Method), req.Method, colorReset,
		req.URL.Path,
		statusColor(lrw.statusCode), lrw.statusCode, colorReset,
		colorBlue, duration, colorReset,
	)
}

// match returns the handler for the first route whose pattern matches, and
// whether any route matches the path regardless of method.
func (r *Router) match(method string, segments []string) (HandlerFunc, bool) {
	pathExists := false
	for _, rt := range r.routes {
		if !matchSegments(segments, rt.segments) {
			continue
		}
		pathExists = true
		if rt.method == method {
			return rt.handler, true
		}
	}
	return nil, pathExists
}

func matchSegments(path, pattern []string) bool {
	for i, seg := range pattern {
		// trailing wildcard swallows the rest of the path
		if seg == "*" && i == len(pattern)-1 {
			return len(path) >= len(pattern)
		}
		if i >= len(path) {
			return false
		}
		if seg != "*" && seg != path[i] {
			return false
		}
	}
	return len(path) == len(pattern)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// --- Start server ---
func (r *Router) Start(addr string) {
	log.Printf("🚀 Server started on %shttp://localhost%s%s", colorGreen, addr, colorReset)
	log.Fatal(http.ListenAndServe(addr, r))
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

// --- Color helpers ---
func statusColor(code int) string {
	switch {
	case code >= 200 && code < 300:
		return colorGreen
	case code >= 300 && code < 400:
		return colorCyan
	case code >= 400 && code < 500:
		return colorYellow
	default:
		return colorRed
	}
}

func methodColor(method string) string {
	switch method {
	case http.MethodGet:
		return colorGreen
	case http.MethodPost:
		return colorBlue
	case http.MethodDelete:
		return colorRed
	default:
		return colorCyan
	}
}
