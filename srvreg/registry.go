package srvreg

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/safetrack/safetrack/engine"
	"github.com/safetrack/safetrack/repository"
)

// Request represents the client's original HTTP request.
type Request struct {
	Method     string            `json:"method"`
	Path       string            `json:"path"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
	RemoteAddr string            `json:"remote_addr"`
	RequestID  string            `json:"request_id"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Response represents the computed response for a request.
type Response struct {
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

// ServiceHandler is a function type for service handlers
type ServiceHandler func(*Request) (*Response, error)

// RouteKey is used to uniquely identify a route
type RouteKey struct {
	Method string
	Path   string
}

// ServiceRegistry manages all service handlers
type ServiceRegistry struct {
	handlers    map[RouteKey]ServiceHandler
	exactRoutes map[RouteKey]bool
	mu          sync.RWMutex
	engine      *engine.Engine
	repository  *repository.Repository
	logger      *log.Logger
}

// NewServiceRegistry creates a new service registry
func NewServiceRegistry(eng *engine.Engine, repo *repository.Repository, logger *log.Logger) *ServiceRegistry {
	return &ServiceRegistry{
		handlers:    make(map[RouteKey]ServiceHandler),
		exactRoutes: make(map[RouteKey]bool),
		engine:      eng,
		repository:  repo,
		logger:      logger,
	}
}

// ConvertHTTPRequest converts an http.Request to a Request.
func ConvertHTTPRequest(r *http.Request, requestID string) (*Request, error) {
	headers := make(map[string]string)
	for name, values := range r.Header {
		if len(values) > 0 {
			headers[name] = values[0]
		}
	}

	body := ""
	if r.Body != nil {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		body = strings.TrimSpace(string(bodyBytes))
	}

	path := r.URL.Path
	if r.URL.RawQuery != "" {
		path = path + "?" + r.URL.RawQuery
	}

	return &Request{
		Method:     r.Method,
		Path:       path,
		Headers:    headers,
		Body:       body,
		RemoteAddr: r.RemoteAddr,
		RequestID:  requestID,
		Timestamp:  time.Now(),
	}, nil
}

// RegisterHandler registers a new service handler
func (sr *ServiceRegistry) RegisterHandler(method, path string, isExactPath bool, handler ServiceHandler) {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	key := RouteKey{Method: strings.ToUpper(method), Path: path}
	sr.handlers[key] = handler
	sr.exactRoutes[key] = isExactPath
}

// GetHandlerForPath finds the appropriate handler for a given path and a
// boolean of whether or not the handler was found.
func (sr *ServiceRegistry) GetHandlerForPath(method, path string) (ServiceHandler, bool) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	key := RouteKey{Method: strings.ToUpper(method), Path: path}
	if handler, ok := sr.handlers[key]; ok {
		if sr.exactRoutes[key] {
			return handler, true
		}
	}

	for routeKey, handler := range sr.handlers {
		if routeKey.Method != strings.ToUpper(method) {
			continue
		}
		if sr.exactRoutes[routeKey] {
			continue
		}
		if matchPath(routeKey.Path, path) {
			return handler, true
		}
	}

	return nil, false
}

// matchPath does simple pattern matching for routes.
// It supports patterns like "/inspection/:id" matching "/inspection/INS-1".
func matchPath(pattern, path string) bool {
	patternParts := strings.Split(pattern, "/")
	pathParts := strings.Split(path, "/")

	if len(patternParts) != len(pathParts) {
		return false
	}

	for i := 0; i < len(patternParts); i++ {
		if strings.HasPrefix(patternParts[i], ":") {
			continue
		}
		if patternParts[i] != pathParts[i] {
			return false
		}
	}

	return true
}

// RegisterDefaultServices sets up the inspection service routes.
func (sr *ServiceRegistry) RegisterDefaultServices() {
	sr.RegisterHandler("POST", "/schedule", true, sr.CreateScheduleHandler)
	sr.RegisterHandler("GET", "/schedule", true, sr.ListScheduleHandler)
	sr.RegisterHandler("POST", "/schedule/:id/execute", false, sr.ExecuteScheduleHandler)
	sr.RegisterHandler("POST", "/inspection", true, sr.CreateInspectionHandler)
	sr.RegisterHandler("GET", "/inspection/:id", false, sr.GetInspectionHandler)
	sr.RegisterHandler("POST", "/inspection/:id/items", false, sr.AddCheckItemHandler)
	sr.RegisterHandler("PUT", "/inspection/:id/items/:itemID", false, sr.UpdateCheckItemHandler)
	sr.RegisterHandler("PUT", "/inspection/:id/general-status", false, sr.GeneralStatusHandler)
	sr.RegisterHandler("POST", "/inspection/:id/sign", false, sr.SignHandler)
	sr.RegisterHandler("GET", "/matrix", true, sr.MatrixHandler)
	sr.RegisterHandler("GET", "/notifications/:userID", false, sr.NotificationsHandler)
}

// GenerateResponse executes the request against the registry.
func (req *Request) GenerateResponse(services *ServiceRegistry) (*Response, error) {
	path := req.Path
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	handler, found := services.GetHandlerForPath(req.Method, path)
	if !found {
		return &Response{
			StatusCode: http.StatusNotFound,
			Headers:    map[string]string{"Content-Type": "text/plain"},
			Body:       fmt.Sprintf("Service not found for %s %s", req.Method, path),
		}, nil
	}
	return handler(req)
}

func jsonResponse(statusCode int, payload interface{}) *Response {
	body, err := json.Marshal(payload)
	if err != nil {
		return &Response{
			StatusCode: http.StatusInternalServerError,
			Headers:    defaultHeaders,
			Body:       `{"error":"failed to encode response"}`,
		}
	}
	return &Response{
		StatusCode: statusCode,
		Headers:    defaultHeaders,
		Body:       string(body),
	}
}
