package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/safetrack/safetrack/journal"
	"github.com/safetrack/safetrack/repository"
	service_registry "github.com/safetrack/safetrack/srvreg"
)

// WebServer handles HTTP requests
type WebServer struct {
	httpAddr        string
	server          *http.Server
	logger          *log.Logger
	startTime       time.Time
	serviceRegistry *service_registry.ServiceRegistry
	repository      *repository.Repository
	journal         *journal.Journal
}

// NewWebServer creates a new web server
func NewWebServer(httpPort string, logger *log.Logger, serviceRegistry *service_registry.ServiceRegistry, repo *repository.Repository, jrnl *journal.Journal) *WebServer {
	mux := http.NewServeMux()

	server := &WebServer{
		httpAddr: ":" + httpPort,
		server: &http.Server{
			Addr:    ":" + httpPort,
			Handler: mux,
		},
		logger:          logger,
		startTime:       time.Now(),
		serviceRegistry: serviceRegistry,
		repository:      repo,
		journal:         jrnl,
	}

	// Register routes
	mux.HandleFunc("/", server.handleRoot)
	mux.HandleFunc("/health", server.handleHealth)
	mux.HandleFunc("/journal/", server.handleJournal)
	// Inspection service endpoints
	mux.HandleFunc("/schedule", server.handleServiceAPI)
	mux.HandleFunc("/schedule/", server.handleServiceAPI)
	mux.HandleFunc("/inspection", server.handleServiceAPI)
	mux.HandleFunc("/inspection/", server.handleServiceAPI)
	mux.HandleFunc("/matrix", server.handleServiceAPI)
	mux.HandleFunc("/notifications/", server.handleServiceAPI)

	return server
}

// Start starts the web server
func (ws *WebServer) Start() error {
	ws.logger.Printf("Starting web server on %s", ws.httpAddr)
	go func() {
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ws.logger.Printf("web server error: %v", err)
		}
	}()
	return nil
}

// Shutdown gracefully shuts down the web server
func (ws *WebServer) Shutdown(ctx context.Context) error {
	ws.logger.Println("Shutting down web server")
	return ws.server.Shutdown(ctx)
}

// handleRoot shows service status
func (ws *WebServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		JSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path != "/" {
		JSONError(w, "Not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.Encode(map[string]interface{}{
		"service": "safetrack",
		"status":  "online",
		"uptime":  time.Since(ws.startTime).String(),
	})
}

// handleHealth reports DB connectivity
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		JSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := "ok"
	statusCode := http.StatusOK
	sqlDB, err := ws.repository.DB().DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		status = "database unreachable: " + err.Error()
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

// handleJournal returns the recorded state transitions for an inspection
func (ws *WebServer) handleJournal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		JSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if ws.journal == nil {
		JSONError(w, "Journal is not enabled", http.StatusNotFound)
		return
	}

	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(pathParts) != 2 {
		JSONError(w, "Invalid inspection ID", http.StatusBadRequest)
		return
	}

	events, err := ws.journal.List(pathParts[1])
	if err != nil {
		JSONError(w, "Error reading journal: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(map[string]interface{}{"transitions": events}); err != nil {
		JSONError(w, "Error encoding response: "+err.Error(), http.StatusInternalServerError)
	}
}

// handleServiceAPI funnels inspection service requests through the registry
func (ws *WebServer) handleServiceAPI(w http.ResponseWriter, r *http.Request) {
	requestID, err := generateRequestID()
	if err != nil {
		JSONError(w, "Internal Server Error", http.StatusInternalServerError)
		ws.logger.Printf("Failed to generate request ID: %v", err)
		return
	}

	request, err := service_registry.ConvertHTTPRequest(r, requestID)
	if err != nil {
		JSONError(w, "Failed to convert request: "+err.Error(), http.StatusUnprocessableEntity)
		ws.logger.Printf("Failed to convert HTTP request: %v", err)
		return
	}

	response, err := request.GenerateResponse(ws.serviceRegistry)
	if err != nil {
		JSONError(w, "Failed to generate response: "+err.Error(), http.StatusInternalServerError)
		ws.logger.Printf("Failed to generate response: %v", err)
		return
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(response.StatusCode)
	w.Write([]byte(response.Body))

	ws.logger.Printf("%s %s -> %d [%s]", request.Method, request.Path, response.StatusCode, requestID)
}

func generateRequestID() (string, error) {
	bytes := make([]byte, 16)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// JSONError sends a JSON formatted error response with the given status code and message
func JSONError(w http.ResponseWriter, message string, statusCode int) {
	errorResponse := struct {
		Error string `json:"error"`
	}{
		Error: message,
	}
	jsonBytes, err := json.Marshal(errorResponse)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(jsonBytes)
}
