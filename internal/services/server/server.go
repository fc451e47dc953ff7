// Package server exposes the question loop and the filesystem probes over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/scout/internal/agent"
	"github.com/temirov/scout/internal/commands"
)

const (
	defaultListenAddress    = "127.0.0.1:0"
	defaultShutdownDuration = 5 * time.Second
	headerContentType       = "Content-Type"
	headerRequestID         = "X-Request-ID"
	mimeTypeJSON            = "application/json"

	capabilitiesPath = "/capabilities"
	askPath          = "/ask"
	treePath         = "/tree"
	showPath         = "/show"

	errorFieldName       = "error"
	errorQuestionMissing = "question is required"
	errorPathMissing     = "path is required"
	errorInvalidBody     = "invalid request body: %v"
	errorInternal        = "internal server error"
)

// Capability describes an endpoint exposed by the server.
type Capability struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Capabilities lists the endpoints every server exposes.
var Capabilities = []Capability{
	{Name: "ask", Description: "Answer a question about the repository"},
	{Name: "tree", Description: "List a directory tree with ignore rules applied"},
	{Name: "show", Description: "Show the content of a text file"},
}

// Asker answers questions. *agent.Controller satisfies it.
type Asker interface {
	ProcessQuery(ctx context.Context, question string) (agent.Result, error)
}

// Prober runs single filesystem probes. *commands.Interpreter satisfies it.
type Prober interface {
	RenderDirectory(path string, depth commands.Depth) (commands.CommandResult, error)
	Execute(action commands.Action) (commands.CommandResult, error)
}

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is the body returned by POST /ask.
type AskResponse struct {
	SessionID    string `json:"sessionId"`
	Answer       string `json:"answer"`
	Iterations   int    `json:"iterations"`
	LimitReached bool   `json:"limitReached"`
}

// ProbeRequest is the body of POST /tree and POST /show. Depth applies to trees; nil or negative
// lists everything.
type ProbeRequest struct {
	Path  string `json:"path"`
	Depth *int   `json:"depth,omitempty"`
}

// ProbeResponse is the body returned by the probe endpoints.
type ProbeResponse struct {
	Command string `json:"command"`
	Output  string `json:"output"`
}

// Config defines runtime options for the server.
type Config struct {
	Address         string
	ShutdownTimeout time.Duration
	Asker           Asker
	Prober          Prober
	Logger          *zap.Logger
}

// Server serves questions and probes over HTTP.
type Server struct {
	config Config
}

// NewServer creates a new Server with defaults applied.
func NewServer(config Config) Server {
	normalized := config
	if normalized.Address == "" {
		normalized.Address = defaultListenAddress
	}
	if normalized.ShutdownTimeout <= 0 {
		normalized.ShutdownTimeout = defaultShutdownDuration
	}
	if normalized.Logger == nil {
		normalized.Logger = zap.NewNop()
	}
	return Server{config: normalized}
}

// Run starts the server and blocks until the provided context is canceled.
// The notify callback receives the bound address once the listener is active.
func (server Server) Run(ctx context.Context, notify func(string)) error {
	listener, listenErr := net.Listen("tcp", server.config.Address)
	if listenErr != nil {
		return fmt.Errorf("listen on %s: %w", server.config.Address, listenErr)
	}
	actualAddress := listener.Addr().String()

	httpServer := &http.Server{
		Handler:     server.Handler(),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		serveErr := httpServer.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", serveErr)
		}
		return nil
	})

	if notify != nil {
		notify(actualAddress)
	}
	server.config.Logger.Info("server listening", zap.String("address", actualAddress))

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.config.ShutdownTimeout)
		defer cancel()
		shutdownErr := httpServer.Shutdown(shutdownCtx)
		if shutdownErr != nil && !errors.Is(shutdownErr, context.Canceled) && !errors.Is(shutdownErr, http.ErrServerClosed) {
			return fmt.Errorf("shutdown http: %w", shutdownErr)
		}
		return nil
	})

	return group.Wait()
}

// Handler returns the router serving every endpoint.
func (server Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(server.requestLogger)
	router.Use(server.recoverer)

	router.Get("/", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})
	router.Get(capabilitiesPath, server.handleCapabilities)
	if server.config.Asker != nil {
		router.Post(askPath, server.handleAsk)
	}
	if server.config.Prober != nil {
		router.Post(treePath, server.handleTree)
		router.Post(showPath, server.handleShow)
	}
	return router
}

func (server Server) handleCapabilities(writer http.ResponseWriter, _ *http.Request) {
	payload := struct {
		Capabilities []Capability `json:"capabilities"`
	}{Capabilities: Capabilities}
	server.writeJSON(writer, http.StatusOK, payload)
}

func (server Server) handleAsk(writer http.ResponseWriter, request *http.Request) {
	var body AskRequest
	if decodeErr := json.NewDecoder(request.Body).Decode(&body); decodeErr != nil {
		server.writeError(writer, http.StatusBadRequest, fmt.Sprintf(errorInvalidBody, decodeErr))
		return
	}
	question := strings.TrimSpace(body.Question)
	if question == "" {
		server.writeError(writer, http.StatusBadRequest, errorQuestionMissing)
		return
	}
	result, askErr := server.config.Asker.ProcessQuery(request.Context(), question)
	if askErr != nil {
		server.writeError(writer, statusForAskError(askErr), askErr.Error())
		return
	}
	server.writeJSON(writer, http.StatusOK, AskResponse{
		SessionID:    result.SessionID,
		Answer:       result.Answer,
		Iterations:   result.Iterations,
		LimitReached: result.LimitReached,
	})
}

func (server Server) handleTree(writer http.ResponseWriter, request *http.Request) {
	body, ok := server.decodeProbe(writer, request)
	if !ok {
		return
	}
	depth := commands.UnlimitedDepth
	if body.Depth != nil && *body.Depth >= 0 {
		depth = commands.LimitedDepth(*body.Depth)
	}
	result, probeErr := server.config.Prober.RenderDirectory(body.Path, depth)
	server.writeProbe(writer, result, probeErr)
}

func (server Server) handleShow(writer http.ResponseWriter, request *http.Request) {
	body, ok := server.decodeProbe(writer, request)
	if !ok {
		return
	}
	result, probeErr := server.config.Prober.Execute(commands.ShowFile{Path: body.Path})
	server.writeProbe(writer, result, probeErr)
}

func (server Server) decodeProbe(writer http.ResponseWriter, request *http.Request) (ProbeRequest, bool) {
	var body ProbeRequest
	if decodeErr := json.NewDecoder(request.Body).Decode(&body); decodeErr != nil {
		server.writeError(writer, http.StatusBadRequest, fmt.Sprintf(errorInvalidBody, decodeErr))
		return ProbeRequest{}, false
	}
	body.Path = strings.TrimSpace(body.Path)
	if body.Path == "" {
		server.writeError(writer, http.StatusBadRequest, errorPathMissing)
		return ProbeRequest{}, false
	}
	return body, true
}

func (server Server) writeProbe(writer http.ResponseWriter, result commands.CommandResult, probeErr error) {
	if probeErr != nil {
		server.writeError(writer, statusForProbeError(probeErr), probeErr.Error())
		return
	}
	server.writeJSON(writer, http.StatusOK, ProbeResponse{Command: result.Command, Output: result.Output})
}

// statusForProbeError maps probe failures onto HTTP status codes.
func statusForProbeError(err error) int {
	switch {
	case errors.Is(err, commands.ErrPathNotFound):
		return http.StatusNotFound
	case errors.Is(err, commands.ErrPathIsDirectory), errors.Is(err, commands.ErrUnknownCommand):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// statusForAskError maps question failures onto HTTP status codes. Failures of the model or of
// the probes it planned are upstream failures.
func statusForAskError(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	var stepError *agent.StepError
	if errors.As(err, &stepError) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (server Server) writeError(writer http.ResponseWriter, status int, message string) {
	server.writeJSON(writer, status, map[string]string{errorFieldName: message})
}

func (server Server) writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set(headerContentType, mimeTypeJSON)
	writer.WriteHeader(status)
	if encodeErr := json.NewEncoder(writer).Encode(payload); encodeErr != nil {
		server.config.Logger.Warn("write response failed", zap.Error(encodeErr))
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (writer *statusWriter) WriteHeader(status int) {
	writer.status = status
	writer.ResponseWriter.WriteHeader(status)
}

// requestLogger tags every request with an id and logs method, path, status and duration.
func (server Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		requestID := uuid.NewString()[:8]
		writer.Header().Set(headerRequestID, requestID)
		started := time.Now()
		recorder := &statusWriter{ResponseWriter: writer, status: http.StatusOK}
		next.ServeHTTP(recorder, request)
		server.config.Logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", request.Method),
			zap.String("path", request.URL.Path),
			zap.Int("status", recorder.status),
			zap.Duration("duration", time.Since(started)),
		)
	})
}

func (server Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				server.config.Logger.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", request.URL.Path))
				server.writeError(writer, http.StatusInternalServerError, errorInternal)
			}
		}()
		next.ServeHTTP(writer, request)
	})
}
