package httpsrv

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"frustration-engine/pkg/classifier"
	"frustration-engine/pkg/metrics"
	"frustration-engine/pkg/textpattern"
	"frustration-engine/pkg/timing"
)

// ClassifyRequest is the JSON body accepted by the classify endpoint. Any
// non-empty subset of the three sources may be present.
type ClassifyRequest struct {
	SessionID    string              `json:"session_id,omitempty"`
	Text         string              `json:"text,omitempty"`
	Locale       string              `json:"locale,omitempty"`
	WordTimings  []timing.WordTiming `json:"word_timings,omitempty"`
	AudioSamples []float64           `json:"audio_samples,omitempty"`
	SampleRate   int                 `json:"sample_rate,omitempty"`
}

// ClassifyResponse wraps the classification result with request identity.
type ClassifyResponse struct {
	SessionID string            `json:"session_id"`
	RequestID string            `json:"request_id"`
	Result    classifier.Result `json:"result"`
}

// EventPublisher is the messaging collaborator; nil disables publishing.
type EventPublisher interface {
	PublishClassification(sessionID string, result classifier.Result) error
	IsConnected() bool
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	ListenAddr     string
	MetricsEnabled bool
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// Server is the engine's HTTP surface: classification requests, websocket
// meter streams, audio ingest, metrics and health.
type Server struct {
	logger     *logrus.Entry
	config     ServerConfig
	hub        *MeterHub
	ingest     *AudioIngestHandler
	classifier *classifier.Classifier
	publisher  EventPublisher
	httpServer *http.Server

	// The classifier is single-session and not safe for concurrent use
	classifyMutex sync.Mutex
}

// NewServer wires the HTTP surface. publisher may be nil.
func NewServer(logger *logrus.Logger, config ServerConfig, clf *classifier.Classifier,
	hub *MeterHub, ingest *AudioIngestHandler, publisher EventPublisher) *Server {

	s := &Server{
		logger:     logger.WithField("component", "http_server"),
		config:     config,
		hub:        hub,
		ingest:     ingest,
		classifier: clf,
		publisher:  publisher,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/classify", s.handleClassify)
	mux.HandleFunc("/reset", s.handleReset)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ws/meters", hub.ServeWS)
	if ingest != nil {
		mux.Handle("/ws/audio", ingest)
	}
	if config.MetricsEnabled {
		mux.Handle("/metrics", metrics.Handler())
	}

	s.httpServer = &http.Server{
		Addr:         config.ListenAddr,
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
	return s
}

// Start serves until Shutdown; it blocks like http.Server.ListenAndServe.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.config.ListenAddr).Info("HTTP server listening")
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	input := classifier.Input{
		Text:         req.Text,
		Locale:       textpattern.Locale(req.Locale),
		WordTimings:  req.WordTimings,
		AudioSamples: req.AudioSamples,
		SampleRate:   req.SampleRate,
	}

	s.classifyMutex.Lock()
	result := s.classifier.Classify(input)
	s.classifyMutex.Unlock()

	if s.publisher != nil && s.publisher.IsConnected() {
		if err := s.publisher.PublishClassification(req.SessionID, result); err != nil {
			s.logger.WithError(err).Warn("Classification event publish failed")
		}
	}

	s.writeJSON(w, ClassifyResponse{
		SessionID: req.SessionID,
		RequestID: uuid.New().String(),
		Result:    result,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.classifyMutex.Lock()
	s.classifier.Reset()
	s.classifyMutex.Unlock()

	s.logger.Info("Session state reset")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC(),
	}
	if s.publisher != nil {
		status["amqp_connected"] = s.publisher.IsConnected()
	}
	s.writeJSON(w, status)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}
