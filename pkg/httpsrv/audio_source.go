package httpsrv

import (
	"encoding/binary"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"frustration-engine/pkg/errors"
)

// StreamSource adapts websocket-pushed PCM into the monitor's AudioSource.
// Clients stream binary frames of 16-bit little-endian PCM; the monitor's
// probe tick drains whatever arrived since the last read.
type StreamSource struct {
	mutex    sync.Mutex
	buffer   []float64
	acquired bool

	// maxBuffered bounds memory when the monitor is slow or stopped
	maxBuffered int
}

// NewStreamSource creates a source that retains at most maxSeconds of audio
// at the given sample rate between reads.
func NewStreamSource(sampleRate int, maxSeconds float64) *StreamSource {
	return &StreamSource{
		maxBuffered: int(float64(sampleRate) * maxSeconds),
	}
}

// Acquire marks the source active. There is no device to open; audio arrives
// over the network.
func (s *StreamSource) Acquire() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.acquired {
		return errors.Wrap(errors.ErrAudioSourceUnavailable, "stream source already acquired")
	}
	s.acquired = true
	s.buffer = s.buffer[:0]
	return nil
}

// ReadWindow returns and clears everything pushed since the previous call.
func (s *StreamSource) ReadWindow() ([]float64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.acquired {
		return nil, errors.Wrap(errors.ErrAudioSourceUnavailable, "stream source not acquired")
	}
	if len(s.buffer) == 0 {
		return nil, nil
	}
	out := make([]float64, len(s.buffer))
	copy(out, s.buffer)
	s.buffer = s.buffer[:0]
	return out, nil
}

// Release marks the source idle and drops buffered audio.
func (s *StreamSource) Release() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.acquired = false
	s.buffer = nil
	return nil
}

// Push appends samples for the next ReadWindow. Audio pushed while the
// source is not acquired is discarded.
func (s *StreamSource) Push(samples []float64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.acquired {
		return
	}
	s.buffer = append(s.buffer, samples...)
	if s.maxBuffered > 0 && len(s.buffer) > s.maxBuffered {
		s.buffer = s.buffer[len(s.buffer)-s.maxBuffered:]
	}
}

// AudioIngestHandler upgrades a websocket connection and streams its binary
// PCM frames into the source until the client disconnects.
type AudioIngestHandler struct {
	logger *logrus.Entry
	source *StreamSource
}

// NewAudioIngestHandler creates the ingest handler.
func NewAudioIngestHandler(logger *logrus.Logger, source *StreamSource) *AudioIngestHandler {
	return &AudioIngestHandler{
		logger: logger.WithField("component", "audio_ingest"),
		source: source,
	}
}

// ServeHTTP handles one streaming client.
func (h *AudioIngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("Audio ingest upgrade failed")
		return
	}
	defer conn.Close()

	h.logger.Debug("Audio ingest client connected")
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			h.logger.Debug("Audio ingest client disconnected")
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		h.source.Push(decodePCM16(data))
	}
}

// decodePCM16 converts little-endian 16-bit PCM to [-1, 1] floats. Dividing
// by 32768 keeps the full negative excursion exactly at -1. A trailing odd
// byte is ignored.
func decodePCM16(data []byte) []float64 {
	n := len(data) / 2
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float64(v) / 32768
	}
	return samples
}
