package httpsrv

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frustration-engine/pkg/classifier"
	"frustration-engine/pkg/prosody"
	"frustration-engine/pkg/textpattern"
	"frustration-engine/pkg/tracker"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestServer(t *testing.T) (*Server, *httptest.Server, func()) {
	t.Helper()

	logger := testLogger()
	trk := tracker.NewTracker(logger, textpattern.NewMatcher())
	clf := classifier.New(logger, classifier.DefaultConfig(), trk, nil)

	hub := NewMeterHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	source := NewStreamSource(16000, 10)
	ingest := NewAudioIngestHandler(logger, source)

	s := NewServer(logger, ServerConfig{ListenAddr: ":0"}, clf, hub, ingest, nil)
	ts := httptest.NewServer(s.httpServer.Handler)

	return s, ts, func() {
		ts.Close()
		cancel()
	}
}

func TestHandleClassify(t *testing.T) {
	_, ts, cleanup := newTestServer(t)
	defer cleanup()

	body, err := json.Marshal(ClassifyRequest{
		SessionID: "session-1",
		Text:      "Odio la matematica, non ci riesco mai!",
		Locale:    "it",
	})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/classify", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out ClassifyResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "session-1", out.SessionID)
	assert.NotEmpty(t, out.RequestID)
	assert.True(t, out.Result.ShouldIntervene)
	assert.Equal(t, classifier.InterventionHelp, out.Result.InterventionType)
}

func TestHandleClassifyGeneratesSessionID(t *testing.T) {
	_, ts, cleanup := newTestServer(t)
	defer cleanup()

	resp, err := http.Post(ts.URL+"/classify", "application/json",
		strings.NewReader(`{"text":"hello there"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out ClassifyResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NotEmpty(t, out.SessionID)
}

func TestHandleClassifyRejectsBadInput(t *testing.T) {
	_, ts, cleanup := newTestServer(t)
	defer cleanup()

	t.Run("malformed body", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/classify", "application/json",
			strings.NewReader(`{{{`))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("wrong method", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/classify")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestHandleReset(t *testing.T) {
	_, ts, cleanup := newTestServer(t)
	defer cleanup()

	resp, err := http.Post(ts.URL+"/reset", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/reset")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHandleHealth(t *testing.T) {
	_, ts, cleanup := newTestServer(t)
	defer cleanup()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "ok", status["status"])
}

func TestMeterStream(t *testing.T) {
	s, ts, cleanup := newTestServer(t)
	defer cleanup()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/meters"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the hub a beat to process the registration
	time.Sleep(50 * time.Millisecond)

	s.hub.BroadcastProbe(prosody.Probe{Volume: 0.3, Pitch: 200, VoiceActive: true, Timestamp: time.Now()})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame Frame
	require.NoError(t, json.Unmarshal(data, &frame))
	assert.Equal(t, "probe", frame.Type)
	require.NotNil(t, frame.Probe)
	assert.InDelta(t, 200, frame.Probe.Pitch, 0.001)
	assert.True(t, frame.Probe.VoiceActive)
}

func TestMeterHubShutdownUnblocksClients(t *testing.T) {
	hub := NewMeterHub(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	ts := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	time.Sleep(50 * time.Millisecond)
	cancel()

	// The hub closes the client's send channel on shutdown; the write pump
	// turns that into a close frame
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)

	// A client arriving after shutdown is turned away, not left blocked on
	// the register channel
	late, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer late.Close()
	late.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = late.ReadMessage()
	assert.Error(t, err)
}

func TestDecodePCM16(t *testing.T) {
	// 32767, -32768, 0, plus a trailing odd byte
	data := []byte{0xFF, 0x7F, 0x00, 0x80, 0x00, 0x00, 0x01}
	samples := decodePCM16(data)

	require.Len(t, samples, 3)
	assert.InDelta(t, 32767.0/32768.0, samples[0], 1e-9)
	assert.Equal(t, -1.0, samples[1])
	assert.Zero(t, samples[2])
}

func TestAudioIngest(t *testing.T) {
	logger := testLogger()
	source := NewStreamSource(16000, 10)
	ingest := NewAudioIngestHandler(logger, source)

	ts := httptest.NewServer(ingest)
	defer ts.Close()

	require.NoError(t, source.Acquire())

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Two full-scale-positive and two full-scale-negative samples
	pcm := []byte{0xFF, 0x7F, 0xFF, 0x7F, 0x01, 0x80, 0x01, 0x80}
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, pcm))

	var samples []float64
	require.Eventually(t, func() bool {
		read, err := source.ReadWindow()
		if err != nil || len(read) == 0 {
			return false
		}
		samples = read
		return true
	}, 2*time.Second, 10*time.Millisecond)

	require.Len(t, samples, 4)
	assert.InDelta(t, 1.0, samples[0], 0.001)
	assert.InDelta(t, -1.0, samples[2], 0.001)
}

func TestStreamSource(t *testing.T) {
	source := NewStreamSource(16000, 10)

	// Not acquired: reads fail, pushes are dropped
	_, err := source.ReadWindow()
	assert.Error(t, err)
	source.Push([]float64{0.1})

	require.NoError(t, source.Acquire())
	_, err = source.ReadWindow()
	require.NoError(t, err)

	source.Push([]float64{0.1, 0.2})
	source.Push([]float64{0.3})

	samples, err := source.ReadWindow()
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, samples)

	// Drained after read
	samples, err = source.ReadWindow()
	require.NoError(t, err)
	assert.Empty(t, samples)

	// Double acquire rejected
	assert.Error(t, source.Acquire())

	require.NoError(t, source.Release())
	_, err = source.ReadWindow()
	assert.Error(t, err)
}

func TestStreamSourceCapsBuffer(t *testing.T) {
	source := NewStreamSource(10, 1) // 10 samples max
	require.NoError(t, source.Acquire())

	big := make([]float64, 25)
	for i := range big {
		big[i] = float64(i)
	}
	source.Push(big)

	samples, err := source.ReadWindow()
	require.NoError(t, err)
	require.Len(t, samples, 10)
	assert.Equal(t, 15.0, samples[0]) // oldest dropped
}
