// Package websocket streams pipeline runs over a WebSocket connection. A client
// records audio as binary frames between recording_start and recording_end and
// receives a state message for every pipeline transition, the synthesized audio
// as a binary frame, and a final result message.
package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
	"github.com/shelenderrkumar/healthcare-translation/usecase"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size allowed from peer.
	maxMessageSize = 512 * 1024

	defaultMaxAudioBytes = 25 << 20
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Pipeline is the part of usecase.TranslationService a stream drives
type Pipeline interface {
	RunWithProgress(ctx context.Context, clip entities.AudioClip, selection entities.LanguageSelection, progress usecase.ProgressFunc) *entities.PipelineOutcome
	Speak(ctx context.Context, text, languageCode string) *entities.SynthesisResult
}

// Hub tracks the connected clients. Clients never share run state.
type Hub struct {
	// Registered clients.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Closed when Run returns.
	done chan struct{}

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	pipeline      Pipeline
	validator     *MessageValidator
	maxAudioBytes int

	logger *zap.Logger
}

// NewHub creates a new WebSocket hub. maxAudioBytes bounds one recording;
// zero selects 25 MiB.
func NewHub(pipeline Pipeline, maxAudioBytes int64, logger *zap.Logger) *Hub {
	if maxAudioBytes <= 0 {
		maxAudioBytes = defaultMaxAudioBytes
	}
	return &Hub{
		clients:       make(map[string]*Client),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		done:          make(chan struct{}),
		pipeline:      pipeline,
		validator:     NewMessageValidator(),
		maxAudioBytes: int(maxAudioBytes),
		logger:        logger,
	}
}

// Run starts the hub's main loop. When ctx ends every client is cancelled and
// Run returns.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			h.logger.Info("Client registered", zap.String("clientID", client.id))

		case client := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, client.id)
			h.mu.Unlock()
			h.logger.Info("Client unregistered", zap.String("clientID", client.id))

		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				client.cancel()
				delete(h.clients, id)
			}
			h.mu.Unlock()
			h.logger.Info("Hub stopped")
			return
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the request and serves the client until it disconnects
func (h *Hub) HandleWebSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.New().String()
	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan WriteData, 256),
		id:     id,
		ctx:    ctx,
		cancel: cancel,
		logger: h.logger.With(zap.String("clientID", id)),
	}

	select {
	case h.register <- client:
	case <-h.done:
		cancel()
		conn.Close()
		return nil
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

type WriteData struct {
	// MessageType is the type of the websocket message.
	// Expect websocket.TextMessage or websocket.BinaryMessage
	Type    int
	Payload []byte
}

// recording collects the binary frames of one clip
type recording struct {
	selection  entities.LanguageSelection
	encoding   string
	sampleRate int
	audio      bytes.Buffer
}

// Client is a middleman between the websocket connection and the pipeline.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan WriteData

	id string

	// Cancelled on disconnect; a running pipeline stops at its next stage boundary.
	ctx    context.Context
	cancel context.CancelFunc

	logger *zap.Logger

	mutex     sync.Mutex
	recording *recording
	busy      bool
}

// readPump pumps messages from the websocket connection to the client handlers.
func (c *Client) readPump() {
	defer func() {
		c.cancel()
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			c.processMessage(message)
		case websocket.BinaryMessage:
			c.processAudioChunk(message)
		default:
			c.logger.Warn("Received unknown message type", zap.Int("type", messageType))
		}
	}
}

// writePump pumps messages from the client to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				c.cancel()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.cancel()
				return
			}

		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// processMessage dispatches a text frame
func (c *Client) processMessage(message []byte) {
	parsed, err := c.hub.validator.ValidateMessage(message)
	if err != nil {
		c.logger.Warn("Rejected message", zap.Error(err))
		c.sendJSON(CreateErrorMessage(ErrorCodeInvalidMessage, err.Error()))
		return
	}

	switch msg := parsed.(type) {
	case *RecordingStartMessage:
		c.handleRecordingStart(msg)
	case *RecordingEndMessage:
		c.handleRecordingEnd()
	case *SpeakMessage:
		c.handleSpeak(msg)
	case *PingMessage:
		c.sendJSON(CreatePongMessage(msg.Data))
	}
}

// handleRecordingStart opens a new recording, discarding any unfinished one
func (c *Client) handleRecordingStart(msg *RecordingStartMessage) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.busy {
		c.sendJSON(CreateErrorMessage(ErrorCodeBusy, "a run is already in progress"))
		return
	}

	c.recording = &recording{
		selection:  msg.Selection(),
		encoding:   msg.Encoding,
		sampleRate: msg.SampleRate,
	}

	c.logger.Info("Recording started",
		zap.String("source", string(msg.Selection().Source)),
		zap.String("target", string(msg.Selection().Target)))
}

// processAudioChunk appends a binary frame to the open recording
func (c *Client) processAudioChunk(data []byte) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.recording == nil {
		c.sendJSON(CreateErrorMessage(ErrorCodeNotRecording, "send recording_start before audio"))
		return
	}

	if c.recording.audio.Len()+len(data) > c.hub.maxAudioBytes {
		c.recording = nil
		c.sendJSON(CreateErrorMessage(ErrorCodeAudioTooLarge, "recording exceeds the size limit"))
		return
	}

	c.recording.audio.Write(data)
	c.logger.Debug("Received audio chunk",
		zap.Int("size", len(data)),
		zap.Int("total", c.recording.audio.Len()))
}

// handleRecordingEnd closes the recording and runs the pipeline on it
func (c *Client) handleRecordingEnd() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	rec := c.recording
	c.recording = nil

	if rec == nil {
		c.sendJSON(CreateErrorMessage(ErrorCodeNotRecording, "no recording in progress"))
		return
	}
	if rec.audio.Len() == 0 {
		c.sendJSON(CreateErrorMessage(ErrorCodeEmptyAudio, "recording is empty"))
		return
	}

	clip := entities.NewAudioClip(rec.audio.Bytes(), rec.encoding, rec.sampleRate, "")
	c.busy = true
	go c.runPipeline(clip, rec.selection)
}

func (c *Client) runPipeline(clip entities.AudioClip, selection entities.LanguageSelection) {
	defer c.setIdle()

	outcome := c.hub.pipeline.RunWithProgress(c.ctx, clip, selection,
		func(state entities.PipelineState, outcome *entities.PipelineOutcome) {
			c.sendJSON(CreateStateMessage(state, outcome))
		})

	if audio, ok := outcome.Audio(); ok {
		c.sendBinary(audio.Audio)
	}
	c.sendJSON(CreateResultMessage(outcome))
}

// handleSpeak synthesizes text on the shortcut path
func (c *Client) handleSpeak(msg *SpeakMessage) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.busy {
		c.sendJSON(CreateErrorMessage(ErrorCodeBusy, "a run is already in progress"))
		return
	}
	c.busy = true

	go func() {
		defer c.setIdle()

		result := c.hub.pipeline.Speak(c.ctx, msg.Text, msg.LanguageCode)
		if !result.OK() {
			message := "speech synthesis failed"
			if result.Failure != nil {
				message = result.Failure.Message
			}
			c.sendJSON(CreateErrorMessage(ErrorCodeSynthesis, message))
			return
		}
		c.sendBinary(result.Audio)
		c.sendJSON(CreateSpeakEndMessage(result))
	}()
}

func (c *Client) setIdle() {
	c.mutex.Lock()
	c.busy = false
	c.mutex.Unlock()
}

func (c *Client) sendJSON(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to encode message", zap.Error(err))
		return
	}
	c.enqueue(WriteData{Type: websocket.TextMessage, Payload: payload})
}

func (c *Client) sendBinary(payload []byte) {
	c.enqueue(WriteData{Type: websocket.BinaryMessage, Payload: payload})
}

// enqueue blocks until the write pump takes the message or the client goes away
func (c *Client) enqueue(data WriteData) {
	select {
	case c.send <- data:
	case <-c.ctx.Done():
	}
}
