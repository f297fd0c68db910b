// Package protocol defines the WebSocket message types exchanged between
// the navigation core and its collaborators: the phone app that streams
// GPS/compass samples and camera frames, and companion displays that
// subscribe to the hazard side-channel.
package protocol

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Phone → Core messages
	TypePosition MessageType = "position" // GPS/compass sample
	TypeFrame    MessageType = "frame"    // Camera frame
	TypeMode     MessageType = "mode"     // Navigation/hazard toggles
	TypeRoute    MessageType = "route"    // Route data from the directions provider

	// Core → Phone messages
	TypeSpeak     MessageType = "speak"     // Text for the phone's TTS
	TypeInterrupt MessageType = "interrupt" // Cancel current speech

	// Core → side-channel messages
	TypeHazard MessageType = "hazard" // Hazard presence/absence event
	TypeStatus MessageType = "status" // Session status snapshot

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Phone → Core Message Types
// =============================================================================

// PositionData is one GPS/compass sample. Heading is omitted when the
// compass is unavailable.
type PositionData struct {
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Heading   *float64 `json:"heading,omitempty"` // degrees, 0 = true north
	Accuracy  float64  `json:"accuracy,omitempty"`
	Timestamp int64    `json:"ts,omitempty"` // Unix milliseconds
}

// FrameData contains a camera frame
type FrameData struct {
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Format  string `json:"format"` // "jpeg"
	Data    string `json:"data"`   // base64 encoded
	FrameID uint64 `json:"frame_id,omitempty"`
}

// Decode returns the raw encoded image bytes.
func (f *FrameData) Decode() ([]byte, error) {
	return base64.StdEncoding.DecodeString(f.Data)
}

// ModeData toggles subsystems from the companion application. Nil
// fields leave the corresponding mode unchanged.
type ModeData struct {
	Navigation *bool `json:"navigation,omitempty"`
	Hazard     *bool `json:"hazard,omitempty"`
}

// RouteData delivers an externally computed route. Directions holds the
// provider's response verbatim.
type RouteData struct {
	Destination string          `json:"destination"`
	Directions  json.RawMessage `json:"directions"`
}

// =============================================================================
// Core → Phone Message Types
// =============================================================================

// SpeakData contains text for the phone's TTS collaborator
type SpeakData struct {
	Text string `json:"text"`
}

// =============================================================================
// Side-channel Message Types
// =============================================================================

// HazardData is the hazard presence/absence event published on the
// side-channel topic, spoken or not.
type HazardData struct {
	Detected    bool   `json:"detected"`
	Description string `json:"description"`
}

// StatusData is a session status snapshot for companion displays
type StatusData struct {
	PhoneConnected   bool   `json:"phone_connected"`
	NavigationActive bool   `json:"navigation_active"`
	HazardActive     bool   `json:"hazard_active"`
	Destination      string `json:"destination,omitempty"`
	FramesProcessed  uint64 `json:"frames_processed"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}

// =============================================================================
// Typed accessors
// =============================================================================

// GetPositionData extracts PositionData from a position message
func (m *Message) GetPositionData() (*PositionData, error) {
	if m.Type != TypePosition {
		return nil, fmt.Errorf("message type is %s, not %s", m.Type, TypePosition)
	}
	var data PositionData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetFrameData extracts FrameData from a frame message
func (m *Message) GetFrameData() (*FrameData, error) {
	if m.Type != TypeFrame {
		return nil, fmt.Errorf("message type is %s, not %s", m.Type, TypeFrame)
	}
	var data FrameData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetModeData extracts ModeData from a mode message
func (m *Message) GetModeData() (*ModeData, error) {
	if m.Type != TypeMode {
		return nil, fmt.Errorf("message type is %s, not %s", m.Type, TypeMode)
	}
	var data ModeData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetRouteData extracts RouteData from a route message
func (m *Message) GetRouteData() (*RouteData, error) {
	if m.Type != TypeRoute {
		return nil, fmt.Errorf("message type is %s, not %s", m.Type, TypeRoute)
	}
	var data RouteData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetSpeakData extracts SpeakData from a speak message
func (m *Message) GetSpeakData() (*SpeakData, error) {
	if m.Type != TypeSpeak {
		return nil, fmt.Errorf("message type is %s, not %s", m.Type, TypeSpeak)
	}
	var data SpeakData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetHazardData extracts HazardData from a hazard message
func (m *Message) GetHazardData() (*HazardData, error) {
	if m.Type != TypeHazard {
		return nil, fmt.Errorf("message type is %s, not %s", m.Type, TypeHazard)
	}
	var data HazardData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
