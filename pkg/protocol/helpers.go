package protocol

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewPositionMessage creates a position sample message
func NewPositionMessage(lat, lng float64, heading *float64) (*Message, error) {
	return NewMessage(TypePosition, PositionData{
		Lat:       lat,
		Lng:       lng,
		Heading:   heading,
		Timestamp: time.Now().UnixMilli(),
	})
}

// NewFrameMessage creates a frame message from raw JPEG data
func NewFrameMessage(width, height int, jpegData []byte, frameID uint64) (*Message, error) {
	return NewMessage(TypeFrame, FrameData{
		Width:   width,
		Height:  height,
		Format:  "jpeg",
		Data:    base64.StdEncoding.EncodeToString(jpegData),
		FrameID: frameID,
	})
}

// NewModeMessage creates a mode toggle message. Nil leaves a mode unchanged.
func NewModeMessage(navigation, hazard *bool) (*Message, error) {
	return NewMessage(TypeMode, ModeData{
		Navigation: navigation,
		Hazard:     hazard,
	})
}

// NewRouteMessage creates a route message carrying the directions
// provider response verbatim
func NewRouteMessage(destination string, directions json.RawMessage) (*Message, error) {
	return NewMessage(TypeRoute, RouteData{
		Destination: destination,
		Directions:  directions,
	})
}

// NewSpeakMessage creates a speak message for the phone's TTS
func NewSpeakMessage(text string) (*Message, error) {
	return NewMessage(TypeSpeak, SpeakData{Text: text})
}

// NewInterruptMessage creates a message that cancels current speech
func NewInterruptMessage() (*Message, error) {
	return NewMessage(TypeInterrupt, nil)
}

// NewHazardMessage creates a hazard side-channel event
func NewHazardMessage(detected bool, description string) (*Message, error) {
	return NewMessage(TypeHazard, HazardData{
		Detected:    detected,
		Description: description,
	})
}

// NewStatusMessage creates a status snapshot message
func NewStatusMessage(status StatusData) (*Message, error) {
	return NewMessage(TypeStatus, status)
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: time.Now().UnixMilli(),
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}
