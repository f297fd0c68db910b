package protocol

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		msgType MessageType
		data    interface{}
		wantErr bool
	}{
		{
			name:    "position message",
			msgType: TypePosition,
			data:    PositionData{Lat: 40.7128, Lng: -74.0060},
			wantErr: false,
		},
		{
			name:    "frame message",
			msgType: TypeFrame,
			data:    FrameData{Width: 640, Height: 480, Format: "jpeg"},
			wantErr: false,
		},
		{
			name:    "hazard message",
			msgType: TypeHazard,
			data:    HazardData{Detected: true, Description: "person"},
			wantErr: false,
		},
		{
			name:    "nil data",
			msgType: TypeInterrupt,
			data:    nil,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.msgType, tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMessage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if msg.Type != tt.msgType {
				t.Errorf("NewMessage() type = %v, want %v", msg.Type, tt.msgType)
			}
			if msg.Timestamp == 0 {
				t.Error("NewMessage() timestamp should be set")
			}
		})
	}
}

func TestPositionRoundTrip(t *testing.T) {
	heading := 182.5
	msg, err := NewPositionMessage(51.5007, -0.1246, &heading)
	if err != nil {
		t.Fatalf("NewPositionMessage() error = %v", err)
	}

	raw, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	parsed, err := ParseMessage(raw)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}

	pos, err := parsed.GetPositionData()
	if err != nil {
		t.Fatalf("GetPositionData() error = %v", err)
	}
	if pos.Lat != 51.5007 || pos.Lng != -0.1246 {
		t.Errorf("position = (%f, %f), want (51.5007, -0.1246)", pos.Lat, pos.Lng)
	}
	if pos.Heading == nil || *pos.Heading != 182.5 {
		t.Errorf("heading = %v, want 182.5", pos.Heading)
	}
}

func TestPositionWithoutHeading(t *testing.T) {
	msg, err := NewPositionMessage(0, 0, nil)
	if err != nil {
		t.Fatalf("NewPositionMessage() error = %v", err)
	}

	// The heading key must be absent, not null, so phone clients can
	// emit compact samples.
	if bytes.Contains(msg.Data, []byte("heading")) {
		t.Errorf("heading key present in %s", msg.Data)
	}

	pos, err := msg.GetPositionData()
	if err != nil {
		t.Fatalf("GetPositionData() error = %v", err)
	}
	if pos.Heading != nil {
		t.Errorf("heading = %v, want nil", pos.Heading)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	jpeg := []byte("not really a jpeg but enough for transport")
	msg, err := NewFrameMessage(640, 480, jpeg, 7)
	if err != nil {
		t.Fatalf("NewFrameMessage() error = %v", err)
	}

	raw, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	parsed, err := ParseMessage(raw)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}

	frame, err := parsed.GetFrameData()
	if err != nil {
		t.Fatalf("GetFrameData() error = %v", err)
	}
	decoded, err := frame.Decode()
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !bytes.Equal(decoded, jpeg) {
		t.Error("frame data did not survive the round trip")
	}
	if frame.FrameID != 7 {
		t.Errorf("frame ID = %d, want 7", frame.FrameID)
	}
}

func TestModeMessagePartialToggle(t *testing.T) {
	on := true
	msg, err := NewModeMessage(nil, &on)
	if err != nil {
		t.Fatalf("NewModeMessage() error = %v", err)
	}

	mode, err := msg.GetModeData()
	if err != nil {
		t.Fatalf("GetModeData() error = %v", err)
	}
	if mode.Navigation != nil {
		t.Errorf("navigation toggle = %v, want nil (unchanged)", *mode.Navigation)
	}
	if mode.Hazard == nil || !*mode.Hazard {
		t.Error("hazard toggle lost")
	}
}

func TestRouteMessageCarriesDirectionsVerbatim(t *testing.T) {
	directions := json.RawMessage(`{"status":"OK","routes":[{"legs":[]}]}`)
	msg, err := NewRouteMessage("9 Destination Ave", directions)
	if err != nil {
		t.Fatalf("NewRouteMessage() error = %v", err)
	}

	rd, err := msg.GetRouteData()
	if err != nil {
		t.Fatalf("GetRouteData() error = %v", err)
	}
	if rd.Destination != "9 Destination Ave" {
		t.Errorf("destination = %q", rd.Destination)
	}
	if !bytes.Equal(rd.Directions, directions) {
		t.Errorf("directions altered: %s", rd.Directions)
	}
}

func TestHazardEventShape(t *testing.T) {
	msg, err := NewHazardMessage(true, "fire hydrant")
	if err != nil {
		t.Fatalf("NewHazardMessage() error = %v", err)
	}

	// Side-channel consumers depend on the exact field names.
	var event map[string]interface{}
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if event["detected"] != true || event["description"] != "fire hydrant" {
		t.Errorf("unexpected event shape: %v", event)
	}
}

func TestGetDataTypeMismatch(t *testing.T) {
	msg, err := NewSpeakMessage("hello")
	if err != nil {
		t.Fatalf("NewSpeakMessage() error = %v", err)
	}
	if _, err := msg.GetPositionData(); err == nil {
		t.Error("GetPositionData() accepted a speak message")
	}
	if _, err := msg.GetFrameData(); err == nil {
		t.Error("GetFrameData() accepted a speak message")
	}
}

func TestParseMessageMalformed(t *testing.T) {
	if _, err := ParseMessage([]byte("{nope")); err == nil {
		t.Error("ParseMessage accepted malformed JSON")
	}
}

func TestPongLatency(t *testing.T) {
	msg, err := NewPongMessage("abc", 1000, 1042)
	if err != nil {
		t.Fatalf("NewPongMessage() error = %v", err)
	}
	var pong PongData
	if err := msg.ParseData(&pong); err != nil {
		t.Fatalf("ParseData() error = %v", err)
	}
	if pong.LatencyMs != 42 {
		t.Errorf("latency = %d, want 42", pong.LatencyMs)
	}
}
