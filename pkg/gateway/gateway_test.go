package gateway

import (
	"encoding/json"
	"testing"

	"github.com/benz16107/BlindSpot/pkg/protocol"
)

func mustBytes(t *testing.T, msg *protocol.Message, err error) []byte {
	t.Helper()
	if err != nil {
		t.Fatalf("build message: %v", err)
	}
	data, err := msg.Bytes()
	if err != nil {
		t.Fatalf("marshal message: %v", err)
	}
	return data
}

func TestHandleMessageDispatchesPosition(t *testing.T) {
	gw := New()

	var gotPhone string
	var gotPos *protocol.PositionData
	gw.OnPosition(func(phoneID string, pos *protocol.PositionData) {
		gotPhone = phoneID
		gotPos = pos
	})

	heading := 270.0
	msg, err := protocol.NewPositionMessage(52.52, 13.405, &heading)
	data := mustBytes(t, msg, err)
	gw.handleMessage("phone-1", data)

	if gotPhone != "phone-1" {
		t.Fatalf("phone = %q, want phone-1", gotPhone)
	}
	if gotPos == nil || gotPos.Lat != 52.52 || gotPos.Lng != 13.405 {
		t.Fatalf("position = %+v", gotPos)
	}
	if gotPos.Heading == nil || *gotPos.Heading != 270.0 {
		t.Fatalf("heading = %v, want 270", gotPos.Heading)
	}
}

func TestHandleMessageCountsFrames(t *testing.T) {
	gw := New()

	var frames int
	gw.OnFrame(func(phoneID string, frame *protocol.FrameData) {
		frames++
	})

	msg, err := protocol.NewFrameMessage(640, 480, []byte("jpeg-bytes"), 1)
	data := mustBytes(t, msg, err)
	gw.handleMessage("p", data)
	gw.handleMessage("p", data)

	if frames != 2 {
		t.Fatalf("frame callbacks = %d, want 2", frames)
	}
	_, frameCount := gw.Stats()
	if frameCount != 2 {
		t.Fatalf("frame counter = %d, want 2", frameCount)
	}
}

func TestHandleMessageModeAndRoute(t *testing.T) {
	gw := New()

	var nav *bool
	gw.OnMode(func(phoneID string, mode *protocol.ModeData) {
		nav = mode.Navigation
	})
	var dest string
	gw.OnRoute(func(phoneID string, rd *protocol.RouteData) {
		dest = rd.Destination
	})

	on := true
	modeMsg, err := protocol.NewModeMessage(&on, nil)
	gw.handleMessage("p", mustBytes(t, modeMsg, err))
	routeMsg, err := protocol.NewRouteMessage("Central Station", json.RawMessage(`{"routes":[]}`))
	gw.handleMessage("p", mustBytes(t, routeMsg, err))

	if nav == nil || !*nav {
		t.Fatalf("navigation toggle = %v, want true", nav)
	}
	if dest != "Central Station" {
		t.Fatalf("destination = %q", dest)
	}
}

func TestHandleMessageIgnoresMalformed(t *testing.T) {
	gw := New()
	gw.OnPosition(func(string, *protocol.PositionData) {
		t.Fatal("callback fired for malformed input")
	})

	gw.handleMessage("p", []byte("not json"))
	gw.handleMessage("p", []byte(`{"type":"position","data":"garbage"}`))
}

func TestSpeakerWithNoPhones(t *testing.T) {
	sp := NewSpeaker(New())
	if err := sp.Speak("hello"); err != nil {
		t.Fatalf("Speak with no phones: %v", err)
	}
	if err := sp.Interrupt(); err != nil {
		t.Fatalf("Interrupt with no phones: %v", err)
	}
}
