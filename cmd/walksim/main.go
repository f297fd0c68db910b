// walksim: replays a walk along a canned route against a running
// blindspot server, printing everything the server would have spoken.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/benz16107/BlindSpot/pkg/geo"
	"github.com/benz16107/BlindSpot/pkg/protocol"
)

var (
	server   = flag.String("server", "ws://localhost:8765/ws/phone", "Phone endpoint URL")
	speed    = flag.Float64("speed", 1.4, "Walking speed in m/s")
	interval = flag.Duration("interval", time.Second, "Sample interval")
)

// cannedDirections mimics a Google Directions response for a short
// two-turn walk near Alexanderplatz, Berlin.
const cannedDirections = `{
  "status": "OK",
  "routes": [{
    "summary": "Karl-Liebknecht-Str",
    "legs": [{
      "distance": {"text": "0.6 km", "value": 600},
      "duration": {"text": "8 mins", "value": 480},
      "steps": [
        {
          "html_instructions": "Head <b>north</b> on <b>Karl-Liebknecht-Str</b>",
          "distance": {"text": "0.3 km", "value": 300},
          "duration": {"text": "4 mins", "value": 240},
          "start_location": {"lat": 52.5219, "lng": 13.4132},
          "end_location": {"lat": 52.5246, "lng": 13.4132}
        },
        {
          "html_instructions": "Turn <b>right</b> onto <b>Mollstraße</b>",
          "distance": {"text": "0.2 km", "value": 200},
          "duration": {"text": "3 mins", "value": 180},
          "start_location": {"lat": 52.5246, "lng": 13.4132},
          "end_location": {"lat": 52.5246, "lng": 13.4162}
        },
        {
          "html_instructions": "Turn <b>left</b> toward <b>Central Station</b>",
          "distance": {"text": "0.1 km", "value": 100},
          "duration": {"text": "1 min", "value": 60},
          "start_location": {"lat": 52.5246, "lng": 13.4162},
          "end_location": {"lat": 52.5255, "lng": 13.4162}
        }
      ]
    }]
  }]
}`

func main() {
	flag.Parse()

	fmt.Println("walksim - route walk simulator")
	fmt.Printf("Connecting to %s\n", *server)

	ws, _, err := websocket.DefaultDialer.Dial(*server, nil)
	if err != nil {
		fmt.Printf("Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer ws.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Print everything the server sends
	go func() {
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			msg, err := protocol.ParseMessage(data)
			if err != nil {
				continue
			}
			switch msg.Type {
			case protocol.TypeSpeak:
				if sd, err := msg.GetSpeakData(); err == nil {
					fmt.Printf("  SPEAK: %s\n", sd.Text)
				}
			case protocol.TypeInterrupt:
				fmt.Println("  [interrupt]")
			case protocol.TypeHazard:
				if hd, err := msg.GetHazardData(); err == nil {
					fmt.Printf("  HAZARD: detected=%v %s\n", hd.Detected, hd.Description)
				}
			}
		}
	}()

	waypoints := buildWaypoints()
	start := waypoints[0]

	// First position fix, then the route
	if err := sendPosition(ws, start, nil); err != nil {
		fmt.Printf("Send failed: %v\n", err)
		os.Exit(1)
	}

	routeMsg, err := protocol.NewRouteMessage("Central Station", json.RawMessage(cannedDirections))
	if err != nil {
		fmt.Printf("Build route: %v\n", err)
		os.Exit(1)
	}
	data, _ := routeMsg.Bytes()
	if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
		fmt.Printf("Send route: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Route started, walking...")

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for i := 1; i < len(waypoints); {
		select {
		case <-sigChan:
			fmt.Println("\nInterrupted")
			return
		case <-ticker.C:
			p := waypoints[i]
			heading := geo.Bearing(waypoints[i-1], p)
			if err := sendPosition(ws, p, &heading); err != nil {
				fmt.Printf("Send failed: %v\n", err)
				return
			}
			i++
		}
	}

	// Linger so the arrival announcement arrives before we hang up
	time.Sleep(2 * time.Second)
	fmt.Println("Walk complete")
}

// buildWaypoints interpolates the canned route into per-tick positions.
func buildWaypoints() []geo.Point {
	legs := [][2]geo.Point{
		{{Lat: 52.5219, Lng: 13.4132}, {Lat: 52.5246, Lng: 13.4132}},
		{{Lat: 52.5246, Lng: 13.4132}, {Lat: 52.5246, Lng: 13.4162}},
		{{Lat: 52.5246, Lng: 13.4162}, {Lat: 52.5255, Lng: 13.4162}},
	}

	stride := *speed * interval.Seconds()
	var points []geo.Point
	for _, leg := range legs {
		from, to := leg[0], leg[1]
		dist := geo.Haversine(from, to)
		steps := int(dist / stride)
		if steps < 1 {
			steps = 1
		}
		for s := 0; s < steps; s++ {
			f := float64(s) / float64(steps)
			points = append(points, geo.Point{
				Lat: from.Lat + (to.Lat-from.Lat)*f,
				Lng: from.Lng + (to.Lng-from.Lng)*f,
			})
		}
	}
	points = append(points, legs[len(legs)-1][1])
	return points
}

func sendPosition(ws *websocket.Conn, p geo.Point, heading *float64) error {
	msg, err := protocol.NewPositionMessage(p.Lat, p.Lng, heading)
	if err != nil {
		return err
	}
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	return ws.WriteMessage(websocket.TextMessage, data)
}
