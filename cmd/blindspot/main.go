// blindspot: voice navigation core for blind pedestrians.
// Accepts a phone WebSocket connection streaming GPS samples and camera
// frames, speaks turn instructions and obstacle warnings back through
// the phone's TTS, and publishes hazard/status events to a side-channel.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberws "github.com/gofiber/websocket/v2"

	"github.com/benz16107/BlindSpot/internal/config"
	"github.com/benz16107/BlindSpot/internal/log"
	"github.com/benz16107/BlindSpot/pkg/announce"
	"github.com/benz16107/BlindSpot/pkg/directions"
	"github.com/benz16107/BlindSpot/pkg/gateway"
	"github.com/benz16107/BlindSpot/pkg/geo"
	"github.com/benz16107/BlindSpot/pkg/hazard"
	"github.com/benz16107/BlindSpot/pkg/hub"
	"github.com/benz16107/BlindSpot/pkg/nav"
	"github.com/benz16107/BlindSpot/pkg/protocol"
	"github.com/benz16107/BlindSpot/pkg/route"
)

var (
	version = "1.0.0"
	port    = flag.String("port", "", "HTTP server port (overrides PORT)")
)

func main() {
	flag.Parse()

	log.Init(config.LogLevel())

	addr := *port
	if addr == "" {
		addr = config.Port()
	}

	// Hazard detection: YOLO if a model is configured, HOG fallback
	detector := hazard.SelectDetector(config.ObstacleModelPath())
	defer detector.Close()

	// Side-channel hub for caregiver dashboards
	events := hub.New("events")
	go events.Run()
	publisher := hub.NewPublisher(events)

	// Navigation session
	session, err := nav.NewSession(nav.DefaultConfig())
	if err != nil {
		log.Error("create session", "error", err)
		os.Exit(1)
	}

	// Phone gateway and announcement arbiter
	gw := gateway.New()
	announceCfg := announce.DefaultConfig()
	announceCfg.GreetingDelay = 2 * time.Second
	arbiter, err := announce.New(gateway.NewSpeaker(gw), publisher, session.InStartupPhase, announceCfg)
	if err != nil {
		log.Error("create arbiter", "error", err)
		os.Exit(1)
	}
	defer arbiter.Close()

	// Hazard pipeline feeds the arbiter
	pipeline, err := hazard.New(detector, hazard.DefaultConfig(), hazard.Callbacks{
		OnHazard: func(description string, isNew bool) {
			if err := arbiter.AnnounceHazard(description, isNew); err != nil {
				log.Warn("hazard announcement failed", "error", err)
			}
			if err := gw.SendHazard(true, description); err != nil {
				log.Debug("hazard push failed", "error", err)
			}
		},
		OnClear: func() {
			arbiter.AnnounceClear()
			if err := gw.SendHazard(false, ""); err != nil {
				log.Debug("clear push failed", "error", err)
			}
		},
	})
	if err != nil {
		log.Error("create pipeline", "error", err)
		os.Exit(1)
	}

	// Directions client for routes the phone names but doesn't resolve
	var dirClient *directions.Client
	if key := config.MapsAPIKey(); key != "" {
		dirClient, err = directions.New(directions.DefaultConfig().WithAPIKey(key))
		if err != nil {
			log.Error("create directions client", "error", err)
			os.Exit(1)
		}
	}

	var posMu sync.Mutex
	var lastPos *geo.Point

	// Phone message handlers
	gw.OnPosition(func(phoneID string, pos *protocol.PositionData) {
		posMu.Lock()
		lastPos = &geo.Point{Lat: pos.Lat, Lng: pos.Lng}
		posMu.Unlock()

		sample := nav.Sample{Lat: pos.Lat, Lng: pos.Lng, Heading: pos.Heading, At: time.Now()}
		if text, ok := session.OnPositionSample(sample); ok {
			if err := arbiter.Announce(text); err != nil {
				log.Warn("announcement failed", "error", err)
			}
		}
	})

	gw.OnFrame(func(phoneID string, frame *protocol.FrameData) {
		jpeg, err := frame.Decode()
		if err != nil {
			log.Debug("bad frame encoding", "phone", phoneID, "error", err)
			return
		}
		pipeline.Submit(jpeg)
	})

	gw.OnMode(func(phoneID string, mode *protocol.ModeData) {
		if mode.Hazard != nil {
			if *mode.Hazard {
				pipeline.Start()
			} else {
				pipeline.Stop()
			}
			log.Info("hazard mode", "phone", phoneID, "enabled", *mode.Hazard)
		}
		if mode.Navigation != nil && !*mode.Navigation {
			session.Stop()
			log.Info("navigation stopped", "phone", phoneID)
		}
	})

	gw.OnRoute(func(phoneID string, rd *protocol.RouteData) {
		var r *route.Route
		var err error
		if len(rd.Directions) > 0 {
			r, err = route.Parse(rd.Directions)
		} else {
			if dirClient == nil {
				log.Warn("route rejected: no directions payload and no API key", "phone", phoneID)
				return
			}
			posMu.Lock()
			origin := lastPos
			posMu.Unlock()
			if origin == nil {
				log.Warn("route rejected: no position fix yet", "phone", phoneID)
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			r, err = dirClient.Walking(ctx, *origin, rd.Destination)
			cancel()
		}
		if err != nil {
			log.Warn("route rejected", "phone", phoneID, "error", err)
			return
		}
		if err := session.StartRoute(r, rd.Destination); err != nil {
			log.Warn("route rejected", "phone", phoneID, "error", err)
			return
		}
		arbiter.SkipGreeting()
		if err := arbiter.Announce(r.SpokenSummary(rd.Destination, time.Now())); err != nil {
			log.Warn("summary announcement failed", "error", err)
		}
	})

	// Fiber app
	app := fiber.New(fiber.Config{
		AppName:               "blindspot",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))

	gw.RegisterRoutes(app)

	app.Get("/ws/events", fiberws.New(func(c *fiberws.Conn) {
		client := hub.NewClient(events, c)
		client.Run()
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"version": version,
			"phones":  gw.PhoneCount(),
		})
	})

	app.Get("/api/status", func(c *fiber.Ctx) error {
		messages, frames := gw.Stats()
		return c.JSON(fiber.Map{
			"phone_connected":   gw.PhoneCount() > 0,
			"navigation_active": session.Active(),
			"hazard_active":     pipeline.Running(),
			"destination":       session.Destination(),
			"detector":          detector.Name(),
			"messages_received": messages,
			"frames_received":   frames,
			"frames_processed":  pipeline.FramesProcessed(),
			"subscribers":       events.ClientCount(),
		})
	})

	// Greet once the phone has had a moment to connect
	arbiter.ScheduleGreeting()

	go func() {
		log.Info("starting server", "addr", ":"+addr, "detector", detector.Name())
		if err := app.Listen(":" + addr); err != nil {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	pipeline.Stop()
	session.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Warn("shutdown error", "error", err)
	}
	fmt.Println("goodbye")
}
