// Package config provides environment configuration helpers for BlindSpot commands.
package config

import (
	"os"
)

// Default server configuration.
const (
	DefaultPort     = "8765"
	DefaultLogLevel = "info"
)

// Port returns the listen port from PORT env var or the default.
func Port() string {
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return DefaultPort
}

// LogLevel returns the log level from LOG_LEVEL env var or the default.
func LogLevel() string {
	if l := os.Getenv("LOG_LEVEL"); l != "" {
		return l
	}
	return DefaultLogLevel
}

// ObstacleModelPath returns the path to the YOLOv8n ONNX model from
// OBSTACLE_MODEL_PATH. Empty means no model; the pipeline falls back to
// the HOG person detector.
func ObstacleModelPath() string {
	return os.Getenv("OBSTACLE_MODEL_PATH")
}

// MapsAPIKey returns the directions provider API key from GOOGLE_MAPS_API_KEY.
// Empty disables the directions client; routes can still be supplied over
// the phone channel.
func MapsAPIKey() string {
	return os.Getenv("GOOGLE_MAPS_API_KEY")
}
