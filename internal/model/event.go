package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ErrMalformed marks an upstream payload that cannot be turned into a
// PositionEvent: missing success marker, missing or unparsable coordinates.
var ErrMalformed = errors.New("malformed upstream response")

const successMessage = "success"

// PositionEvent is a single normalized satellite position reading. It is the
// only shape that crosses the log and the viewer channel, and it is immutable
// once constructed.
type PositionEvent struct {
	Timestamp int64   `json:"timestamp"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	EventTime string  `json:"eventTime"`
}

// observation mirrors the upstream payload:
// {"message":"success","timestamp":1705332000,"iss_position":{"latitude":"48.8566","longitude":"2.3522"}}
type observation struct {
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
	Position  struct {
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
	} `json:"iss_position"`
}

// ParseObservation validates a raw upstream payload and builds a
// PositionEvent from it. observedAt becomes the event's eventTime and is
// deliberately the local normalization time, not the upstream timestamp.
// Any defect in the payload is reported as ErrMalformed; coordinates are
// never silently zeroed.
func ParseObservation(data []byte, observedAt time.Time) (PositionEvent, error) {
	var obs observation
	if err := json.Unmarshal(data, &obs); err != nil {
		return PositionEvent{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if obs.Message != successMessage {
		return PositionEvent{}, fmt.Errorf("%w: message %q", ErrMalformed, obs.Message)
	}

	lat, err := parseCoordinate(obs.Position.Latitude, -90, 90)
	if err != nil {
		return PositionEvent{}, fmt.Errorf("%w: latitude %q: %v", ErrMalformed, obs.Position.Latitude, err)
	}
	lon, err := parseCoordinate(obs.Position.Longitude, -180, 180)
	if err != nil {
		return PositionEvent{}, fmt.Errorf("%w: longitude %q: %v", ErrMalformed, obs.Position.Longitude, err)
	}

	return PositionEvent{
		Timestamp: obs.Timestamp,
		Latitude:  lat,
		Longitude: lon,
		EventTime: observedAt.UTC().Format(time.RFC3339),
	}, nil
}

func parseCoordinate(s string, min, max float64) (float64, error) {
	if s == "" {
		return 0, errors.New("missing")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not finite")
	}
	if v < min || v > max {
		return 0, fmt.Errorf("out of range [%g, %g]", min, max)
	}
	return v, nil
}

// Encode serializes the event to its wire form.
func (e PositionEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEvent parses a wire payload back into a PositionEvent.
func DecodeEvent(data []byte) (PositionEvent, error) {
	var e PositionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return PositionEvent{}, fmt.Errorf("decode event: %w", err)
	}
	return e, nil
}
