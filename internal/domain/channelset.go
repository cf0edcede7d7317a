package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ChannelCount is the number of output channels: the eight compass neighbors
// of the reference cell, mapped one-to-one onto downstream audio channels.
const ChannelCount = 8

// ChannelSet is the pipeline's output unit: eight named point time series
// around one reference location, extracted from a single product variable
// over one acquisition window.
type ChannelSet struct {
	ID        string `json:"id"`
	Satellite string `json:"satellite"`
	Product   string `json:"product"`
	Variable  string `json:"variable"`
	Unit      string `json:"unit,omitempty"`

	Target      Geo       `json:"target"`
	Center      GridIndex `json:"center"`
	CenterCoord Geo       `json:"center_coord"`

	Times    []time.Time   `json:"times"`
	Channels []PointSeries `json:"channels"`

	ProcessedAt time.Time `json:"processed_at"`
}

// AssembleChannelSet builds the output record from an extracted series set.
// Exactly ChannelCount series are required — partial channel sets are never
// published. The ID is a deterministic hash of the set's key fields, so
// reprocessing the same window yields the same ID and downstream consumers
// can deduplicate on replay.
func AssembleChannelSet(satellite, product, variable, unit string, target Geo, center GridIndex, centerCoord Geo, times []time.Time, channels []PointSeries) (ChannelSet, error) {
	if len(channels) != ChannelCount {
		return ChannelSet{}, fmt.Errorf("assemble channel set: got %d channels, want %d", len(channels), ChannelCount)
	}
	for _, ch := range channels {
		if len(ch.Values) != len(times) {
			return ChannelSet{}, fmt.Errorf("assemble channel set: %s channel has %d samples for %d timestamps: %w",
				ch.Direction, len(ch.Values), len(times), ErrShapeMismatch)
		}
	}

	var first time.Time
	if len(times) > 0 {
		first = times[0]
	}

	return ChannelSet{
		ID:          generateID(satellite, product, variable, target, first),
		Satellite:   satellite,
		Product:     product,
		Variable:    variable,
		Unit:        unit,
		Target:      target,
		Center:      center,
		CenterCoord: centerCoord,
		Times:       times,
		Channels:    channels,
		ProcessedAt: clock.Now(),
	}, nil
}

// generateID produces a deterministic ID from the channel set's key fields.
func generateID(satellite, product, variable string, target Geo, first time.Time) string {
	input := fmt.Sprintf("%s|%s|%s|%.4f|%.4f|%d", satellite, product, variable, target.Lat, target.Lon, first.Unix())
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if product == "" {
		return short
	}
	return product + "-" + short
}
