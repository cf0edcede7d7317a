package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChannels(t *testing.T, samples int) ([]PointSeries, []time.Time) {
	t.Helper()
	times := make([]time.Time, samples)
	base := time.Date(2026, 8, 14, 12, 0, 0, 0, time.UTC)
	for i := range times {
		times[i] = base.Add(time.Duration(i) * 5 * time.Minute)
	}

	dirs := []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
	channels := make([]PointSeries, len(dirs))
	for i, d := range dirs {
		channels[i] = PointSeries{Direction: d, Values: make([]float64, samples)}
	}
	return channels, times
}

func TestAssembleChannelSet(t *testing.T) {
	fixed := time.Date(2026, 8, 14, 18, 30, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	defer SetClock(nil)

	channels, times := testChannels(t, 3)
	target := Geo{Lat: 29.76, Lon: -95.37}

	set, err := AssembleChannelSet("goes19", "ABI-L2-TPWC", "TPW", "mm",
		target, GridIndex{Row: 2, Col: 2}, Geo{Lat: 29.75, Lon: -95.36}, times, channels)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(set.ID, "ABI-L2-TPWC-"))
	assert.Equal(t, target, set.Target)
	assert.Len(t, set.Channels, ChannelCount)
	assert.Equal(t, fixed, set.ProcessedAt)
}

func TestAssembleChannelSetDeterministicID(t *testing.T) {
	channels, times := testChannels(t, 2)

	set1, err := AssembleChannelSet("goes19", "ABI-L2-TPWC", "TPW", "mm",
		Geo{Lat: 1, Lon: 2}, GridIndex{}, Geo{}, times, channels)
	require.NoError(t, err)
	set2, err := AssembleChannelSet("goes19", "ABI-L2-TPWC", "TPW", "mm",
		Geo{Lat: 1, Lon: 2}, GridIndex{}, Geo{}, times, channels)
	require.NoError(t, err)

	assert.Equal(t, set1.ID, set2.ID)

	set3, err := AssembleChannelSet("goes19", "ABI-L2-TPWC", "TPW", "mm",
		Geo{Lat: 1, Lon: 3}, GridIndex{}, Geo{}, times, channels)
	require.NoError(t, err)
	assert.NotEqual(t, set1.ID, set3.ID)
}

func TestAssembleChannelSetRequiresEightChannels(t *testing.T) {
	channels, times := testChannels(t, 2)

	_, err := AssembleChannelSet("goes19", "ABI-L2-TPWC", "TPW", "mm",
		Geo{}, GridIndex{}, Geo{}, times, channels[:7])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "got 7 channels")
}

func TestAssembleChannelSetRejectsLengthMismatch(t *testing.T) {
	channels, times := testChannels(t, 3)
	channels[4].Values = channels[4].Values[:2]

	_, err := AssembleChannelSet("goes19", "ABI-L2-TPWC", "TPW", "mm",
		Geo{}, GridIndex{}, Geo{}, times, channels)
	require.ErrorIs(t, err, ErrShapeMismatch)
	assert.Contains(t, err.Error(), "S channel")
}
