package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObservation_Success(t *testing.T) {
	payload := []byte(`{"message":"success","timestamp":1705332000,"iss_position":{"latitude":"48.8566","longitude":"2.3522"}}`)
	observedAt := time.Date(2024, 1, 15, 15, 0, 5, 0, time.UTC)

	event, err := ParseObservation(payload, observedAt)
	require.NoError(t, err)

	assert.Equal(t, int64(1705332000), event.Timestamp)
	assert.Equal(t, 48.8566, event.Latitude)
	assert.Equal(t, 2.3522, event.Longitude)
	assert.Equal(t, "2024-01-15T15:00:05Z", event.EventTime)

	// eventTime is generated locally, never copied from upstream
	parsed, err := time.Parse(time.RFC3339, event.EventTime)
	require.NoError(t, err)
	assert.NotEqual(t, event.Timestamp, parsed.Unix())
}

func TestParseObservation_FailureMessage(t *testing.T) {
	_, err := ParseObservation([]byte(`{"message":"failure"}`), time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseObservation_BadPayloads(t *testing.T) {
	cases := map[string]string{
		"not json":             `garbage`,
		"missing position":     `{"message":"success","timestamp":1}`,
		"unparsable latitude":  `{"message":"success","timestamp":1,"iss_position":{"latitude":"north","longitude":"2.0"}}`,
		"unparsable longitude": `{"message":"success","timestamp":1,"iss_position":{"latitude":"2.0","longitude":""}}`,
		"non-finite latitude":  `{"message":"success","timestamp":1,"iss_position":{"latitude":"NaN","longitude":"2.0"}}`,
		"latitude range":       `{"message":"success","timestamp":1,"iss_position":{"latitude":"91.0","longitude":"2.0"}}`,
		"longitude range":      `{"message":"success","timestamp":1,"iss_position":{"latitude":"2.0","longitude":"-180.5"}}`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseObservation([]byte(payload), time.Now())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed, "coordinates must never silently become zero")
		})
	}
}

func TestPositionEvent_RoundTrip(t *testing.T) {
	original := PositionEvent{
		Timestamp: 1705332000,
		Latitude:  48.8566,
		Longitude: 2.3522,
		EventTime: "2024-01-15T15:00:05Z",
	}

	data, err := original.Encode()
	require.NoError(t, err)

	decoded, err := DecodeEvent(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestDecodeEvent_Invalid(t *testing.T) {
	_, err := DecodeEvent([]byte(`{`))
	require.Error(t, err)
}
