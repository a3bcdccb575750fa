package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rialtas/statuspage/internal/api/models"
)

func TestTimestamp_Roundtrip(t *testing.T) {
	original := models.Timestamp(time.Date(2026, 8, 28, 12, 30, 0, 0, time.UTC))

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, `"2026-08-28T12:30:00Z"`, string(data))

	var decoded models.Timestamp
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, original.Time().Equal(decoded.Time()))
}

func TestTimestamp_UnmarshalNull(t *testing.T) {
	var ts models.Timestamp
	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.True(t, ts.Time().IsZero())
}

func TestTimestamp_UnmarshalInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bare number", `0`},
		{"long number", `1724848200`},
		{"boolean", `true`},
		{"empty string", `""`},
		{"not a time", `"yesterday"`},
		{"object", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts models.Timestamp
			assert.Error(t, json.Unmarshal([]byte(tt.data), &ts))
		})
	}
}
