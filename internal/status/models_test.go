package status_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rialtas/statuspage/internal/status"
)

func TestLevel_SeverityOrder(t *testing.T) {
	levels := status.Levels()
	assert.Equal(t, []status.Level{
		status.LevelStable,
		status.LevelMaintenance,
		status.LevelDegraded,
		status.LevelPartial,
		status.LevelDown,
	}, levels)

	for i := 1; i < len(levels); i++ {
		assert.Greater(t, levels[i].Severity(), levels[i-1].Severity(),
			"%s should be more severe than %s", levels[i], levels[i-1])
	}
}

func TestLevel_Valid(t *testing.T) {
	for _, level := range status.Levels() {
		assert.True(t, level.Valid(), "%s should be valid", level)
	}

	invalid := []status.Level{"", "ok", "outage", "STABLE", "Down"}
	for _, level := range invalid {
		assert.False(t, level.Valid(), "%q should be invalid", level)
	}
}

func TestLevel_Display(t *testing.T) {
	tests := []struct {
		level status.Level
		want  string
	}{
		{status.LevelStable, "Stable"},
		{status.LevelMaintenance, "Maintenance"},
		{status.LevelDegraded, "Degraded Performance"},
		{status.LevelPartial, "Partial Outage"},
		{status.LevelDown, "Major Outage"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.level.Display())
	}
}

func TestWorse(t *testing.T) {
	tests := []struct {
		name string
		a, b status.Level
		want status.Level
	}{
		{"stable vs down", status.LevelStable, status.LevelDown, status.LevelDown},
		{"down vs stable", status.LevelDown, status.LevelStable, status.LevelDown},
		{"maintenance vs stable", status.LevelMaintenance, status.LevelStable, status.LevelMaintenance},
		{"maintenance vs degraded", status.LevelMaintenance, status.LevelDegraded, status.LevelDegraded},
		{"partial vs degraded", status.LevelPartial, status.LevelDegraded, status.LevelPartial},
		{"equal levels", status.LevelDegraded, status.LevelDegraded, status.LevelDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status.Worse(tt.a, tt.b))
		})
	}
}

func TestActor_CreatedBy(t *testing.T) {
	assert.Nil(t, status.Anonymous().CreatedBy())
	assert.Nil(t, status.APIClient().CreatedBy())

	createdBy := status.Operator("alice").CreatedBy()
	if assert.NotNil(t, createdBy) {
		assert.Equal(t, "alice", *createdBy)
	}
}

func TestActor_Kind(t *testing.T) {
	assert.Equal(t, status.ActorAnonymous, status.Anonymous().Kind())
	assert.Equal(t, status.ActorAPIClient, status.APIClient().Kind())
	assert.Equal(t, status.ActorOperator, status.Operator("alice").Kind())
}
