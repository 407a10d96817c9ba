package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/spotqueue/internal/models"
)

func TestLoadCenters(t *testing.T) {
	doc := `
centers:
  - id: "1"
    name: Hospitali ya Muhimbili
    location: Dar es Salaam
    queue_length: 15
    wait_time_estimate_minutes: 45
    operating_hours: "08:00 - 17:00"
  - id: "2"
    name: TTCL Makao Makuu
    queue_length: 8
`
	cs, err := loadCenters(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, cs, 2)
	assert.Equal(t, int64(15), cs[0].QueueLength)
	assert.Equal(t, "08:00 - 17:00", cs[0].OperatingHours)
	assert.Equal(t, "TTCL Makao Makuu", cs[1].Name)
}

func TestLoadCentersRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"duplicate id", "centers:\n  - id: \"1\"\n  - id: \"1\"\n"},
		{"unknown field", "centers:\n  - id: \"1\"\n    queue: 3\n"},
		{"negative queue", "centers:\n  - id: \"1\"\n    queue_length: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadCenters(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}

	_, err := loadCenters(strings.NewReader("centers:\n  - name: nameless\n"))
	assert.ErrorIs(t, err, models.ErrInvalidCenter)
}

func TestRunFlags(t *testing.T) {
	assert.Error(t, run(nil))
	assert.Error(t, run([]string{"--defaults", "--file", "x.yaml"}))
	assert.NoError(t, run([]string{"--defaults", "--dry-run"}))
}
