package client

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestPrintRuns(t *testing.T) {
	resp, err := structpb.NewStruct(map[string]interface{}{
		"runs": []interface{}{
			map[string]interface{}{
				"id":              "run_1",
				"result":          "completed",
				"playerName":      "Ayu",
				"stage":           "keep",
				"level":           4,
				"enemiesDefeated": 12,
				"playTime":        301.5,
				"finishedAt":      "2026-03-01T12:30:00Z",
			},
		},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	printRuns(&buf, resp)

	out := buf.String()
	assert.Contains(t, out, "RESULT")
	assert.Contains(t, out, "run_1")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "301.5s")
	assert.Contains(t, out, "2026-03-01T12:30:00Z")
}

func TestPrintRunsEmpty(t *testing.T) {
	var buf bytes.Buffer
	printRuns(&buf, &structpb.Struct{})
	assert.Equal(t, "No runs recorded yet\n", buf.String())
}

func TestPrintSession(t *testing.T) {
	s, err := structpb.NewStruct(map[string]interface{}{
		"id":          "s_1",
		"state":       "PLAYING",
		"tick":        120,
		"playerName":  "Ayu",
		"locale":      "ja-JP",
		"subscribers": 2,
		"createdAt":   "2026-03-01T12:00:00Z",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	printSession(&buf, s)

	out := buf.String()
	assert.Contains(t, out, "s_1")
	assert.Contains(t, out, "PLAYING")
	assert.Contains(t, out, "tick 120")
	assert.Contains(t, out, `"Ayu"`)
	assert.Contains(t, out, "watchers 2")
}
