package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const parisRequest = `{
	"originOffset": -5,
	"destOffset": 1,
	"originSleepStart": "23:00",
	"originSleepEnd": "07:00",
	"destSleepStart": "23:00",
	"destSleepEnd": "07:00",
	"travelStart": "2025-06-01T18:30",
	"travelEnd": "2025-06-02T08:00",
	"useMelatonin": true,
	"useLightDark": true,
	"preDays": 2
}`

func runRoot(t *testing.T, stdin string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRunCalc(t *testing.T) {
	out, err := runRoot(t, parisRequest)
	require.NoError(t, err)

	var resp struct {
		Events []map[string]any `json:"events"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotEmpty(t, resp.Events)
	assert.Equal(t, "cbtmin", resp.Events[0]["event"])
	assert.Equal(t, "advance", resp.Events[0]["phase_direction"])
}

func TestRunCalc_ErrorDocument(t *testing.T) {
	out, err := runRoot(t, `{"preDays": -1`)
	require.Error(t, err)

	var failure struct {
		Error     string `json:"error"`
		Traceback string `json:"traceback"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &failure))
	assert.NotEmpty(t, failure.Error)
	assert.Empty(t, failure.Traceback)
}

func TestRunCalc_DebugTraceback(t *testing.T) {
	t.Setenv("CALC_DEBUG", "1")

	out, err := runRoot(t, `{"originSleepStart": "nonsense"}`)
	require.Error(t, err)

	var failure struct {
		Error     string `json:"error"`
		Traceback string `json:"traceback"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &failure))
	assert.NotEmpty(t, failure.Error)
	assert.NotEmpty(t, failure.Traceback)
}
