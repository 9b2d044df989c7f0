package cli_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aitools/aitools/internal/cli"
)

func offlineEnv(t *testing.T) {
	t.Helper()
	const dead = "http://127.0.0.1:1"
	for _, k := range []string{
		"AITOOLS_QUAKE_FEED_URL", "AITOOLS_GEOCODE_URL", "AITOOLS_FORECAST_URL",
		"AITOOLS_NEWS_URL", "AITOOLS_WEB_SEARCH_URL", "AITOOLS_QRCODE_URL",
	} {
		t.Setenv(k, dead)
	}
	t.Setenv("AITOOLS_ENABLE_AUDIT_LOGGING", "false")
	t.Setenv("AITOOLS_ENVIRONMENT", "test")
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	offlineEnv(t)
	root := cli.NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestToolsList(t *testing.T) {
	out, _, err := run(t, "tools", "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 11, out)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.True(t, strings.HasPrefix(lines[1], "search-products"))
	assert.True(t, strings.HasPrefix(lines[10], "qrcode"))
}

func TestToolsListJSON(t *testing.T) {
	out, _, err := run(t, "tools", "list", "--json")
	require.NoError(t, err)

	var descs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &descs))
	require.Len(t, descs, 10)
	assert.Equal(t, "calculator", descs[4]["name"])
}

func TestToolsShow(t *testing.T) {
	out, _, err := run(t, "tools", "show", "qrcode")
	require.NoError(t, err)

	var view map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "fail_loud", view["descriptor"].(map[string]any)["policy"])
	assert.Contains(t, view["install"], "/r/qrcode.json")

	_, _, err = run(t, "tools", "show", "nope")
	require.Error(t, err)
}

func TestInvokeCalculator(t *testing.T) {
	out, _, err := run(t, "invoke", "calculator", "--args", `{"a":7,"b":3,"operator":"+"}`)
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, float64(10), res["output"].(map[string]any)["result"])
}

func TestInvokeReportsErrors(t *testing.T) {
	out, _, err := run(t, "invoke", "calculator", "--args", `{"a":1,"b":0,"operator":"/"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "division by zero")
	assert.Contains(t, out, `"kind": "execution"`)

	_, _, err = run(t, "invoke", "calculator", "--args", `not json`)
	require.Error(t, err)
}

func TestInvokeDemoFallback(t *testing.T) {
	out, stderr, err := run(t, "invoke", "news", "--args", `{"topic":"AI"}`, "--demo")
	require.NoError(t, err)
	assert.Contains(t, out, `"fallback": true`)
	assert.Contains(t, stderr, "fallback")

	_, _, err = run(t, "invoke", "news", "--args", `{"topic":"AI"}`)
	require.Error(t, err, "live mode surfaces the upstream failure")
}

func TestDemosJSON(t *testing.T) {
	out, _, err := run(t, "demos", "--json")
	require.NoError(t, err)

	var cards []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &cards))
	require.Len(t, cards, 10)
	assert.Equal(t, "search-products", cards[0]["tool"])
	assert.NotEmpty(t, cards[9]["error"])
}

func TestInvalidModeFlag(t *testing.T) {
	_, _, err := run(t, "--mode", "staging", "tools", "list")
	require.Error(t, err)
}
