package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plansPage = `<html><body>
	<section class="plans">
		<div class="plan-card">
			<h3>Premium</h3>
			<p>$14.99/mo after a 7-day free trial. Auto-renews.</p>
			<button>Start free trial</button>
		</div>
	</section>
</body></html>`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestScanListsControls(t *testing.T) {
	out, err := run(t, plansPage, "scan", "--url", "https://www.netflix.com/plans")
	require.NoError(t, err)

	var res scanResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Controls, 1)
	assert.Equal(t, "start free trial", res.Controls[0].Label)
}

func TestScanDetectsAtPath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plans.html")
	require.NoError(t, os.WriteFile(file, []byte(plansPage), 0o644))

	out, err := run(t, "", "scan", "--file", file, "--url", "https://www.netflix.com/plans")
	require.NoError(t, err)
	var res scanResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Controls, 1)

	out, err = run(t, "", "scan", "--file", file, "--url", "https://www.netflix.com/plans", "--path", res.Controls[0].Path)
	require.NoError(t, err)

	var det detectResult
	require.NoError(t, json.Unmarshal([]byte(out), &det))
	assert.Equal(t, "Netflix — Premium", det.ServiceName)
	assert.Equal(t, 65, det.RiskScore)
	assert.Equal(t, "Moderate Risk", det.Level)
}

func TestScanErrors(t *testing.T) {
	_, err := run(t, plansPage, "scan")
	assert.Error(t, err, "url is required")

	_, err = run(t, plansPage, "scan", "--url", "https://x.io", "--path", "9/9")
	assert.Error(t, err)

	_, err = run(t, "", "scan", "--url", "https://x.io", "--file", filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "subguard ")

	out, err = run(t, "", "version", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"version"`)
}
