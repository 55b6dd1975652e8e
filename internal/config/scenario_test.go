package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	duerrors "github.com/duautomation/diagrunner/pkg/errors"
)

func writeScenarioFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseScenarioAppliesDefaults(t *testing.T) {
	t.Parallel()

	path := writeScenarioFile(t, `
name: ubuntu-22.04-amd64 diagnostics
device_id: e2e-diag-device
operation_id: e2e-diag-operation-1
result_file_prefix: ubuntu-22.04-amd64
`)

	sc, err := ParseScenario(path)
	require.NoError(t, err)
	require.Equal(t, "e2e-diag-device", sc.DeviceID)
	require.Equal(t, "", sc.ModuleID)
	require.Equal(t, DefaultConnectAttempts, sc.Connectivity.Attempts)
	require.Equal(t, DefaultConnectInterval, sc.Connectivity.Interval.Std())
	require.Equal(t, DefaultStatusAttempts, sc.Collection.Attempts)
	require.Equal(t, DefaultStatusInterval, sc.Collection.Interval.Std())
}

func TestParseScenarioHonorsOverrides(t *testing.T) {
	t.Parallel()

	path := writeScenarioFile(t, `
name: fast diagnostics
device_id: e2e-diag-device
module_id: hostupdate
operation_id: e2e-diag-operation-2
description: triggered by CI
result_file_prefix: fast
connectivity:
  attempts: 3
  interval: 1s
collection:
  attempts: 30
  interval: 250ms
`)

	sc, err := ParseScenario(path)
	require.NoError(t, err)
	require.Equal(t, "hostupdate", sc.ModuleID)
	require.Equal(t, 3, sc.Connectivity.Attempts)
	require.Equal(t, time.Second, sc.Connectivity.Interval.Std())
	require.Equal(t, 30, sc.Collection.Attempts)
	require.Equal(t, 250*time.Millisecond, sc.Collection.Interval.Std())
}

func TestParseScenarioMissingDeviceID(t *testing.T) {
	t.Parallel()

	path := writeScenarioFile(t, `
name: broken
operation_id: op-1
result_file_prefix: broken
`)

	_, err := ParseScenario(path)

	var validationErr *duerrors.ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Field, "deviceid")
}

func TestParseScenarioRejectsBadPrefix(t *testing.T) {
	t.Parallel()

	path := writeScenarioFile(t, `
name: broken
device_id: d-1
operation_id: op-1
result_file_prefix: "../escape"
`)

	_, err := ParseScenario(path)

	var validationErr *duerrors.ValidationError
	require.True(t, errors.As(err, &validationErr))
}

func TestParseScenarioRejectsBadInterval(t *testing.T) {
	t.Parallel()

	path := writeScenarioFile(t, `
name: broken
device_id: d-1
operation_id: op-1
result_file_prefix: broken
collection:
  interval: soon
`)

	_, err := ParseScenario(path)

	var parseErr *duerrors.ParseError
	require.True(t, errors.As(err, &parseErr))
}

func TestParseScenarioMissingFile(t *testing.T) {
	t.Parallel()

	_, err := ParseScenario(filepath.Join(t.TempDir(), "absent.yaml"))

	var parseErr *duerrors.ParseError
	require.True(t, errors.As(err, &parseErr))
}
