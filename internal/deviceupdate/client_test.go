package deviceupdate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duautomation/diagrunner/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.ServiceConfig{
		AccountEndpoint: server.URL,
		InstanceID:      "test-instance",
		APIToken:        "test-token",
		APIVersion:      config.DefaultAPIVersion,
	}

	client, err := New(cfg, WithHTTPClient(server.Client()), WithUserAgent("diagrunner-test"))
	require.NoError(t, err)
	return client
}

func TestGetConnectionStatusForDevice(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/deviceUpdate/test-instance/management/devices/e2e-device", r.URL.Path)
		assert.Equal(t, config.DefaultAPIVersion, r.URL.Query().Get("api-version"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "diagrunner-test", r.Header.Get("User-Agent"))

		json.NewEncoder(w).Encode(Device{DeviceID: "e2e-device", ConnectionState: ConnectionStateConnected})
	})

	state, err := client.GetConnectionStatusForDevice(context.Background(), "e2e-device")
	require.NoError(t, err)
	require.Equal(t, ConnectionStateConnected, state)
}

func TestGetConnectionStatusForDeviceNotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetConnectionStatusForDevice(context.Background(), "missing-device")
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
}

func TestRunDiagnosticsOnDevice(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/deviceUpdate/test-instance/management/deviceDiagnostics/logCollections/op-1", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			DeviceList []struct {
				DeviceID string `json:"deviceId"`
				ModuleID string `json:"moduleId"`
			} `json:"deviceList"`
			Description string `json:"description"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body.DeviceList, 1)
		assert.Equal(t, "e2e-device", body.DeviceList[0].DeviceID)
		assert.Empty(t, body.DeviceList[0].ModuleID)
		assert.Equal(t, "nightly run", body.Description)

		w.WriteHeader(http.StatusCreated)
	})

	code, err := client.RunDiagnosticsOnDeviceOrModule(context.Background(), "e2e-device", "", "op-1", "nightly run")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, code)
}

func TestRunDiagnosticsOnModuleIncludesModuleID(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body logCollectionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.DeviceList, 1)
		assert.Equal(t, "hostupdate", body.DeviceList[0].ModuleID)

		w.WriteHeader(http.StatusCreated)
	})

	code, err := client.RunDiagnosticsOnDeviceOrModule(context.Background(), "e2e-device", "hostupdate", "op-2", "")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, code)
}

func TestRunDiagnosticsReturnsRejectionCode(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	code, err := client.RunDiagnosticsOnDeviceOrModule(context.Background(), "e2e-device", "", "op-3", "")
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, code)
}

func TestGetDiagnosticsLogCollectionStatus(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/deviceUpdate/test-instance/management/deviceDiagnostics/logCollections/op-1/detailedStatus", r.URL.Path)

		json.NewEncoder(w).Encode(LogCollectionStatus{
			OperationID: "op-1",
			Status:      OperationSucceeded,
			DeviceStatus: []DeviceStatus{
				{DeviceID: "e2e-device", Status: OperationSucceeded, ResultCode: "200", LogLocation: "https://logs.example/op-1"},
			},
		})
	})

	status, err := client.GetDiagnosticsLogCollectionStatus(context.Background(), "op-1")
	require.NoError(t, err)
	require.Equal(t, OperationSucceeded, status.Status)
	require.Len(t, status.DeviceStatus, 1)
	require.Equal(t, "200", status.DeviceStatus[0].ResultCode)
	require.Equal(t, "https://logs.example/op-1", status.DeviceStatus[0].LogLocation)
}

func TestClientHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetConnectionStatusForDevice(ctx, "e2e-device")
	require.Error(t, err)
}
