// Package deviceupdate is a thin client for the device update service's
// management plane: just the three operations the diagnostics scenario needs.
package deviceupdate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/duautomation/diagrunner/internal/config"
	duerrors "github.com/duautomation/diagrunner/pkg/errors"
)

const defaultUserAgent = "diagrunner"

// Client calls the device update service. Safe for sequential use; the
// scenario runner never calls it concurrently.
type Client struct {
	endpoint   string
	instanceID string
	apiVersion string
	token      string
	userAgent  string
	httpClient *http.Client
}

// New creates a Client from validated service configuration.
func New(cfg *config.ServiceConfig, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("deviceupdate: service configuration is nil")
	}

	cc := clientConfig{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(&cc)
	}

	return &Client{
		endpoint:   strings.TrimRight(cfg.AccountEndpoint, "/"),
		instanceID: cfg.InstanceID,
		apiVersion: cfg.APIVersion,
		token:      cfg.APIToken,
		userAgent:  cc.userAgent,
		httpClient: cc.httpClient,
	}, nil
}

// GetConnectionStatusForDevice fetches the device's current connection state.
func (c *Client) GetConnectionStatusForDevice(ctx context.Context, deviceID string) (string, error) {
	endpoint := c.managementURL("devices/" + url.PathEscape(deviceID))

	resp, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", duerrors.NewRequestError("GetConnectionStatusForDevice", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", duerrors.NewRequestError("GetConnectionStatusForDevice", resp.StatusCode, nil)
	}

	var device Device
	if err := json.NewDecoder(resp.Body).Decode(&device); err != nil {
		return "", duerrors.NewRequestError("GetConnectionStatusForDevice", 0, err)
	}

	return device.ConnectionState, nil
}

// RunDiagnosticsOnDeviceOrModule starts a diagnostics log collection
// operation targeting the device, or the module on it when moduleID is set.
// The service's HTTP status code is returned as-is so callers can assert on
// it; only transport and encoding failures surface as errors.
func (c *Client) RunDiagnosticsOnDeviceOrModule(ctx context.Context, deviceID, moduleID, operationID, description string) (int, error) {
	body := logCollectionRequest{
		DeviceList:  []deviceTarget{{DeviceID: deviceID, ModuleID: moduleID}},
		Description: description,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return 0, duerrors.NewRequestError("RunDiagnosticsOnDeviceOrModule", 0, err)
	}

	endpoint := c.managementURL("deviceDiagnostics/logCollections/" + url.PathEscape(operationID))

	resp, err := c.do(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, duerrors.NewRequestError("RunDiagnosticsOnDeviceOrModule", 0, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

// GetDiagnosticsLogCollectionStatus fetches the detailed status of a log
// collection operation, including per-device outcomes.
func (c *Client) GetDiagnosticsLogCollectionStatus(ctx context.Context, operationID string) (*LogCollectionStatus, error) {
	endpoint := c.managementURL("deviceDiagnostics/logCollections/" + url.PathEscape(operationID) + "/detailedStatus")

	resp, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, duerrors.NewRequestError("GetDiagnosticsLogCollectionStatus", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, duerrors.NewRequestError("GetDiagnosticsLogCollectionStatus", resp.StatusCode, nil)
	}

	var status LogCollectionStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, duerrors.NewRequestError("GetDiagnosticsLogCollectionStatus", 0, err)
	}

	return &status, nil
}

func (c *Client) managementURL(suffix string) string {
	return fmt.Sprintf("%s/deviceUpdate/%s/management/%s?api-version=%s",
		c.endpoint, url.PathEscape(c.instanceID), suffix, url.QueryEscape(c.apiVersion))
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}
