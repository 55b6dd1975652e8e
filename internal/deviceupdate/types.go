package deviceupdate

// Connection states reported by the device management endpoint.
const (
	ConnectionStateConnected    = "Connected"
	ConnectionStateDisconnected = "Disconnected"
)

// Terminal and in-flight states of a log collection operation.
const (
	OperationNotStarted = "NotStarted"
	OperationRunning    = "Running"
	OperationSucceeded  = "Succeeded"
	OperationFailed     = "Failed"
)

// Device is the subset of the management device record the runner reads.
type Device struct {
	DeviceID        string `json:"deviceId"`
	ModuleID        string `json:"moduleId,omitempty"`
	ConnectionState string `json:"connectionState"`
}

// LogCollectionStatus is a snapshot of a diagnostics log collection
// operation: the background operation's own status plus one entry per
// targeted device describing that device's upload outcome.
type LogCollectionStatus struct {
	OperationID  string         `json:"operationId"`
	Status       string         `json:"status"`
	CreatedTime  string         `json:"createdDateTime,omitempty"`
	LastAction   string         `json:"lastActionDateTime,omitempty"`
	DeviceStatus []DeviceStatus `json:"deviceStatus"`
}

// DeviceStatus is the per-device outcome within a log collection operation.
type DeviceStatus struct {
	DeviceID           string `json:"deviceId"`
	ModuleID           string `json:"moduleId,omitempty"`
	Status             string `json:"status"`
	ResultCode         string `json:"resultCode"`
	ExtendedResultCode string `json:"extendedResultCode,omitempty"`
	LogLocation        string `json:"logLocation,omitempty"`
}

// logCollectionRequest is the body of the trigger call.
type logCollectionRequest struct {
	DeviceList  []deviceTarget `json:"deviceList"`
	Description string         `json:"description,omitempty"`
}

type deviceTarget struct {
	DeviceID string `json:"deviceId"`
	ModuleID string `json:"moduleId,omitempty"`
}
