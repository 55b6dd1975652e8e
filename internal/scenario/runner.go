// Package scenario executes the diagnostics test scenario against the
// device update service: wait for the device to connect, trigger a log
// collection operation, poll it to a terminal state, and verify the
// per-device outcome.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/duautomation/diagrunner/internal/config"
	"github.com/duautomation/diagrunner/internal/deviceupdate"
	"github.com/duautomation/diagrunner/internal/logger"
	"github.com/duautomation/diagrunner/internal/poll"
	duerrors "github.com/duautomation/diagrunner/pkg/errors"
)

// expectedResultCode is the per-device result code of a successful log upload.
const expectedResultCode = "200"

// Client is the device update surface the runner needs.
type Client interface {
	GetConnectionStatusForDevice(ctx context.Context, deviceID string) (string, error)
	RunDiagnosticsOnDeviceOrModule(ctx context.Context, deviceID, moduleID, operationID, description string) (int, error)
	GetDiagnosticsLogCollectionStatus(ctx context.Context, operationID string) (*deviceupdate.LogCollectionStatus, error)
}

// Runner executes one diagnostics scenario.
type Runner struct {
	client Client
	sc     *config.Scenario
	log    *logger.Logger
}

// NewRunner wires a runner from its collaborators.
func NewRunner(client Client, sc *config.Scenario, log *logger.Logger) *Runner {
	return &Runner{client: client, sc: sc, log: log}
}

// Run executes the scenario's fixed step sequence. The first failed step
// marks the scenario failed and skips the remaining steps; a Result is
// always returned so the report can be written regardless of outcome.
func (r *Runner) Run(ctx context.Context) *Result {
	result := &Result{
		ScenarioName: r.sc.Name,
		StartedAt:    time.Now(),
	}

	var lastStatus *deviceupdate.LogCollectionStatus

	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{StepConnectivity, r.waitForConnection},
		{StepTrigger, r.triggerDiagnostics},
		{StepCollection, func(ctx context.Context) error {
			status, err := r.waitForCollection(ctx)
			lastStatus = status
			return err
		}},
		{StepVerify, func(ctx context.Context) error {
			return r.verify(lastStatus)
		}},
	}

	failed := false
	for _, step := range steps {
		if failed {
			result.Steps = append(result.Steps, StepResult{
				Name:      step.name,
				Status:    StatusSkipped,
				Message:   "skipped: earlier step failed",
				Timestamp: time.Now(),
			})
			continue
		}

		log := r.log.With("step", step.name, "scenario", r.sc.Name)
		log.Info("step started")

		started := time.Now()
		err := step.run(ctx)
		res := StepResult{
			Name:      step.name,
			Duration:  time.Since(started),
			Timestamp: started,
		}

		if err != nil {
			failed = true
			res.Status = StatusFailed
			res.Message = err.Error()
			res.Err = err
			log.Error(err, "step failed", "duration", res.Duration.String())
		} else {
			res.Status = StatusPassed
			res.Message = passMessage(step.name)
			log.Info("step passed", "duration", res.Duration.String())
		}

		result.Steps = append(result.Steps, res)
	}

	result.Duration = time.Since(result.StartedAt)
	return result
}

// waitForConnection polls the device's connection state until it reports
// Connected. Check first, then sleep: a device provisioned by an earlier
// pipeline step is often already connected.
func (r *Runner) waitForConnection(ctx context.Context) error {
	lastState := ""
	attempts := 0

	err := poll.Until(ctx, poll.Policy{
		Attempts: r.sc.Connectivity.Attempts,
		Interval: r.sc.Connectivity.Interval.Std(),
	}, func(ctx context.Context) (bool, error) {
		attempts++
		state, err := r.client.GetConnectionStatusForDevice(ctx, r.sc.DeviceID)
		if err != nil {
			r.log.Debug("connection status fetch failed", "attempt", attempts, "error", err.Error())
			return false, err
		}
		lastState = state
		r.log.Debug("connection status observed", "attempt", attempts, "state", state)
		return state == deviceupdate.ConnectionStateConnected, nil
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, poll.ErrAttemptsExhausted) {
		return duerrors.NewAssertionError(StepConnectivity,
			fmt.Sprintf("expected connection status %q, got %q after %d attempts",
				deviceupdate.ConnectionStateConnected, lastState, attempts))
	}
	return err
}

// triggerDiagnostics starts the log collection operation. Anything but a
// 201 is a hard failure, never retried.
func (r *Runner) triggerDiagnostics(ctx context.Context) error {
	code, err := r.client.RunDiagnosticsOnDeviceOrModule(ctx,
		r.sc.DeviceID, r.sc.ModuleID, r.sc.OperationID, r.sc.Description)
	if err != nil {
		return err
	}
	if code != http.StatusCreated {
		return duerrors.NewAssertionError(StepTrigger,
			fmt.Sprintf("expected status code %d starting log collection, got %d", http.StatusCreated, code))
	}
	return nil
}

// waitForCollection polls the operation status until it reports Succeeded,
// returning the last-seen snapshot either way. Sleep first: the operation
// is never complete immediately after the trigger.
func (r *Runner) waitForCollection(ctx context.Context) (*deviceupdate.LogCollectionStatus, error) {
	var lastStatus *deviceupdate.LogCollectionStatus
	attempts := 0

	err := poll.Until(ctx, poll.Policy{
		Attempts:   r.sc.Collection.Attempts,
		Interval:   r.sc.Collection.Interval.Std(),
		SleepFirst: true,
	}, func(ctx context.Context) (bool, error) {
		attempts++
		status, err := r.client.GetDiagnosticsLogCollectionStatus(ctx, r.sc.OperationID)
		if err != nil {
			r.log.Debug("log collection status fetch failed", "attempt", attempts, "error", err.Error())
			return false, err
		}
		lastStatus = status
		r.log.Debug("log collection status observed", "attempt", attempts, "status", status.Status)
		return status.Status == deviceupdate.OperationSucceeded, nil
	})
	if err == nil {
		return lastStatus, nil
	}
	if errors.Is(err, poll.ErrAttemptsExhausted) {
		observed := "none"
		if lastStatus != nil {
			observed = lastStatus.Status
		}
		return lastStatus, duerrors.NewAssertionError(StepCollection,
			fmt.Sprintf("expected operation status %q within %d attempts, last observed %q",
				deviceupdate.OperationSucceeded, r.sc.Collection.Attempts, observed))
	}
	return lastStatus, err
}

// verify checks the terminal snapshot: overall success, exactly one device
// entry, and that entry succeeded with the expected result code. All failed
// expectations are reported together.
func (r *Runner) verify(status *deviceupdate.LogCollectionStatus) error {
	if status == nil {
		return duerrors.NewAssertionError(StepVerify, "no log collection status was observed")
	}

	var failures []string

	if status.Status != deviceupdate.OperationSucceeded {
		failures = append(failures, fmt.Sprintf("expected operation status %q, got %q",
			deviceupdate.OperationSucceeded, status.Status))
	}

	if len(status.DeviceStatus) != 1 {
		failures = append(failures, fmt.Sprintf("expected exactly 1 device status entry, got %d",
			len(status.DeviceStatus)))
	} else {
		entry := status.DeviceStatus[0]
		if entry.Status != deviceupdate.OperationSucceeded {
			failures = append(failures, fmt.Sprintf("expected device status %q, got %q",
				deviceupdate.OperationSucceeded, entry.Status))
		}
		if entry.ResultCode != expectedResultCode {
			failures = append(failures, fmt.Sprintf("expected device result code %q, got %q",
				expectedResultCode, entry.ResultCode))
		}
	}

	if len(failures) > 0 {
		return duerrors.NewAssertionError(StepVerify, strings.Join(failures, "; "))
	}
	return nil
}

func passMessage(step string) string {
	switch step {
	case StepConnectivity:
		return "device reported Connected"
	case StepTrigger:
		return "log collection operation created"
	case StepCollection:
		return "operation reached Succeeded"
	case StepVerify:
		return "device outcome matched expectations"
	default:
		return "passed"
	}
}
