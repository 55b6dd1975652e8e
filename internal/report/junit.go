// Package report renders scenario results as JUnit-compatible XML, the
// format CI systems ingest as test results.
package report

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/duautomation/diagrunner/internal/scenario"
)

// reportSuffix completes the report file name after the scenario prefix.
const reportSuffix = "-diagnostic-test.xml"

// TestSuites is the JUnit document root.
type TestSuites struct {
	XMLName  xml.Name    `xml:"testsuites"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	Time     string      `xml:"time,attr"`
	Suites   []TestSuite `xml:"testsuite"`
}

// TestSuite groups the test cases of one scenario run.
type TestSuite struct {
	Name      string     `xml:"name,attr"`
	Tests     int        `xml:"tests,attr"`
	Failures  int        `xml:"failures,attr"`
	Skipped   int        `xml:"skipped,attr"`
	Errors    int        `xml:"errors,attr"`
	Time      string     `xml:"time,attr"`
	Timestamp string     `xml:"timestamp,attr"`
	Cases     []TestCase `xml:"testcase"`
}

// TestCase records one scenario step.
type TestCase struct {
	Name      string   `xml:"name,attr"`
	Classname string   `xml:"classname,attr"`
	Time      string   `xml:"time,attr"`
	Failure   *Failure `xml:"failure,omitempty"`
	Skipped   *Skipped `xml:"skipped,omitempty"`
}

// Failure carries the assertion message of a failed step.
type Failure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Content string `xml:",chardata"`
}

// Skipped marks a step that never ran.
type Skipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// FromResult converts a scenario result into a JUnit document, one test
// case per step.
func FromResult(result *scenario.Result) *TestSuites {
	suite := TestSuite{
		Name:      result.ScenarioName,
		Tests:     len(result.Steps),
		Time:      seconds(result.Duration),
		Timestamp: result.StartedAt.UTC().Format(time.RFC3339),
	}

	for _, step := range result.Steps {
		tc := TestCase{
			Name:      step.Name,
			Classname: result.ScenarioName,
			Time:      seconds(step.Duration),
		}

		switch step.Status {
		case scenario.StatusFailed:
			suite.Failures++
			tc.Failure = &Failure{
				Message: step.Message,
				Type:    "AssertionError",
				Content: step.Message,
			}
		case scenario.StatusSkipped:
			suite.Skipped++
			tc.Skipped = &Skipped{Message: step.Message}
		}

		suite.Cases = append(suite.Cases, tc)
	}

	return &TestSuites{
		Tests:    suite.Tests,
		Failures: suite.Failures,
		Time:     suite.Time,
		Suites:   []TestSuite{suite},
	}
}

// Write serializes the document to <dir>/<prefix>-diagnostic-test.xml,
// creating the directory if needed, and returns the written path.
func Write(dir, prefix string, doc *TestSuites) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	path := filepath.Join(dir, prefix+reportSuffix)
	payload := append([]byte(xml.Header), data...)
	payload = append(payload, '\n')

	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	return path, nil
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
