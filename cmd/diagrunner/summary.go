package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/duautomation/diagrunner/internal/scenario"
)

var (
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	skipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func printSummary(w io.Writer, result *scenario.Result, reportPath string, styled bool) {
	render := func(style lipgloss.Style, s string) string {
		if !styled {
			return s
		}
		return style.Render(s)
	}

	fmt.Fprintf(w, "\n%s\n", render(headerStyle, "Scenario: "+result.ScenarioName))
	fmt.Fprintln(w, strings.Repeat("-", 72))

	for _, step := range result.Steps {
		var status string
		switch step.Status {
		case scenario.StatusPassed:
			status = render(passStyle, "PASS")
		case scenario.StatusFailed:
			status = render(failStyle, "FAIL")
		case scenario.StatusSkipped:
			status = render(skipStyle, "SKIP")
		}

		fmt.Fprintf(w, "%-14s %s  %-8s %s\n",
			step.Name,
			status,
			fmt.Sprintf("%.2fs", step.Duration.Seconds()),
			render(messageStyle, step.Message),
		)
	}

	fmt.Fprintln(w, strings.Repeat("-", 72))

	passed, failed, skipped := result.Counts()
	fmt.Fprintf(w, "passed: %d  failed: %d  skipped: %d  duration: %s\n",
		passed, failed, skipped, result.Duration)
	fmt.Fprintf(w, "report: %s\n", reportPath)

	if result.Passed() {
		fmt.Fprintf(w, "\n%s\n", render(passStyle, "Scenario passed"))
	} else {
		fmt.Fprintf(w, "\n%s\n", render(failStyle, "Scenario failed"))
	}
}

func printJSONSummary(w io.Writer, result *scenario.Result, reportPath string) {
	type jsonStep struct {
		Name     string  `json:"name"`
		Status   string  `json:"status"`
		Message  string  `json:"message,omitempty"`
		Duration float64 `json:"duration_seconds"`
	}

	type jsonSummary struct {
		Scenario string     `json:"scenario"`
		Passed   bool       `json:"passed"`
		Duration float64    `json:"duration_seconds"`
		Report   string     `json:"report"`
		Steps    []jsonStep `json:"steps"`
	}

	out := jsonSummary{
		Scenario: result.ScenarioName,
		Passed:   result.Passed(),
		Duration: result.Duration.Seconds(),
		Report:   reportPath,
		Steps:    make([]jsonStep, len(result.Steps)),
	}
	for i, step := range result.Steps {
		out.Steps[i] = jsonStep{
			Name:     step.Name,
			Status:   string(step.Status),
			Message:  step.Message,
			Duration: step.Duration.Seconds(),
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.Encode(out)
}
