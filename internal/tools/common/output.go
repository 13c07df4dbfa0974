package common

import (
	"encoding/json"
	"os"
)

// CIReport is the machine-readable result gatewayctl prints under --ci: one
// JSON document per invocation, consumed by the deploy pipeline's post-step
// checks (migrate status before rollout, audit purge after).
type CIReport struct {
	OK      bool     `json:"ok"`
	Command string   `json:"command"`
	Details []string `json:"details,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func PrintCIReport(command string, details []string, err error) {
	report := CIReport{OK: err == nil, Command: command, Details: details}
	if err != nil {
		report.Error = err.Error()
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)
}
