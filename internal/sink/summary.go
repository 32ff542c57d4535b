package sink

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Summary describes a finished run.
type Summary struct {
	RunID           string         `yaml:"run_id,omitempty"`
	StartedAt       time.Time      `yaml:"started_at"`
	FinishedAt      time.Time      `yaml:"finished_at"`
	Input           string         `yaml:"input"`
	Places          int            `yaml:"places"`
	Searched        int            `yaml:"searched"`
	Skipped         int            `yaml:"skipped"`
	SkipReasons     map[string]int `yaml:"skip_reasons,omitempty"`
	Strategies      map[string]int `yaml:"strategies,omitempty"`
	Rows            int            `yaml:"rows"`
	Duplicates      int            `yaml:"duplicates"`
	TextSearchCalls int64          `yaml:"text_search_calls"`
	DetailsCalls    int64          `yaml:"details_calls"`
	EstimatedCost   float64        `yaml:"estimated_cost_usd"`
	CapReached      bool           `yaml:"cap_reached"`
	Outputs         []string       `yaml:"outputs,omitempty"`
}

// Duration returns the wall-clock length of the run.
func (s Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// WriteSummary writes s as YAML.
func WriteSummary(path string, s Summary) error {
	if err := ensureParent(path); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return eris.Wrap(err, "sink: encode summary")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "sink: write summary %s", path)
	}
	return nil
}

// ReadSummary loads a summary written by WriteSummary.
func ReadSummary(path string) (Summary, error) {
	var s Summary
	data, err := os.ReadFile(path)
	if err != nil {
		return s, eris.Wrapf(err, "sink: read summary %s", path)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, eris.Wrap(err, "sink: decode summary")
	}
	return s, nil
}
