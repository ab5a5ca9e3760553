package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// PipelineOverride adjusts the retry and timeout budgets of the execution
// plan table. Stage sequences are fixed in code; only budgets are tunable,
// which keeps plan construction a pure function of workflow type. The file
// is read once at process start so a resumed run sees the same budgets as
// the original run.
type PipelineOverride struct {
	MaxRetries   int           `yaml:"maxRetries"`
	StageTimeout time.Duration `yaml:"-"`

	RawStageTimeout string `yaml:"stageTimeout"`
}

// LoadPipelineOverride reads .forge/pipelines.yaml from the specified
// directory. A missing file is not an error: defaults apply.
func LoadPipelineOverride(dir string) (*PipelineOverride, error) {
	path := filepath.Join(dir, ".forge", "pipelines.yaml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &PipelineOverride{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline overrides: %w", err)
	}

	var override PipelineOverride
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline overrides: %w", err)
	}

	if override.RawStageTimeout != "" {
		d, err := time.ParseDuration(override.RawStageTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid stageTimeout %q: %w", override.RawStageTimeout, err)
		}
		override.StageTimeout = d
	}

	return &override, nil
}
