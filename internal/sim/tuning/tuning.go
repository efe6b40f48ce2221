package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	// AboveTolerance is the stacking contact tolerance for the above
	// relation. Zero selects the engine default.
	AboveTolerance float64 `yaml:"above_tolerance"`

	// StepSleepMs paces observer output between plan steps. Presentation
	// only: results are identical at any pacing.
	StepSleepMs int `yaml:"step_sleep_ms"`

	Methods []string `yaml:"methods"`
	Runs    []string `yaml:"runs"`

	GroundTruthFile string `yaml:"ground_truth_file"`
	PlansFile       string `yaml:"plans_file"`
}

func Default() Tuning {
	return Tuning{
		Methods:         []string{"llm", "llm_ic", "llm_ic_pddl", "llm_step", "ChunksGPT4"},
		Runs:            []string{"run1", "run2", "run3"},
		GroundTruthFile: "data/ground_truths/blockstacking.json",
		PlansFile:       "data/planning_results/blockstacking/plans-blockstacking.json",
	}
}

func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}
