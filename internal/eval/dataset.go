package eval

import (
	"encoding/json"
	"fmt"
	"os"

	"blockstack.ai/internal/protocol"
	"blockstack.ai/internal/sim/scene"
)

// Domain is one experiment: its description, goal text and the parsed initial
// scene. The scene here is the pristine configuration; every execution runs
// against a clone of it.
type Domain struct {
	Name   string
	Domain string
	Goal   string
	Scene  *scene.Scene
}

// Dataset holds the ground truths and the generated plans for one experiment
// family.
type Dataset struct {
	Domains map[string]Domain
	Plans   protocol.PlansFile
}

// LoadDataset reads and validates the ground-truth and plans files. Scene
// parsing happens here so malformed geometry is rejected before any plan
// runs.
func LoadDataset(groundTruthPath, plansPath string) (Dataset, error) {
	var ds Dataset

	raw, err := os.ReadFile(groundTruthPath)
	if err != nil {
		return ds, err
	}
	var gts map[string]protocol.GroundTruthEntry
	if err := json.Unmarshal(raw, &gts); err != nil {
		return ds, fmt.Errorf("ground truths %s: %w", groundTruthPath, err)
	}
	ds.Domains = make(map[string]Domain, len(gts))
	for name, gt := range gts {
		sc, err := scene.Decode(gt.Scene3D)
		if err != nil {
			return ds, fmt.Errorf("ground truths %s: domain %s: %w", groundTruthPath, name, err)
		}
		ds.Domains[name] = Domain{Name: name, Domain: gt.Domain, Goal: gt.Goal, Scene: sc}
	}

	raw, err = os.ReadFile(plansPath)
	if err != nil {
		return ds, err
	}
	if err := json.Unmarshal(raw, &ds.Plans); err != nil {
		return ds, fmt.Errorf("plans %s: %w", plansPath, err)
	}
	return ds, nil
}
