package agent

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sago-ventures/reengage-cli/internal/model"
)

// Playbook holds optional operator overrides for the re-engagement policy,
// loaded from a YAML file. Absent fields keep their compiled defaults.
type Playbook struct {
	ConfidenceThreshold *float64           `yaml:"confidence_threshold"`
	CooldownDays        *int               `yaml:"cooldown_days"`
	TypeWeights         map[string]float64 `yaml:"type_weights"`
}

// LoadPlaybook reads a playbook from a YAML file.
func LoadPlaybook(path string) (*Playbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "agent: read playbook %s", path)
	}

	var wrapper struct {
		Playbook Playbook `yaml:"playbook"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "agent: parse playbook")
	}

	return &wrapper.Playbook, nil
}

// Apply overlays the playbook onto a base config. Unknown signal kinds and
// out-of-range values are rejected here, at the boundary, so the scoring
// core never sees them.
func (p *Playbook) Apply(base Config) (Config, error) {
	cfg := base

	if p.ConfidenceThreshold != nil {
		if *p.ConfidenceThreshold < 0 || *p.ConfidenceThreshold > 1 {
			return Config{}, eris.Errorf("agent: confidence threshold %v out of range [0,1]", *p.ConfidenceThreshold)
		}
		cfg.ConfidenceThreshold = *p.ConfidenceThreshold
	}

	if p.CooldownDays != nil {
		if *p.CooldownDays < 0 {
			return Config{}, eris.Errorf("agent: negative cooldown days %d", *p.CooldownDays)
		}
		cfg.CooldownDays = *p.CooldownDays
	}

	if len(p.TypeWeights) > 0 {
		weights := make(map[model.SignalType]float64, len(defaultTypeWeights))
		for k, v := range defaultTypeWeights {
			weights[k] = v
		}
		for label, w := range p.TypeWeights {
			kind, err := model.ParseSignalType(label)
			if err != nil {
				return Config{}, eris.Wrap(err, "agent: playbook type weight")
			}
			if w < 0 || w > 1 {
				return Config{}, eris.Errorf("agent: type weight %v for %s out of range [0,1]", w, label)
			}
			weights[kind] = w
		}
		cfg.TypeWeights = weights
	}

	return cfg, nil
}
