package registry

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"taskrouter/internal/logging"
)

// handlerFile mirrors the on-disk YAML layout of a handler definition file.
type handlerFile struct {
	Handlers []handlerDef `yaml:"handlers"`
	Special  specialDef   `yaml:"special"`
}

type handlerDef struct {
	Name        string   `yaml:"name"`
	Domain      string   `yaml:"domain"`
	Secondary   []string `yaml:"secondary_domains"`
	Keywords    []string `yaml:"keywords"`
	Patterns    []string `yaml:"patterns"`
	Intents     []string `yaml:"intents"`
	Weight      float64  `yaml:"weight"`
	Description string   `yaml:"description"`
}

type specialDef struct {
	Fallback     string `yaml:"fallback"`
	Coordination string `yaml:"coordination"`
	Strategic    string `yaml:"strategic"`
	Conflict     string `yaml:"conflict"`
}

// LoadFile reads handler definitions from a YAML file and builds a registry.
// Malformed entries are rejected with a descriptive error, not tolerated.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Reason: fmt.Sprintf("cannot read %s", path), Err: err}
	}
	return Load(data)
}

// Load parses handler definitions from YAML bytes and builds a registry.
func Load(data []byte) (*Registry, error) {
	var file handlerFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &LoadError{Reason: "invalid YAML", Err: err}
	}

	profiles := make([]*HandlerProfile, 0, len(file.Handlers))
	for _, def := range file.Handlers {
		p, err := buildProfile(def)
		if err != nil {
			return nil, &LoadError{Reason: "invalid handler definition", Err: err}
		}
		profiles = append(profiles, p)
	}

	reg, err := New(profiles, SpecialHandlers{
		Fallback:     file.Special.Fallback,
		Coordination: file.Special.Coordination,
		Strategic:    file.Special.Strategic,
		Conflict:     file.Special.Conflict,
	})
	if err != nil {
		return nil, err
	}

	logging.Registry("loaded %d handler profiles", reg.Len())
	return reg, nil
}

func buildProfile(def handlerDef) (*HandlerProfile, error) {
	weight := def.Weight
	if weight == 0 {
		weight = 1.0
	}

	p := &HandlerProfile{
		Name:             def.Name,
		Domain:           def.Domain,
		SecondaryDomains: def.Secondary,
		PrimaryKeywords:  def.Keywords,
		IntentVerbs:      def.Intents,
		WeightMultiplier: weight,
		Description:      def.Description,
		rawPatterns:      def.Patterns,
	}

	for _, expr := range def.Patterns {
		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			return nil, fmt.Errorf("handler %q pattern %q: %w", def.Name, expr, err)
		}
		p.ContextPatterns = append(p.ContextPatterns, re)
	}

	return p, nil
}
