// Package profile holds the domain weight profiles used by the voting stage.
// The registry is built once at startup and is safe for concurrent reads.
package profile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/Harshitk-cp/concord/internal/domain"
	"gopkg.in/yaml.v3"
)

const DefaultDomain = "general"

// Registry is an immutable set of domain weight profiles.
type Registry struct {
	profiles map[string]*domain.DomainWeightProfile
}

// NewRegistry creates a registry from the given profiles, validating each.
// Later entries replace earlier ones with the same name.
func NewRegistry(profiles ...domain.DomainWeightProfile) (*Registry, error) {
	r := &Registry{profiles: make(map[string]*domain.DomainWeightProfile, len(profiles))}
	for i := range profiles {
		p := normalize(profiles[i])
		if err := p.Validate(); err != nil {
			return nil, err
		}
		r.profiles[p.Name] = &p
	}
	return r, nil
}

// Get returns a copy of the named profile so callers cannot mutate the table.
func (r *Registry) Get(name string) (*domain.DomainWeightProfile, bool) {
	p, ok := r.profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	cp := clone(*p)
	return &cp, true
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns copies of every profile sorted by name.
func (r *Registry) All() []domain.DomainWeightProfile {
	out := make([]domain.DomainWeightProfile, 0, len(r.profiles))
	for _, name := range r.Names() {
		out = append(out, clone(*r.profiles[name]))
	}
	return out
}

type fileFormat struct {
	Profiles []domain.DomainWeightProfile `yaml:"profiles"`
}

// Load builds a registry from the built-in profiles overlaid with the YAML
// file at path. A missing file is not an error; an empty path skips it.
func Load(path string) (*Registry, error) {
	profiles := Builtin()
	if path == "" {
		return NewRegistry(profiles...)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewRegistry(profiles...)
		}
		return nil, fmt.Errorf("profile: read %s: %w", path, err)
	}

	overlay, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile: parse %s: %w", path, err)
	}
	return NewRegistry(append(profiles, overlay...)...)
}

// Parse decodes a YAML profile document.
func Parse(data []byte) ([]domain.DomainWeightProfile, error) {
	var parsed fileFormat
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, err
	}
	return parsed.Profiles, nil
}

func normalize(p domain.DomainWeightProfile) domain.DomainWeightProfile {
	p.Name = strings.ToLower(strings.TrimSpace(p.Name))
	p = clone(p)
	for i, v := range p.Verdicts {
		p.Verdicts[i] = domain.Verdict(strings.ToUpper(strings.TrimSpace(string(v))))
	}
	for i, v := range p.Severity {
		p.Severity[i] = domain.Verdict(strings.ToUpper(strings.TrimSpace(string(v))))
	}
	p.EscalateAt = domain.Verdict(strings.ToUpper(strings.TrimSpace(string(p.EscalateAt))))
	if len(p.Multipliers) > 0 {
		lowered := make(map[string]float64, len(p.Multipliers))
		for k, v := range p.Multipliers {
			lowered[strings.ToLower(k)] = v
		}
		p.Multipliers = lowered
	}
	if p.DefaultMode == "" {
		p.DefaultMode = domain.ModeMajority
	}
	return p
}

func clone(p domain.DomainWeightProfile) domain.DomainWeightProfile {
	p.Verdicts = append([]domain.Verdict(nil), p.Verdicts...)
	p.Severity = append([]domain.Verdict(nil), p.Severity...)
	p.EscalationKeywords = append([]string(nil), p.EscalationKeywords...)
	if p.Multipliers != nil {
		m := make(map[string]float64, len(p.Multipliers))
		for k, v := range p.Multipliers {
			m[k] = v
		}
		p.Multipliers = m
	}
	return p
}
