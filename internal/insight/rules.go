package insight

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var embeddedRules []byte

type rawFlag struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type rawLabelRule struct {
	Flag   string   `yaml:"flag"`
	Labels []string `yaml:"labels"`
}

type rawSection struct {
	Rules    []rawLabelRule `yaml:"rules"`
	Fallback []string       `yaml:"fallback"`
}

type rawHumor struct {
	Pool      []string `yaml:"pool"`
	Popular   string   `yaml:"popular"`
	Unstarred string   `yaml:"unstarred"`
	Forked    string   `yaml:"forked"`
	Short     string   `yaml:"short"`
}

type rawRules struct {
	Version      int        `yaml:"version"`
	Flags        []rawFlag  `yaml:"flags"`
	TechStack    rawSection `yaml:"tech_stack"`
	Features     rawSection `yaml:"features"`
	UseCases     rawSection `yaml:"use_cases"`
	Challenges   rawSection `yaml:"challenges"`
	Humor        rawHumor   `yaml:"humor"`
	DemoPatterns []string   `yaml:"demo_patterns"`
}

// Flag is a named keyword test over lower-cased text.
type Flag struct {
	Name     string
	Keywords []string
}

// LabelRule contributes Labels when Flag fired.
type LabelRule struct {
	Flag   string
	Labels []string
}

// Section is an ordered rule list with an all-or-nothing fallback.
type Section struct {
	Rules    []LabelRule
	Fallback []string
}

// Humor holds the random pool and the metadata-driven overrides.
type Humor struct {
	Pool      []string
	Popular   string
	Unstarred string
	Forked    string
	Short     string
}

// Rules is the compiled classification vocabulary. The same keyword table
// feeds tech stack, feature, use case, challenge and deployment decisions.
type Rules struct {
	Flags        []Flag
	TechStack    Section
	Features     Section
	UseCases     Section
	Challenges   Section
	Humor        Humor
	DemoPatterns []*regexp.Regexp
}

var defaultRules = mustLoadRules(embeddedRules)

// DefaultRules returns the embedded rule set.
func DefaultRules() *Rules {
	return defaultRules
}

func mustLoadRules(raw []byte) *Rules {
	r, err := LoadRules(raw)
	if err != nil {
		panic(err)
	}
	return r
}

// LoadRules decodes and validates a YAML rule set.
func LoadRules(raw []byte) (*Rules, error) {
	var rr rawRules
	if err := yaml.Unmarshal(raw, &rr); err != nil {
		return nil, fmt.Errorf("insight rules: parse yaml: %w", err)
	}
	if rr.Version != 1 {
		return nil, fmt.Errorf("insight rules: unsupported version %d (want 1)", rr.Version)
	}

	r := &Rules{
		Humor: Humor(rr.Humor),
	}
	known := make(map[string]struct{}, len(rr.Flags))
	for _, f := range rr.Flags {
		name := strings.TrimSpace(f.Name)
		if name == "" || len(f.Keywords) == 0 {
			return nil, fmt.Errorf("insight rules: flag %q needs a name and keywords", f.Name)
		}
		kws := make([]string, 0, len(f.Keywords))
		for _, kw := range f.Keywords {
			kws = append(kws, strings.ToLower(kw))
		}
		r.Flags = append(r.Flags, Flag{Name: name, Keywords: kws})
		known[name] = struct{}{}
	}

	sections := []struct {
		name string
		raw  rawSection
		dst  *Section
	}{
		{"tech_stack", rr.TechStack, &r.TechStack},
		{"features", rr.Features, &r.Features},
		{"use_cases", rr.UseCases, &r.UseCases},
		{"challenges", rr.Challenges, &r.Challenges},
	}
	for _, s := range sections {
		if len(s.raw.Fallback) == 0 {
			return nil, fmt.Errorf("insight rules: %s has no fallback", s.name)
		}
		for _, lr := range s.raw.Rules {
			if _, ok := known[lr.Flag]; !ok {
				return nil, fmt.Errorf("insight rules: %s references unknown flag %q", s.name, lr.Flag)
			}
			s.dst.Rules = append(s.dst.Rules, LabelRule(lr))
		}
		s.dst.Fallback = s.raw.Fallback
	}

	if len(r.Humor.Pool) == 0 {
		return nil, fmt.Errorf("insight rules: humor pool is empty")
	}

	for _, p := range rr.DemoPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("insight rules: compile demo pattern %q: %w", p, err)
		}
		r.DemoPatterns = append(r.DemoPatterns, re)
	}
	return r, nil
}

// evalFlags reports which flags fire for the lower-cased text.
func (r *Rules) evalFlags(lower string) map[string]bool {
	out := make(map[string]bool, len(r.Flags))
	for _, f := range r.Flags {
		for _, kw := range f.Keywords {
			if strings.Contains(lower, kw) {
				out[f.Name] = true
				break
			}
		}
	}
	return out
}

// collect gathers labels for fired flags in rule order.
func (s Section) collect(flags map[string]bool) []string {
	var out []string
	for _, lr := range s.Rules {
		if flags[lr.Flag] {
			out = append(out, lr.Labels...)
		}
	}
	return out
}
