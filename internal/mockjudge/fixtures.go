// Package mockjudge is a local stand-in for the contest/judge API. It serves
// contests and problems from a YAML fixture and grades submissions with a
// configurable canned verdict. It never executes code.
package mockjudge

import (
	"encoding/json"
	"fmt"
	"os"

	"contesthub/internal/model"

	"gopkg.in/yaml.v3"
)

// ProblemFixture is a problem as written in the fixture file: test cases are a
// YAML list and get serialized into the wire's testCase string on load.
type ProblemFixture struct {
	model.Problem `yaml:",inline"`
	Cases         []model.TestCase `yaml:"testCases"`
}

// Fixtures is the content of a fixture file.
type Fixtures struct {
	Contests []model.Contest            `yaml:"contests"`
	Problems map[string][]ProblemFixture `yaml:"problems"` // keyed by contest id
}

// LoadFixtures reads and validates a fixture file.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures failed: %w", err)
	}
	return ParseFixtures(data)
}

// ParseFixtures parses fixture YAML.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures failed: %w", err)
	}
	seen := make(map[string]struct{}, len(f.Contests))
	for _, c := range f.Contests {
		if c.ID == "" {
			return nil, fmt.Errorf("contest %q has no acid", c.Title)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("duplicate contest acid %q", c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	for contestID := range f.Problems {
		if _, ok := seen[contestID]; !ok {
			return nil, fmt.Errorf("problems listed for unknown contest %q", contestID)
		}
	}
	return &f, nil
}

// WireProblems returns the problems of a contest in wire form.
func (f *Fixtures) WireProblems(contestID string) ([]model.Problem, error) {
	items := f.Problems[contestID]
	out := make([]model.Problem, 0, len(items))
	for _, item := range items {
		p := item.Problem
		if p.TestCaseRaw == "" {
			cases := item.Cases
			if cases == nil {
				cases = []model.TestCase{}
			}
			raw, err := json.Marshal(cases)
			if err != nil {
				return nil, fmt.Errorf("encode test cases of %s failed: %w", p.ID, err)
			}
			p.TestCaseRaw = string(raw)
		}
		if err := p.Decode(); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
