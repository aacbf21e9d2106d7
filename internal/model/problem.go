package model

import (
	"encoding/json"
	"strings"

	pkgerrors "contesthub/pkg/errors"
)

// TestCase is one sample input/output pair shown with a problem.
type TestCase struct {
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`
}

// InputLines returns the input split for line-by-line display.
func (tc TestCase) InputLines() []string { return SplitLines(tc.Input) }

// OutputLines returns the output split for line-by-line display.
func (tc TestCase) OutputLines() []string { return SplitLines(tc.Output) }

// Problem is a contest problem. TestCaseRaw is the serialized test case array
// exactly as delivered; DecodeTestCases turns it into TestCases.
type Problem struct {
	ID          string     `json:"pid" yaml:"pid"`
	Title       string     `json:"title" yaml:"title"`
	Constraints string     `json:"constraints" yaml:"constraints"`
	Description string     `json:"problemDescription" yaml:"problemDescription"`
	TestCaseRaw string     `json:"testCase" yaml:"testCase"`
	TestCases   []TestCase `json:"-" yaml:"-"`
}

// ConstraintLines returns the constraints one per line.
func (p Problem) ConstraintLines() []string { return SplitLines(p.Constraints) }

// Decode fills TestCases from TestCaseRaw.
func (p *Problem) Decode() error {
	cases, err := DecodeTestCases(p.TestCaseRaw)
	if err != nil {
		return pkgerrors.Wrapf(err, pkgerrors.TestCaseInvalid, "problem %s: invalid test cases", p.ID).
			WithDetail("pid", p.ID)
	}
	p.TestCases = cases
	return nil
}

// DecodeTestCases parses a serialized JSON array of {input, output} objects.
// A blank payload decodes to no test cases.
func DecodeTestCases(raw string) ([]TestCase, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var cases []TestCase
	if err := json.Unmarshal([]byte(raw), &cases); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.TestCaseInvalid)
	}
	return cases, nil
}

// SplitLines splits on "\n", keeping empty lines and their order, so that
// strings.Join(SplitLines(s), "\n") == s.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}
