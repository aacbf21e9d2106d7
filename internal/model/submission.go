package model

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
	"strings"

	pkgerrors "contesthub/pkg/errors"
)

// SubmissionKindCS is the submission type the judge expects for source solutions.
const SubmissionKindCS = "CS"

// SubmitRequest is the body of POST /api/approved_contest/submit/{contestId}/{username}.
type SubmitRequest struct {
	Type     string `json:"type"`
	PID      string `json:"pid"`
	Solution string `json:"solution"`
}

// FlexString accepts a JSON string, number or boolean and keeps its text form.
// Judges disagree on whether identifiers are strings or integers.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	if data[0] == '{' || data[0] == '[' {
		return &json.UnmarshalTypeError{Value: "object", Type: reflect.TypeOf("")}
	}
	*f = FlexString(data)
	return nil
}

func (f FlexString) String() string { return string(f) }

// Submission is a graded submission as reported by the judge. Fields are read
// leniently: a value of an unexpected type leaves the typed field zero, and
// every member of the reply is kept verbatim in Fields.
type Submission struct {
	ID                  FlexString      `json:"id"`
	Verdict             string          `json:"verdict"`
	ContestID           FlexString      `json:"contestId"`
	CreationTimeSeconds int64           `json:"creationTimeSeconds"`
	RelativeTimeSeconds int64           `json:"relativeTimeSeconds"`
	Problem             json.RawMessage `json:"problem,omitempty"`
	Author              json.RawMessage `json:"author,omitempty"`
	ProgrammingLanguage string          `json:"programmingLanguage"`
	Testset             string          `json:"testset"`
	PassedTestCount     int             `json:"passedTestCount"`
	TimeConsumedMillis  int64           `json:"timeConsumedMillis"`
	MemoryConsumedBytes int64           `json:"memoryConsumedBytes"`
	Points              float64         `json:"points"`

	Fields map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON requires an object and never fails on member types.
func (s *Submission) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return &json.UnmarshalTypeError{Value: "null", Type: reflect.TypeOf(Submission{})}
	}
	*s = Submission{
		ID:                  FlexString(rawText(fields["id"])),
		Verdict:             rawText(fields["verdict"]),
		ContestID:           FlexString(rawText(fields["contestId"])),
		CreationTimeSeconds: rawInt(fields["creationTimeSeconds"]),
		RelativeTimeSeconds: rawInt(fields["relativeTimeSeconds"]),
		Problem:             fields["problem"],
		Author:              fields["author"],
		ProgrammingLanguage: rawText(fields["programmingLanguage"]),
		Testset:             rawText(fields["testset"]),
		PassedTestCount:     int(rawInt(fields["passedTestCount"])),
		TimeConsumedMillis:  rawInt(fields["timeConsumedMillis"]),
		MemoryConsumedBytes: rawInt(fields["memoryConsumedBytes"]),
		Points:              rawFloat(fields["points"]),
		Fields:              fields,
	}
	return nil
}

// rawText is a string member's value, or the literal JSON text for any other type.
func rawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

func rawFloat(raw json.RawMessage) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(rawText(raw)), 64)
	if err != nil {
		return 0
	}
	return v
}

func rawInt(raw json.RawMessage) int64 {
	text := strings.TrimSpace(rawText(raw))
	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		return v
	}
	return int64(rawFloat(raw))
}

// OutcomeKind tags a VerdictOutcome.
type OutcomeKind int

const (
	// OutcomePending means the reply was well formed but carried no verdict yet.
	OutcomePending OutcomeKind = iota
	// OutcomeResolved means the first element carried a non-empty verdict.
	OutcomeResolved
	// OutcomeMalformed means the reply did not have the expected array shape.
	OutcomeMalformed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomePending:
		return "pending"
	case OutcomeResolved:
		return "resolved"
	case OutcomeMalformed:
		return "malformed"
	}
	return "unknown"
}

// VerdictOutcome is the judge's reply to a submission: Pending, Resolved(Submission) or Malformed(Raw).
type VerdictOutcome struct {
	Kind       OutcomeKind
	Submission Submission
	Raw        []byte
}

// DecodeVerdict classifies a submit reply body.
func DecodeVerdict(body []byte) VerdictOutcome {
	raw := append([]byte(nil), body...)
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return VerdictOutcome{Kind: OutcomeMalformed, Raw: raw}
	}
	if len(items) == 0 {
		return VerdictOutcome{Kind: OutcomePending, Raw: raw}
	}
	var sub Submission
	if err := json.Unmarshal(items[0], &sub); err != nil {
		return VerdictOutcome{Kind: OutcomeMalformed, Raw: raw}
	}
	if sub.Verdict == "" {
		return VerdictOutcome{Kind: OutcomePending, Raw: raw}
	}
	return VerdictOutcome{Kind: OutcomeResolved, Submission: sub, Raw: raw}
}

// MalformedError builds the error recorded when a reply cannot be read as a verdict.
func (o VerdictOutcome) MalformedError() error {
	return pkgerrors.New(pkgerrors.MalformedVerdict).WithDetail("raw", string(o.Raw))
}
