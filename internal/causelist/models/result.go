package models

import (
	"fmt"
	"strings"
)

// Kind selects the cause list type.
type Kind string

const (
	KindCriminal Kind = "criminal"
	KindCivil    Kind = "civil"
)

// ParseKind accepts "criminal" or "civil" in any case.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindCriminal, KindCivil:
		return k, nil
	}
	return "", fmt.Errorf("unknown cause list kind: %q", s)
}

func (k Kind) String() string {
	return string(k)
}

// CaseEntry is one row of a cause list table.
type CaseEntry struct {
	SrNo       string `json:"sr_no" yaml:"sr_no"`
	CaseNumber string `json:"case_number" yaml:"case_number"`
	PartyName  string `json:"party_name" yaml:"party_name"`
	Advocate   string `json:"advocate" yaml:"advocate"`
}

// SubmitResult is what the backend answers to a submission. Entries are only
// present when the backend managed to read the result table.
type SubmitResult struct {
	Status  string      `json:"status"`
	Entries []CaseEntry `json:"entries,omitempty"`
}
