package models

import (
	"strings"

	dErrors "tlo-gateway/pkg/domain-errors"
)

// SearchQuery is the inbound person-search request. All three fields are
// required and non-empty; no further format validation is applied — the
// upstream service owns format rules.
type SearchQuery struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	SSN       string `json:"ssn"`
}

// Validate checks field presence. Whitespace-only values count as empty.
func (q SearchQuery) Validate() error {
	if strings.TrimSpace(q.FirstName) == "" ||
		strings.TrimSpace(q.LastName) == "" ||
		strings.TrimSpace(q.SSN) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "firstName, lastName and ssn are required")
	}
	return nil
}

// MaskedSSN returns the SSN with all but the last four digits hidden,
// for log fields.
func (q SearchQuery) MaskedSSN() string {
	if len(q.SSN) <= 4 {
		return "***"
	}
	return "***-**-" + q.SSN[len(q.SSN)-4:]
}
