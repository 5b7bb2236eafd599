package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
)

// CaseRecord is a support case fetched from the CRM. It is read-only
// input to the pipeline; this service never mutates the CRM record.
type CaseRecord struct {
	ID          types.CaseID
	CaseNumber  string
	Subject     string
	SeverityRaw string
	Taxonomy    string
	Status      string
	OwnerName   string
	CreatedAt   time.Time
}

// Validate checks required fields at the ingestion boundary. Records
// failing validation are flagged and skipped rather than propagated.
func (c *CaseRecord) Validate() error {
	if c.ID == "" {
		return goerr.New("case record has no ID", goerr.V("case_number", c.CaseNumber))
	}
	if c.CaseNumber == "" {
		return goerr.New("case record has no case number", goerr.V("id", c.ID))
	}
	if c.CreatedAt.IsZero() {
		return goerr.New("case record has no creation time",
			goerr.V("id", c.ID),
			goerr.V("case_number", c.CaseNumber))
	}
	return nil
}

// Severity returns the normalized severity class of the record.
func (c *CaseRecord) Severity() types.Severity {
	return types.ParseSeverity(c.SeverityRaw)
}

// CloudCategory derives the cloud segment from the routing taxonomy name:
// the prefix before the first hyphen. A taxonomy without a hyphen is its
// own category.
func (c *CaseRecord) CloudCategory() string {
	if idx := strings.Index(c.Taxonomy, "-"); idx >= 0 {
		return strings.TrimSpace(c.Taxonomy[:idx])
	}
	return strings.TrimSpace(c.Taxonomy)
}

// Age returns the elapsed time since the case was created.
func (c *CaseRecord) Age(now time.Time) time.Duration {
	return now.Sub(c.CreatedAt)
}
