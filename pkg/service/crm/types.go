package crm

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/queuewatch/pkg/domain/model"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
)

// caseRecordBody is the wire shape of a case record
type caseRecordBody struct {
	ID         string `json:"Id"`
	CaseNumber string `json:"CaseNumber"`
	Subject    string `json:"Subject"`
	Severity   string `json:"Severity__c"`
	Status     string `json:"Status"`
	Owner      struct {
		Name string `json:"Name"`
	} `json:"Owner"`
	RoutingTaxonomy struct {
		Name string `json:"Name"`
	} `json:"Case_Routing_Taxonomy__r"`
	CreatedDate string `json:"CreatedDate"`
}

// historyEventBody is the wire shape of a case history event
type historyEventBody struct {
	CaseID      string `json:"CaseId"`
	Field       string `json:"Field"`
	OldValue    string `json:"OldValue"`
	NewValue    string `json:"NewValue"`
	CreatedByID string `json:"CreatedById"`
	CreatedDate string `json:"CreatedDate"`
}

// commentEventBody is the wire shape of a case feed comment
type commentEventBody struct {
	ParentID    string `json:"ParentId"`
	Body        string `json:"CommentBody"`
	CreatedByID string `json:"CreatedById"`
	CreatedDate string `json:"CreatedDate"`
}

// queryResponse is the generic query result envelope
type queryResponse[T any] struct {
	TotalSize int  `json:"totalSize"`
	Done      bool `json:"done"`
	Records   []T  `json:"records"`
}

// nameBody is the wire shape of a name-only record lookup
type nameBody struct {
	Name string `json:"Name"`
}

// The backend renders timestamps with milliseconds and a numeric offset.
const wireTimeFormat = "2006-01-02T15:04:05.000-0700"

func parseWireTime(s string) (time.Time, error) {
	t, err := time.Parse(wireTimeFormat, s)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "failed to parse record timestamp", goerr.V("value", s))
	}
	return t, nil
}

func (b *caseRecordBody) toModel() (*model.CaseRecord, error) {
	createdAt, err := parseWireTime(b.CreatedDate)
	if err != nil {
		return nil, err
	}

	return &model.CaseRecord{
		ID:          types.CaseID(b.ID),
		CaseNumber:  b.CaseNumber,
		Subject:     b.Subject,
		SeverityRaw: b.Severity,
		Taxonomy:    b.RoutingTaxonomy.Name,
		Status:      b.Status,
		OwnerName:   b.Owner.Name,
		CreatedAt:   createdAt,
	}, nil
}

func (b *historyEventBody) toModel() (*model.HistoryEvent, error) {
	createdAt, err := parseWireTime(b.CreatedDate)
	if err != nil {
		return nil, err
	}

	return &model.HistoryEvent{
		CaseID:    types.CaseID(b.CaseID),
		Field:     b.Field,
		OldValue:  types.RecordRef(b.OldValue),
		NewValue:  types.RecordRef(b.NewValue),
		CreatedBy: b.CreatedByID,
		CreatedAt: createdAt,
	}, nil
}

func (b *commentEventBody) toModel() (*model.CommentEvent, error) {
	createdAt, err := parseWireTime(b.CreatedDate)
	if err != nil {
		return nil, err
	}

	return &model.CommentEvent{
		CaseID:    types.CaseID(b.ParentID),
		Body:      b.Body,
		CreatedBy: b.CreatedByID,
		CreatedAt: createdAt,
	}, nil
}
