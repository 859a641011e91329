package domain

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("audit_record_not_found")

type Repository interface {
	Insert(ctx context.Context, record *QuoteAuditRecord) error
	AttachOrder(ctx context.Context, requestID string, orderID int64) error
	Stats(ctx context.Context, from, to time.Time) (Stats, error)
	RuleUsage(ctx context.Context, from, to time.Time, limit int) ([]RuleUsage, error)
	Recent(ctx context.Context, limit int) ([]QuoteAuditRecord, error)
}

// Service records quote outcomes and aggregates them for operators.
// Recording is best effort: a failed write never fails the quote.
type Service interface {
	Record(ctx context.Context, record *QuoteAuditRecord)
	AttachOrder(ctx context.Context, requestID string, orderID int64) error
	Metrics(ctx context.Context, from, to time.Time) (Summary, error)
}
