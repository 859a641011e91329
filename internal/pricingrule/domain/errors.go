package domain

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidPriority = errors.New("invalid_priority")
	ErrInvalidRange    = errors.New("invalid_distance_range")
	ErrInvalidFee      = errors.New("invalid_fee")
	ErrNotFound        = errors.New("not_found")
)

// OverlapError rejects a rule whose active band intersects another active
// rule's band. It names the conflicting rule so the admin UI can surface it.
type OverlapError struct {
	RuleID   snowflake.ID
	RuleName string
}

func (e *OverlapError) Error() string {
	name := e.RuleName
	if name == "" {
		name = fmt.Sprintf("Rule #%d", e.RuleID)
	}
	return fmt.Sprintf("distance range overlaps with existing rule: %s", name)
}
