package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	List(ctx context.Context) ([]Rule, error)
	ListActive(ctx context.Context) ([]Rule, error)
	FindByID(ctx context.Context, id snowflake.ID) (*Rule, error)
	Insert(ctx context.Context, rule *Rule) error
	Update(ctx context.Context, rule *Rule) error
	Delete(ctx context.Context, id snowflake.ID) error
}
