package out

import (
	"context"

	"hapkit/internal/modules/pattern/domain"
)

type PatternStore interface {
	Save(ctx context.Context, name string, p domain.Pattern) (string, error)
	Load(ctx context.Context, name string) (domain.Pattern, error)
	List(ctx context.Context) ([]domain.Entry, error)
}

type PatternIndex interface {
	Reset(ctx context.Context) error
	Upsert(ctx context.Context, entry domain.Entry) error
	List(ctx context.Context) ([]domain.Entry, error)
}
