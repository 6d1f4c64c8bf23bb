package model

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/atomic"
)

// ErrCallLimit is returned once a LimitedModel has used up its call budget.
var ErrCallLimit = errors.New("model call limit exceeded")

// LimitedModel caps the number of Generate calls made through it.
type LimitedModel struct {
	next  Model
	max   int64
	count atomic.Int64
}

// NewLimitedModel wraps m. If max <= 0, calls are unlimited.
func NewLimitedModel(m Model, max int) *LimitedModel {
	return &LimitedModel{next: m, max: int64(max)}
}

// Generate implements Model.
func (l *LimitedModel) Generate(ctx context.Context, req Request) (Response, error) {
	if n := l.count.Inc(); l.max > 0 && n > l.max {
		return Response{}, fmt.Errorf("%w: %d", ErrCallLimit, l.max)
	}
	return l.next.Generate(ctx, req)
}

// Info implements Model.
func (l *LimitedModel) Info() Info { return l.next.Info() }

// Count returns the number of calls attempted so far.
func (l *LimitedModel) Count() int { return int(l.count.Load()) }
