// Package relations keeps the denormalized reference arrays on both sides of a
// relation in step. There are no transactions: a failure between the two writes
// leaves a one-sided relation, which is logged and returned to the caller.
package relations

import (
	"context"
	"fmt"
	"strings"

	"github.com/anonto42/community/backend/internal/repositories"
	"github.com/anonto42/community/backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mode controls how a link behaves when the reference is already present
type Mode string

const (
	// ModeSet never stores the same reference twice
	ModeSet Mode = "set"
	// ModeAppend appends on every link, so repeated links produce duplicate entries
	ModeAppend Mode = "append"
)

// ParseMode parses a configured mode; the empty string selects ModeSet
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSet:
		return ModeSet, nil
	case ModeAppend:
		return ModeAppend, nil
	}
	return "", fmt.Errorf("unknown relations mode %q (want %q or %q)", s, ModeSet, ModeAppend)
}

// Side is one reference array of a relation
type Side struct {
	Store repositories.RefArrays
	Field string
}

// Relation links records of the left collection with records of the right one.
// A relation without a right side is one-sided.
type Relation struct {
	Name  string
	Left  Side
	Right *Side
}

// Maintainer applies link and unlink operations on relations
type Maintainer struct {
	mode Mode
}

func NewMaintainer(mode Mode) *Maintainer {
	if mode == "" {
		mode = ModeSet
	}
	if mode == ModeAppend {
		logger.Warn().Str("mode", string(mode)).
			Msg("append mode stores duplicate references on repeated links")
	}
	return &Maintainer{mode: mode}
}

func (m *Maintainer) Mode() Mode {
	return m.mode
}

// Link records right in left's array and then left in right's array
func (m *Maintainer) Link(ctx context.Context, rel Relation, left, right primitive.ObjectID) error {
	unique := m.mode == ModeSet
	if err := rel.Left.Store.AddRef(ctx, left, rel.Left.Field, right, unique); err != nil {
		return fmt.Errorf("%s: link %s: %w", rel.Name, left.Hex(), err)
	}
	if rel.Right == nil {
		return nil
	}
	if err := rel.Right.Store.AddRef(ctx, right, rel.Right.Field, left, unique); err != nil {
		logger.Error().Err(err).
			Str("relation", rel.Name).
			Str("left", left.Hex()).
			Str("right", right.Hex()).
			Msg("relation left one-sided after link")
		return fmt.Errorf("%s: link %s: %w", rel.Name, right.Hex(), err)
	}
	return nil
}

// Unlink removes every occurrence of the pair from both arrays
func (m *Maintainer) Unlink(ctx context.Context, rel Relation, left, right primitive.ObjectID) error {
	if err := rel.Left.Store.RemoveRef(ctx, left, rel.Left.Field, right); err != nil {
		return fmt.Errorf("%s: unlink %s: %w", rel.Name, left.Hex(), err)
	}
	if rel.Right == nil {
		return nil
	}
	if err := rel.Right.Store.RemoveRef(ctx, right, rel.Right.Field, left); err != nil {
		logger.Error().Err(err).
			Str("relation", rel.Name).
			Str("left", left.Hex()).
			Str("right", right.Hex()).
			Msg("relation left one-sided after unlink")
		return fmt.Errorf("%s: unlink %s: %w", rel.Name, right.Hex(), err)
	}
	return nil
}
