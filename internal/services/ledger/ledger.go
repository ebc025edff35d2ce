package ledger

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/mcoot/buzzrelay/internal/dependencies/clock"
	"github.com/mcoot/buzzrelay/internal/model"
	"github.com/mcoot/buzzrelay/internal/storage"
)

// Ledger records buzz results per room. Results are stored in arrival order
// and always read back sorted by elapsed time, ties kept in arrival order.
type Ledger struct {
	storage storage.Storage
	clock   clock.Clock
}

// New creates a new Ledger
func New(storage storage.Storage, clock clock.Clock) *Ledger {
	return &Ledger{
		storage: storage,
		clock:   clock,
	}
}

// Append records a buzz for a player. A player already in the room's current
// ledger is not recorded again: the first result is returned with recorded=false.
func (l *Ledger) Append(
	ctx context.Context,
	code model.RoomCode,
	playerID model.ConnectionID,
	playerName string,
	elapsed float64,
) (result *model.BuzzResult, recorded bool, err error) {
	existing, err := l.storage.GetBuzzResults(ctx, code)
	if err != nil {
		return nil, false, fmt.Errorf("get buzz results: %w", err)
	}
	for _, r := range existing {
		if r.PlayerID == playerID {
			return r, false, nil
		}
	}

	result = &model.BuzzResult{
		RoomCode:    code,
		PlayerID:    playerID,
		PlayerName:  playerName,
		ElapsedTime: max(elapsed, 0),
		RecordedAt:  l.clock.Now(),
	}
	if err := l.storage.AppendBuzzResult(ctx, result); err != nil {
		return nil, false, fmt.Errorf("append buzz result: %w", err)
	}
	return result, true, nil
}

// ListByRoom returns a room's results, fastest first. Never nil.
func (l *Ledger) ListByRoom(ctx context.Context, code model.RoomCode) ([]*model.BuzzResult, error) {
	results, err := l.storage.GetBuzzResults(ctx, code)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []*model.BuzzResult{}
	}
	slices.SortStableFunc(results, func(a, b *model.BuzzResult) int {
		return cmp.Compare(a.ElapsedTime, b.ElapsedTime)
	})
	return results, nil
}

// ClearByRoom empties a room's results, reporting whether the room had a ledger
func (l *Ledger) ClearByRoom(ctx context.Context, code model.RoomCode) (bool, error) {
	return l.storage.ClearBuzzResults(ctx, code)
}
