package memory

import (
	"path/filepath"

	"go.uber.org/zap"
)

// Banks bundles the four memory banks rooted at a shared cache directory.
type Banks struct {
	Npcs  *NpcCache
	Moves *MoveGraph
	Rates *ExpRate
	Walk  *WalkCache
}

// OpenBanks creates the banks and loads whatever is on disk. Missing files
// are empty banks, not errors.
func OpenBanks(cacheDir string, log *zap.Logger) (*Banks, error) {
	b := &Banks{
		Npcs:  NewNpcCache(filepath.Join(cacheDir, "npcs.json"), log),
		Moves: NewMoveGraph(filepath.Join(cacheDir, "movegraph.json"), log),
		Rates: NewExpRate(filepath.Join(cacheDir, "exprates.json"), log),
		Walk:  NewWalkCache(filepath.Join(cacheDir, "walk"), log),
	}
	if err := b.Npcs.Load(); err != nil {
		return nil, err
	}
	if err := b.Moves.Load(); err != nil {
		return nil, err
	}
	if err := b.Rates.Load(); err != nil {
		return nil, err
	}
	return b, nil
}

// FlushAll persists every dirty bank. Errors are collected into the first
// one seen; the rest still get their chance to flush.
func (b *Banks) FlushAll() error {
	var first error
	for _, f := range []func() error{b.Npcs.Flush, b.Moves.Flush, b.Rates.Flush, b.Walk.Flush} {
		if err := f(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
