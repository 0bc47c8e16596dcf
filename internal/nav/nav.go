// Package nav exposes the walkability contract the movement logic depends
// on. Grid extraction from binary map files and pathfinding live outside
// this repository; the default provider is backed by the walk-cache
// memory bank.
package nav

import (
	"context"

	"github.com/m2bot/client/internal/memory"
	"go.uber.org/zap"
)

// Grid answers walkability queries for the current map set.
type Grid interface {
	// Walkable reports whether a cell is believed passable.
	Walkable(mapFile string, x, y uint16) bool
	// Reload asynchronously refreshes the grid for a map after a map
	// change. It must not block the receive path.
	Reload(ctx context.Context, mapFile string)
}

// CacheGrid is the walk-cache-backed Grid: a cell is walkable when the
// shared navigation aid has proven it.
type CacheGrid struct {
	walk *memory.WalkCache
	log  *zap.Logger
}

func NewCacheGrid(walk *memory.WalkCache, log *zap.Logger) *CacheGrid {
	return &CacheGrid{walk: walk, log: log.Named("nav")}
}

func (g *CacheGrid) Walkable(mapFile string, x, y uint16) bool {
	return g.walk.Known(mapFile, x, y)
}

// Reload re-reads the map's walk file in the background.
func (g *CacheGrid) Reload(ctx context.Context, mapFile string) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				g.log.Error("grid reload panic", zap.Any("panic", rec))
			}
		}()
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := g.walk.LoadMap(mapFile); err != nil {
			g.log.Warn("grid reload failed", zap.String("map", mapFile), zap.Error(err))
		}
	}()
}
