// Package scripting hosts the Lua VM that supplies the decision logic's
// standing rules to the interaction engine: which consumables to keep
// stocked and how to rate equipment. Scripts are optional; a missing or
// broken script degrades to the conservative defaults.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/m2bot/client/internal/data"
	"github.com/m2bot/client/internal/npc"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Rules wraps a single gopher-lua VM. The VM is not goroutine-safe, so
// every call is serialized by the mutex (the interaction engine and tests
// are the only callers).
type Rules struct {
	mu  sync.Mutex
	vm  *lua.LState
	log *zap.Logger
}

// LoadRules creates the VM and loads every .lua file in dir. A missing
// directory yields a Rules with an empty VM, not an error.
func LoadRules(dir string, log *zap.Logger) (*Rules, error) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	r := &Rules{vm: vm, log: log.Named("rules")}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		vm.Close()
		return nil, fmt.Errorf("read rules dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := vm.DoFile(path); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		r.log.Debug("loaded rules script", zap.String("file", path))
	}
	return r, nil
}

// Close tears down the VM.
func (r *Rules) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vm.Close()
}

// DesiredItems calls the Lua desired_items() function, which returns an
// array of { name=..., count=... } or { name=..., weight_frac=... }
// tables. No function, or an error, means no desires.
func (r *Rules) DesiredItems() []npc.DesiredItem {
	r.mu.Lock()
	defer r.mu.Unlock()

	fn := r.vm.GetGlobal("desired_items")
	if fn == lua.LNil {
		return nil
	}
	if err := r.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
		r.log.Warn("desired_items failed", zap.Error(err))
		return nil
	}
	ret := r.vm.Get(-1)
	r.vm.Pop(1)
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil
	}

	var items []npc.DesiredItem
	tbl.ForEach(func(_, v lua.LValue) {
		row, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		item := npc.DesiredItem{
			Name:       lua.LVAsString(row.RawGetString("name")),
			Count:      int(lua.LVAsNumber(row.RawGetString("count"))),
			WeightFrac: float64(lua.LVAsNumber(row.RawGetString("weight_frac"))),
		}
		if item.Name != "" {
			items = append(items, item)
		}
	})
	return items
}

// ScoreItem calls the Lua score_item(item) function with a table of the
// definition's fields and returns its number. No function, or an error,
// scores zero (not wanted).
func (r *Rules) ScoreItem(def *data.ItemDef) float64 {
	if def == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	fn := r.vm.GetGlobal("score_item")
	if fn == lua.LNil {
		return 0
	}
	row := r.vm.NewTable()
	row.RawSetString("name", lua.LString(def.Name))
	row.RawSetString("category", lua.LString(def.Category))
	row.RawSetString("price", lua.LNumber(def.Price))
	row.RawSetString("weight", lua.LNumber(def.Weight))
	row.RawSetString("durability", lua.LNumber(def.Durability))
	row.RawSetString("hp", lua.LNumber(def.Stats.HP))
	row.RawSetString("mp", lua.LNumber(def.Stats.MP))
	row.RawSetString("min_dc", lua.LNumber(def.Stats.MinDC))
	row.RawSetString("max_dc", lua.LNumber(def.Stats.MaxDC))
	row.RawSetString("ac", lua.LNumber(def.Stats.AC))

	if err := r.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, row); err != nil {
		r.log.Warn("score_item failed", zap.Error(err))
		return 0
	}
	ret := r.vm.Get(-1)
	r.vm.Pop(1)
	return float64(lua.LVAsNumber(ret))
}
