package handler

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/m2bot/client/internal/config"
	"github.com/m2bot/client/internal/data"
	"github.com/m2bot/client/internal/memory"
	"github.com/m2bot/client/internal/nav"
	gonet "github.com/m2bot/client/internal/net"
	"github.com/m2bot/client/internal/net/packet"
	"github.com/m2bot/client/internal/npc"
	"github.com/m2bot/client/internal/world"
	"go.uber.org/zap"
)

// Phase is the client-side session phase, driving the auth flow branches.
type Phase int32

const (
	PhaseHandshake Phase = iota
	PhaseLoginSent
	PhaseCharSelect
	PhaseStarting
	PhaseInWorld
)

// Deps holds shared dependencies injected into all message handlers.
// Handlers run on the receive path and are the only writers of world
// state.
type Deps struct {
	Cfg     *config.Config
	Log     *zap.Logger
	Conn    *gonet.Conn
	Model   *world.Model
	Catalog *data.Catalog
	Classes *data.ClassTable
	Engine  *npc.Engine
	Banks   *memory.Banks
	Grid    nav.Grid
	Mirror  *Mirror

	// Ctx bounds supervised background tasks spawned by handlers.
	Ctx context.Context

	// CharID is the server-assigned id of the local character.
	CharID atomic.Int32

	phase atomic.Int32

	trackMu sync.Mutex
	tracker *memory.Tracker
}

func (d *Deps) Phase() Phase {
	return Phase(d.phase.Load())
}

func (d *Deps) SetPhase(p Phase) {
	d.phase.Store(int32(p))
}

// RegisterAll maps every consumed server opcode to its handler.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	reg.Register(packet.S_OPCODE_LOGIN_RESULT, func(r *packet.Reader) { HandleLoginResult(r, deps) })
	reg.Register(packet.S_OPCODE_NEW_ACCOUNT_RESULT, func(r *packet.Reader) { HandleNewAccountResult(r, deps) })
	reg.Register(packet.S_OPCODE_CHAR_LIST, func(r *packet.Reader) { HandleCharList(r, deps) })
	reg.Register(packet.S_OPCODE_CHAR_CREATE_RESULT, func(r *packet.Reader) { HandleCharCreateResult(r, deps) })
	reg.Register(packet.S_OPCODE_START_GAME, func(r *packet.Reader) { HandleStartGame(r, deps) })
	reg.Register(packet.S_OPCODE_START_GAME_BANNED, func(r *packet.Reader) { HandleStartGameBanned(r, deps) })
	reg.Register(packet.S_OPCODE_START_GAME_DELAY, func(r *packet.Reader) { HandleStartGameDelay(r, deps) })

	reg.Register(packet.S_OPCODE_MAP_INFO, func(r *packet.Reader) { HandleMapInfo(r, deps) })
	reg.Register(packet.S_OPCODE_MAP_CHANGED, func(r *packet.Reader) { HandleMapChanged(r, deps) })
	reg.Register(packet.S_OPCODE_TELEPORT_OUT, func(r *packet.Reader) { HandleTeleportOut(r, deps) })
	reg.Register(packet.S_OPCODE_TELEPORT_IN, func(r *packet.Reader) { HandleTeleportIn(r, deps) })
	reg.Register(packet.S_OPCODE_USER_INFO, func(r *packet.Reader) { HandleUserInfo(r, deps) })
	reg.Register(packet.S_OPCODE_USER_LOCATION, func(r *packet.Reader) { HandleUserLocation(r, deps) })
	reg.Register(packet.S_OPCODE_TIME_OF_DAY, func(r *packet.Reader) { HandleTimeOfDay(r, deps) })

	reg.Register(packet.S_OPCODE_OBJECT_PLAYER, func(r *packet.Reader) { HandleObjectAppear(r, deps, world.KindPlayer) })
	reg.Register(packet.S_OPCODE_OBJECT_MONSTER, func(r *packet.Reader) { HandleObjectAppear(r, deps, world.KindMonster) })
	reg.Register(packet.S_OPCODE_OBJECT_MERCHANT, func(r *packet.Reader) { HandleObjectAppear(r, deps, world.KindMerchant) })
	reg.Register(packet.S_OPCODE_OBJECT_ITEM, func(r *packet.Reader) { HandleGroundAppear(r, deps, world.KindItem) })
	reg.Register(packet.S_OPCODE_OBJECT_GOLD, func(r *packet.Reader) { HandleGroundAppear(r, deps, world.KindGold) })
	reg.Register(packet.S_OPCODE_OBJECT_TURN, func(r *packet.Reader) { HandleObjectTurn(r, deps) })
	reg.Register(packet.S_OPCODE_OBJECT_WALK, func(r *packet.Reader) { HandleObjectMove(r, deps) })
	reg.Register(packet.S_OPCODE_OBJECT_RUN, func(r *packet.Reader) { HandleObjectMove(r, deps) })
	reg.Register(packet.S_OPCODE_OBJECT_REMOVE, func(r *packet.Reader) { HandleObjectRemove(r, deps) })
	reg.Register(packet.S_OPCODE_OBJECT_DIED, func(r *packet.Reader) { HandleObjectDied(r, deps) })
	reg.Register(packet.S_OPCODE_OBJECT_REVIVED, func(r *packet.Reader) { HandleObjectRevived(r, deps) })
	reg.Register(packet.S_OPCODE_OBJECT_HARVESTED, func(r *packet.Reader) { HandleObjectHarvested(r, deps) })

	reg.Register(packet.S_OPCODE_WALK_ACK, func(r *packet.Reader) { HandleMoveAck(r, deps, false) })
	reg.Register(packet.S_OPCODE_RUN_ACK, func(r *packet.Reader) { HandleMoveAck(r, deps, true) })

	reg.Register(packet.S_OPCODE_STRUCK, func(r *packet.Reader) { HandleStruck(r, deps) })
	reg.Register(packet.S_OPCODE_OBJECT_STRUCK, func(r *packet.Reader) { HandleObjectStruck(r, deps) })
	reg.Register(packet.S_OPCODE_DAMAGE_INDICATOR, func(r *packet.Reader) { HandleDamageIndicator(r, deps) })
	reg.Register(packet.S_OPCODE_DEATH, func(r *packet.Reader) { HandleDeath(r, deps) })

	reg.Register(packet.S_OPCODE_ITEM_GAINED, func(r *packet.Reader) { HandleItemGained(r, deps) })
	reg.Register(packet.S_OPCODE_ITEM_USED, func(r *packet.Reader) { HandleItemUsed(r, deps) })
	reg.Register(packet.S_OPCODE_ITEM_MOVED, func(r *packet.Reader) { HandleItemMoved(r, deps) })
	reg.Register(packet.S_OPCODE_ITEM_EQUIPPED, func(r *packet.Reader) { HandleItemEquipped(r, deps) })
	reg.Register(packet.S_OPCODE_ITEM_REMOVED, func(r *packet.Reader) { HandleItemRemoved(r, deps) })
	reg.Register(packet.S_OPCODE_ITEM_DROPPED, func(r *packet.Reader) { HandleItemConsumed(r, deps) })
	reg.Register(packet.S_OPCODE_ITEM_DELETED, func(r *packet.Reader) { HandleItemConsumed(r, deps) })
	reg.Register(packet.S_OPCODE_ITEM_REFRESHED, func(r *packet.Reader) { HandleItemRefreshed(r, deps) })
	reg.Register(packet.S_OPCODE_ITEM_CATALOG, func(r *packet.Reader) { HandleItemCatalog(r, deps) })

	reg.Register(packet.S_OPCODE_GOLD_GAINED, func(r *packet.Reader) { HandleGold(r, deps, 1) })
	reg.Register(packet.S_OPCODE_GOLD_LOST, func(r *packet.Reader) { HandleGold(r, deps, -1) })
	reg.Register(packet.S_OPCODE_EXP, func(r *packet.Reader) { HandleExp(r, deps) })
	reg.Register(packet.S_OPCODE_LEVEL, func(r *packet.Reader) { HandleLevel(r, deps) })

	reg.Register(packet.S_OPCODE_CHAT, func(r *packet.Reader) { HandleChat(r, deps) })
	reg.Register(packet.S_OPCODE_WHISPER, func(r *packet.Reader) { HandleWhisper(r, deps) })

	reg.Register(packet.S_OPCODE_NPC_RESPONSE, func(r *packet.Reader) { HandleNpcResponse(r, deps) })
	reg.Register(packet.S_OPCODE_NPC_GOODS, func(r *packet.Reader) { HandleNpcGoods(r, deps, false) })
	reg.Register(packet.S_OPCODE_NPC_PREMIUM_GOODS, func(r *packet.Reader) { HandleNpcGoods(r, deps, true) })
	reg.Register(packet.S_OPCODE_NPC_PREMIUM_GOODS2, func(r *packet.Reader) { HandleNpcGoods(r, deps, true) })
	reg.Register(packet.S_OPCODE_SELL_ACK, func(r *packet.Reader) { HandleTradeAck(r, deps, "sell") })
	reg.Register(packet.S_OPCODE_REPAIR_ACK, func(r *packet.Reader) { HandleTradeAck(r, deps, "repair") })
	reg.Register(packet.S_OPCODE_SPECIAL_REPAIR_ACK, func(r *packet.Reader) { HandleTradeAck(r, deps, "special-repair") })
	reg.Register(packet.S_OPCODE_SELL_RESULT, func(r *packet.Reader) { HandleCheckResult(r, deps) })
	reg.Register(packet.S_OPCODE_REPAIR_RESULT, func(r *packet.Reader) { HandleCheckResult(r, deps) })

	reg.Register(packet.S_OPCODE_KEEPALIVE, func(r *packet.Reader) { HandleKeepalive(r, deps) })
}
