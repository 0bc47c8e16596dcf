package handler

import (
	"github.com/m2bot/client/internal/net/packet"
	"github.com/m2bot/client/internal/npc"
	"go.uber.org/zap"
)

// HandleNpcResponse parses one dialog page and feeds it to the
// interaction engine's debounced slot. Multi-message menus arrive as a
// burst of these; the engine acts on the last.
func HandleNpcResponse(r *packet.Reader, d *Deps) {
	npcID := r.ReadD()
	count := int(r.ReadC())
	lines := make([]string, 0, count)
	for i := 0; i < count; i++ {
		lines = append(lines, r.ReadS())
	}
	d.Engine.DeliverPage(npc.ParsePage(npcID, lines))
}

// HandleNpcGoods decodes a goods listing. The two premium variants share
// the layout and differ only in currency presentation.
func HandleNpcGoods(r *packet.Reader, d *Deps, premium bool) {
	list := &npc.GoodsList{
		NpcID:   r.ReadD(),
		Premium: premium,
	}
	count := int(r.ReadH())
	for i := 0; i < count; i++ {
		list.Items = append(list.Items, npc.GoodsItem{
			Index: r.ReadD(),
			DefID: r.ReadD(),
			Name:  r.ReadS(),
			Price: int(r.ReadD()),
		})
	}
	d.Engine.DeliverGoods(list)
}

// HandleTradeAck is the informational dialog acknowledgement preceding a
// structured result; it carries no outcome.
func HandleTradeAck(r *packet.Reader, d *Deps, kind string) {
	uid := r.ReadD()
	d.Log.Debug("trade acknowledged", zap.String("kind", kind), zap.Int32("item_uid", uid))
}

// HandleCheckResult resolves the keyed sell/repair check for an item.
func HandleCheckResult(r *packet.Reader, d *Deps) {
	uid := r.ReadD()
	accepted := r.ReadC() != 0
	d.Engine.DeliverCheck(uid, accepted)
}
