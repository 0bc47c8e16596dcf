package npc

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m2bot/client/internal/correlate"
	"github.com/m2bot/client/internal/data"
	"github.com/m2bot/client/internal/memory"
	"github.com/m2bot/client/internal/net/packet"
	"github.com/m2bot/client/internal/world"
	"go.uber.org/zap"
)

// RefusalMark is the fixed substring by which a merchant refuses a sell or
// repair in free chat text instead of a structured reply.
const RefusalMark = "cannot accept"

// Sender sends one outbound command (satisfied by *net.Conn).
type Sender interface {
	Send(w *packet.Writer)
}

// Config holds the engine's timing and budget knobs.
type Config struct {
	OpenTimeout   time.Duration // wait for the first menu page
	Debounce      time.Duration // quiet window collapsing page bursts
	ProbeTimeout  time.Duration // wait for one keyed sell/repair outcome
	DialogCeiling time.Duration // watchdog force-close threshold
	GoldReserve   int           // gold never spent on purchases
}

// DefaultConfig mirrors the tuned values of the reference deployment.
func DefaultConfig() Config {
	return Config{
		OpenTimeout:   4 * time.Second,
		Debounce:      300 * time.Millisecond,
		ProbeTimeout:  5 * time.Second,
		DialogCeiling: 10 * time.Second,
		GoldReserve:   1000,
	}
}

// CheckResult is the outcome of one keyed sell/repair check.
type CheckResult struct {
	Accepted bool
	ViaChat  bool // refused by free-text line rather than structured reply
}

// GoodsItem is one line of a merchant goods listing.
type GoodsItem struct {
	Index int32 // server-side order index, echoed back on buy
	DefID int32
	Name  string
	Price int
}

// GoodsList is a full goods listing reply.
type GoodsList struct {
	NpcID   int32
	Premium bool
	Items   []GoodsItem
}

type queuedNpc struct {
	objID int32
	name  string
	x, y  uint16
}

// session is the single active dialog. At most one exists at a time.
type session struct {
	npc      queuedNpc
	entry    *memory.NpcEntry
	openedAt time.Time
	ctx      context.Context
	cancel   context.CancelFunc
	page     *correlate.Burst[*DialogPage]
	goods    *correlate.Slot[*GoodsList]

	// specialRepair is set when the menu offered only the special repair
	// key, so the probes use the matching command.
	specialRepair bool
}

// Engine sequences NPC dialogs: it opens one dialog at a time, classifies
// the menu, probes unknown sell/repair categories, and evaluates
// autonomous purchases. NPCs sighted while a dialog is open are queued,
// never dropped.
type Engine struct {
	conn    Sender
	model   *world.Model
	catalog *data.Catalog
	cache   *memory.NpcCache
	advisor Advisor
	cfg     Config
	log     *zap.Logger

	suppressed atomic.Bool

	mu     sync.Mutex
	queue  []queuedNpc
	queued map[int32]bool
	cur    *session
	wake   chan struct{}

	checks *correlate.Keyed[int32, CheckResult]
}

func NewEngine(conn Sender, model *world.Model, catalog *data.Catalog,
	cache *memory.NpcCache, advisor Advisor, cfg Config, log *zap.Logger) *Engine {
	if advisor == nil {
		advisor = NoAdvisor{}
	}
	return &Engine{
		conn:    conn,
		model:   model,
		catalog: catalog,
		cache:   cache,
		advisor: advisor,
		cfg:     cfg,
		log:     log.Named("npc"),
		queued:  make(map[int32]bool),
		wake:    make(chan struct{}, 1),
		checks:  correlate.NewKeyed[int32, CheckResult](),
	}
}

// SetSuppressed toggles global interaction suppression.
func (e *Engine) SetSuppressed(v bool) {
	e.suppressed.Store(v)
}

// DialogOpen reports whether a dialog is currently open.
func (e *Engine) DialogOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cur != nil
}

// QueueLen returns the number of NPCs waiting for a dialog.
func (e *Engine) QueueLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// PendingChecks returns the number of outstanding keyed checks.
func (e *Engine) PendingChecks() int {
	return e.checks.Len()
}

// carriedCategories snapshots the distinct catalog categories across bag
// and worn slots.
func (e *Engine) carriedCategories() []string {
	p := e.model.Player
	p.Lock()
	defer p.Unlock()
	seen := make(map[string]bool)
	var cats []string
	for _, c := range append(p.Inv.Categories(), p.Equip.Categories()...) {
		if !seen[c] {
			seen[c] = true
			cats = append(cats, c)
		}
	}
	return cats
}

// Sighted registers an NPC sighting. The NPC is queued for a dialog
// unless interaction is suppressed, it is already queued or active, or
// its cached entry says a dialog can teach us nothing.
func (e *Engine) Sighted(objID int32, name, mapFile string, x, y uint16) {
	if e.suppressed.Load() {
		return
	}
	entry := e.cache.Get(name, mapFile, x, y)
	if !entry.NeedsInteraction(e.carriedCategories()) {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.queued[objID] || (e.cur != nil && e.cur.npc.objID == objID) {
		return
	}
	e.queue = append(e.queue, queuedNpc{objID: objID, name: name, x: x, y: y})
	e.queued[objID] = true
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// DeliverPage feeds one menu page from the receive path into the current
// dialog's debounced slot. Pages with no dialog open are strays and are
// dropped.
func (e *Engine) DeliverPage(page *DialogPage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cur == nil {
		return
	}
	e.cur.page.Offer(page)
}

// DeliverGoods feeds a goods listing into the current buy probe, if one
// is waiting. Unsolicited listings (including buy-back replies) have no
// waiting slot and are discarded.
func (e *Engine) DeliverGoods(list *GoodsList) {
	e.mu.Lock()
	slot := (*correlate.Slot[*GoodsList])(nil)
	if e.cur != nil {
		slot = e.cur.goods
	}
	e.mu.Unlock()
	if slot == nil {
		e.log.Debug("goods listing with no pending buy probe",
			zap.Int32("npc", list.NpcID), zap.Bool("premium", list.Premium))
		return
	}
	slot.Complete(list)
}

// DeliverCheck completes the keyed check for an item's structured
// sell/repair outcome.
func (e *Engine) DeliverCheck(itemUID int32, accepted bool) {
	e.checks.Complete(itemUID, CheckResult{Accepted: accepted})
}

// NoteChatLine inspects a chat line for the free-text refusal marker and,
// on a match, resolves the oldest outstanding keyed check as refused.
func (e *Engine) NoteChatLine(line string) {
	if !containsRefusal(line) {
		return
	}
	if key, ok := e.checks.CompleteOldest(CheckResult{Accepted: false, ViaChat: true}); ok {
		e.log.Debug("chat refusal attributed to oldest pending check",
			zap.Int32("item_uid", key))
	}
}

// containsRefusal matches the marker case-insensitively; it is plain
// ASCII, so a simple fold suffices.
func containsRefusal(line string) bool {
	return strings.Contains(strings.ToLower(line), RefusalMark)
}

// Run is the engine's sequencing loop: it drains the NPC queue one dialog
// at a time until ctx ends.
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.wake:
		}
		for {
			q, ok := e.pop()
			if !ok {
				break
			}
			e.interact(ctx, q)
			if ctx.Err() != nil {
				return
			}
		}
	}
}

func (e *Engine) pop() (queuedNpc, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return queuedNpc{}, false
	}
	q := e.queue[0]
	e.queue = e.queue[1:]
	delete(e.queued, q.objID)
	return q, true
}

// interact runs one full dialog: open, classify, probe, close.
func (e *Engine) interact(ctx context.Context, q queuedNpc) {
	p := e.model.Player
	p.Lock()
	mapFile := p.MapFile
	p.Unlock()

	entry := e.cache.Get(q.name, mapFile, q.x, q.y)

	sessCtx, cancel := context.WithCancel(ctx)
	s := &session{
		npc:      q,
		entry:    entry,
		openedAt: time.Now(),
		ctx:      sessCtx,
		cancel:   cancel,
		page:     correlate.NewBurst[*DialogPage](),
	}
	e.mu.Lock()
	e.cur = s
	e.mu.Unlock()
	defer func() {
		cancel()
		e.mu.Lock()
		e.cur = nil
		e.mu.Unlock()
		e.conn.Send(callNpc(q.objID, KeyExit))
	}()

	e.conn.Send(callNpc(q.objID, KeyMain))
	page, ok := s.page.AwaitLast(sessCtx, e.cfg.OpenTimeout, e.cfg.Debounce)
	if !ok {
		e.log.Debug("npc menu timed out", zap.String("name", q.name), zap.Int32("obj", q.objID))
		return
	}

	e.classify(entry, page)
	s.specialRepair = page.HasKey(KeySpecialRepair) && !page.HasKey(KeyRepair)

	for _, step := range e.buildSteps(s) {
		if sessCtx.Err() != nil {
			return
		}
		step()
	}
}

// classify scans the page buttons against the fixed capability key sets
// and persists first-time learning immediately.
func (e *Engine) classify(entry *memory.NpcEntry, page *DialogPage) {
	canBuy := page.HasKey(KeyBuy)
	canSell := page.HasKey(KeySell)
	canRepair := page.HasKey(KeyRepair) || page.HasKey(KeySpecialRepair)
	if page.HasKey(KeyBuyBack) {
		// Dead end: recognized so its reply is never mistaken for goods,
		// but never probed.
		e.log.Debug("buy-back offered, ignoring", zap.String("npc", entry.Name))
	}

	if entry.Classify(canBuy, canSell, canRepair) {
		e.persist()
	}
}

// buildSteps assembles the bounded follow-up queue: one buy probe if the
// goods list is unfetched, then one sell probe per unseen category in the
// bag, then one repair probe per unseen category carried or worn.
func (e *Engine) buildSteps(s *session) []func() {
	var steps []func()
	_, sell, repair := s.entry.Capabilities()
	if s.entry.NeedsGoods() {
		steps = append(steps, func() { e.probeBuy(s) })
	}
	if sell {
		p := e.model.Player
		p.Lock()
		bagCats := p.Inv.Categories()
		p.Unlock()
		for _, cat := range s.entry.UnseenSell(bagCats) {
			cat := cat
			steps = append(steps, func() { e.probeSell(s, cat) })
		}
	}
	if repair {
		for _, cat := range s.entry.UnseenRepair(e.repairableCategories()) {
			cat := cat
			steps = append(steps, func() { e.probeRepair(s, cat) })
		}
	}
	return steps
}

// repairableCategories lists carried categories that are durable
// equipment (have a wearable slot).
func (e *Engine) repairableCategories() []string {
	var out []string
	for _, cat := range e.carriedCategories() {
		if cat == data.CategoryTorch {
			continue
		}
		if world.SlotsForCategory(cat) != nil {
			out = append(out, cat)
		}
	}
	return out
}

// probeSell attempts to sell a single unit of one never-before-seen
// category and records the observed accept/reject outcome. A timeout is
// "no answer": the category stays unknown.
func (e *Engine) probeSell(s *session, category string) {
	p := e.model.Player
	p.Lock()
	it := p.Inv.FirstOfCategory(category)
	p.Unlock()
	if it == nil {
		return
	}
	slot := e.checks.Issue(it.UID)
	defer e.checks.Drop(it.UID)

	e.conn.Send(sellItem(s.npc.objID, it.UID, 1))
	res, ok := slot.Await(s.ctx, e.cfg.ProbeTimeout)
	if !ok {
		e.log.Debug("sell probe unanswered",
			zap.String("npc", s.npc.name), zap.String("category", category))
		return
	}
	if s.entry.RecordSell(category, res.Accepted) {
		e.persist()
	}
	e.log.Info("sell capability learned",
		zap.String("npc", s.npc.name),
		zap.String("category", category),
		zap.Bool("accepted", res.Accepted),
		zap.Bool("via_chat", res.ViaChat))
}

// probeRepair attempts a repair for one unseen category. An item worn in
// an equipment slot is temporarily removed first and re-equipped on every
// exit path, success or not.
func (e *Engine) probeRepair(s *session, category string) {
	p := e.model.Player
	p.Lock()
	var it *world.Item
	wasEquipped := false
	for _, slot := range p.Equip.ScanSlots() {
		if worn := p.Equip.Get(slot); worn != nil && worn.Category() == category {
			it = worn
			wasEquipped = true
			break
		}
	}
	if it == nil {
		it = p.Inv.FirstOfCategory(category)
	}
	p.Unlock()
	if it == nil {
		return
	}

	if wasEquipped {
		e.conn.Send(removeItem(it.UID))
		defer e.conn.Send(equipItem(it.UID))
	}

	slot := e.checks.Issue(it.UID)
	defer e.checks.Drop(it.UID)

	if s.specialRepair {
		e.conn.Send(specialRepairItem(s.npc.objID, it.UID))
	} else {
		e.conn.Send(repairItem(s.npc.objID, it.UID))
	}
	res, ok := slot.Await(s.ctx, e.cfg.ProbeTimeout)
	if !ok {
		e.log.Debug("repair probe unanswered",
			zap.String("npc", s.npc.name), zap.String("category", category))
		return
	}
	if s.entry.RecordRepair(category, res.Accepted) {
		e.persist()
	}
	e.log.Info("repair capability learned",
		zap.String("npc", s.npc.name),
		zap.String("category", category),
		zap.Bool("accepted", res.Accepted))
}

// probeBuy fetches the goods list once and immediately evaluates the
// standing purchase rules against it.
func (e *Engine) probeBuy(s *session) {
	goods := correlate.NewSlot[*GoodsList]()
	e.mu.Lock()
	s.goods = goods
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		s.goods = nil
		e.mu.Unlock()
	}()

	e.conn.Send(callNpc(s.npc.objID, KeyBuy))
	list, ok := goods.Await(s.ctx, e.cfg.ProbeTimeout)
	if !ok {
		e.log.Debug("goods listing unanswered", zap.String("npc", s.npc.name))
		return
	}
	if s.entry.MarkGoodsSeen() {
		e.persist()
	}
	e.evaluatePurchases(s, list)
}

func (e *Engine) persist() {
	e.cache.MarkDirty()
	if err := e.cache.Flush(); err != nil {
		e.log.Warn("npc cache flush failed", zap.Error(err))
	}
}
