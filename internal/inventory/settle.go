package inventory

// SettleGate turns the host's change notifications into a single "contents
// are final" signal for one container open.
//
// The host fires two notifications per slot write: one when the slot is
// cleared and one when it is populated. Slots fill in index order, so once
// more than watermark*2 notifications have arrived and the watermark slot
// holds an item, every slot a rule can look at has been written.
type SettleGate struct {
	watermark int
	triggers  int
	settled   bool
	cancelled bool
	onSettle  func()
	detach    func()
}

// NewSettleGate returns a gate for the given watermark slot. Negative
// watermarks are treated as slot 0.
func NewSettleGate(watermark int, onSettle func()) *SettleGate {
	if watermark < 0 {
		watermark = 0
	}
	return &SettleGate{watermark: watermark, onSettle: onSettle}
}

// Attach subscribes the gate to src and reads the watermark slot from snap on
// every notification. The subscription is dropped once the gate settles or is
// cancelled.
func (g *SettleGate) Attach(src Source, snap Snapshot) {
	if g.done() {
		return
	}
	g.detach = src.Subscribe(func() {
		g.OnSlotChanged(snap.Slot(g.watermark))
	})
}

// OnSlotChanged records one raw notification. atWatermark is the current
// content of the watermark slot. It reports whether this call settled the gate.
func (g *SettleGate) OnSlotChanged(atWatermark Item) bool {
	if g.done() {
		return false
	}
	g.triggers++
	if g.triggers <= g.watermark*2 || atWatermark.Empty() {
		return false
	}

	g.settled = true
	g.release()
	if g.onSettle != nil {
		g.onSettle()
	}
	return true
}

// Cancel discards the gate without firing, for when the menu closes first.
func (g *SettleGate) Cancel() {
	if g.done() {
		return
	}
	g.cancelled = true
	g.release()
}

func (g *SettleGate) Settled() bool { return g.settled }

func (g *SettleGate) Cancelled() bool { return g.cancelled }

func (g *SettleGate) Watermark() int { return g.watermark }

// Triggers returns how many notifications were counted before the gate closed.
func (g *SettleGate) Triggers() int { return g.triggers }

func (g *SettleGate) done() bool {
	return g == nil || g.settled || g.cancelled
}

func (g *SettleGate) release() {
	if g.detach != nil {
		g.detach()
		g.detach = nil
	}
}
