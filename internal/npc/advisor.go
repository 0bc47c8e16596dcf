package npc

import "github.com/m2bot/client/internal/data"

// DesiredItem is one standing purchase rule supplied by the decision
// logic: keep Count units on hand, or keep WeightFrac of the bag-weight
// ceiling invested in this item (whichever field is set).
type DesiredItem struct {
	Name       string
	Count      int
	WeightFrac float64
}

// Advisor is the narrow contract to the decision logic ("the AI"). The
// engine consults it at the moment a goods list arrives. A nil or empty
// rule set means "no desires": probing and equipment-upgrade buying still
// run, only quantity-target buying is skipped.
type Advisor interface {
	// DesiredItems returns the standing purchase rules.
	DesiredItems() []DesiredItem
	// ScoreItem rates a definition's worth as equipment for the current
	// character. Higher is better; <= 0 means not usable/wanted.
	ScoreItem(def *data.ItemDef) float64
}

// NoAdvisor is the conservative default: no desires, nothing scored.
type NoAdvisor struct{}

func (NoAdvisor) DesiredItems() []DesiredItem     { return nil }
func (NoAdvisor) ScoreItem(*data.ItemDef) float64 { return 0 }
