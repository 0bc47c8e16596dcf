package npc

import "strings"

// Menu keys the client understands. CallNpc sends a key as a bracketed
// token; the server's reply pages embed the selectable keys in the same
// syntax.
const (
	KeyMain          = "@main"
	KeyExit          = "@exit"
	KeyBuy           = "@buy"
	KeySell          = "@sell"
	KeyRepair        = "@repair"
	KeySpecialRepair = "@s_repair"
	// KeyBuyBack is a dead end: its reply looks like a goods listing but
	// describes the player's own sold-back items, so it must never be
	// probed or interpreted as merchant goods.
	KeyBuyBack = "@buyback"
)

// Button is one selectable (label, key) pair on a dialog page.
type Button struct {
	Label string
	Key   string
}

// DialogPage is the text and button content of one NPC menu screen.
type DialogPage struct {
	NpcID   int32
	Lines   []string
	Buttons []Button
}

// HasKey reports whether the page offers the given menu key.
func (p *DialogPage) HasKey(key string) bool {
	for _, b := range p.Buttons {
		if b.Key == key {
			return true
		}
	}
	return false
}

// ParsePage derives a DialogPage from raw reply lines by scanning for the
// bracketed button syntax `<label/@key>`. Text outside buttons is kept as
// plain lines.
func ParsePage(npcID int32, raw []string) *DialogPage {
	page := &DialogPage{NpcID: npcID}
	for _, line := range raw {
		page.Lines = append(page.Lines, line)
		rest := line
		for {
			open := strings.IndexByte(rest, '<')
			if open < 0 {
				break
			}
			close := strings.IndexByte(rest[open:], '>')
			if close < 0 {
				break
			}
			body := rest[open+1 : open+close]
			rest = rest[open+close+1:]
			slash := strings.LastIndexByte(body, '/')
			if slash < 0 {
				continue
			}
			key := strings.TrimSpace(body[slash+1:])
			if !strings.HasPrefix(key, "@") {
				continue
			}
			page.Buttons = append(page.Buttons, Button{
				Label: strings.TrimSpace(body[:slash]),
				Key:   key,
			})
		}
	}
	return page
}
