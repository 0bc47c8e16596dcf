package npc

import "testing"

func TestParsePageExtractsButtons(t *testing.T) {
	page := ParsePage(7, []string{
		"Welcome to my shop.",
		"<Buy/@buy> <Sell/@sell>",
		"<Repair gear/@repair>",
	})
	if page.NpcID != 7 {
		t.Fatalf("NpcID = %d, want 7", page.NpcID)
	}
	if len(page.Buttons) != 3 {
		t.Fatalf("Buttons = %d, want 3", len(page.Buttons))
	}
	if !page.HasKey(KeyBuy) || !page.HasKey(KeySell) || !page.HasKey(KeyRepair) {
		t.Fatalf("missing expected keys in %+v", page.Buttons)
	}
	if page.Buttons[2].Label != "Repair gear" {
		t.Fatalf("label = %q, want %q", page.Buttons[2].Label, "Repair gear")
	}
}

func TestParsePageIgnoresNonButtonBrackets(t *testing.T) {
	page := ParsePage(1, []string{
		"<plain text>",
		"<no key marker/plain>",
		"unbalanced < bracket",
	})
	if len(page.Buttons) != 0 {
		t.Fatalf("Buttons = %+v, want none", page.Buttons)
	}
	if len(page.Lines) != 3 {
		t.Fatalf("Lines = %d, want 3 (text is kept)", len(page.Lines))
	}
}

func TestParsePageSpecialRepairAndBuyBack(t *testing.T) {
	page := ParsePage(2, []string{"<Special/@s_repair> <Buy back/@buyback>"})
	if !page.HasKey(KeySpecialRepair) {
		t.Fatalf("special repair key not parsed")
	}
	if !page.HasKey(KeyBuyBack) {
		t.Fatalf("buy-back key not parsed")
	}
	if page.HasKey(KeyBuy) {
		t.Fatalf("@buyback must not satisfy @buy")
	}
}

func TestContainsRefusalIsCaseInsensitive(t *testing.T) {
	if !containsRefusal("I Cannot Accept such an item.") {
		t.Fatalf("case-folded marker not matched")
	}
	if containsRefusal("welcome, traveler") {
		t.Fatalf("false positive on plain chat")
	}
	if containsRefusal("") {
		t.Fatalf("empty line matched")
	}
}
