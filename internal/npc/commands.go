package npc

import "github.com/m2bot/client/internal/net/packet"

// Outbound command builders for the dialog flow. The menu key goes out as
// a bracketed token, matching the button syntax of the reply pages.

func callNpc(objID int32, key string) *packet.Writer {
	w := packet.NewWriter(packet.C_OPCODE_CALL_NPC)
	w.WriteD(objID)
	w.WriteS("<" + key + ">")
	return w
}

func sellItem(npcID, itemUID int32, count uint16) *packet.Writer {
	w := packet.NewWriter(packet.C_OPCODE_SELL_ITEM)
	w.WriteD(npcID)
	w.WriteD(itemUID)
	w.WriteH(count)
	return w
}

func repairItem(npcID, itemUID int32) *packet.Writer {
	w := packet.NewWriter(packet.C_OPCODE_REPAIR_ITEM)
	w.WriteD(npcID)
	w.WriteD(itemUID)
	return w
}

func specialRepairItem(npcID, itemUID int32) *packet.Writer {
	w := packet.NewWriter(packet.C_OPCODE_SPECIAL_REPAIR)
	w.WriteD(npcID)
	w.WriteD(itemUID)
	return w
}

func buyItem(npcID, index int32, count uint16) *packet.Writer {
	w := packet.NewWriter(packet.C_OPCODE_BUY_ITEM)
	w.WriteD(npcID)
	w.WriteD(index)
	w.WriteH(count)
	return w
}

func removeItem(itemUID int32) *packet.Writer {
	w := packet.NewWriter(packet.C_OPCODE_REMOVE_ITEM)
	w.WriteD(itemUID)
	return w
}

func equipItem(itemUID int32) *packet.Writer {
	w := packet.NewWriter(packet.C_OPCODE_EQUIP_ITEM)
	w.WriteD(itemUID)
	return w
}
