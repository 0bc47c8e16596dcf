package handler

import "github.com/m2bot/client/internal/net/packet"

// Outbound command builders used by the session flow. Dialog-flow commands
// live with the interaction engine; these cover login, equipment, and chat.

func versionCmd(version int32) *packet.Writer {
	w := packet.NewWriter(packet.C_OPCODE_VERSION)
	w.WriteD(version)
	return w
}

func loginCmd(account, password string) *packet.Writer {
	w := packet.NewWriter(packet.C_OPCODE_LOGIN)
	w.WriteS(account)
	w.WriteS(password)
	return w
}

func newAccountCmd(account, password string) *packet.Writer {
	w := packet.NewWriter(packet.C_OPCODE_NEW_ACCOUNT)
	w.WriteS(account)
	w.WriteS(password)
	return w
}

func newCharacterCmd(name string, class, gender byte) *packet.Writer {
	w := packet.NewWriter(packet.C_OPCODE_NEW_CHARACTER)
	w.WriteS(name)
	w.WriteC(class)
	w.WriteC(gender)
	return w
}

func startGameCmd(name string) *packet.Writer {
	w := packet.NewWriter(packet.C_OPCODE_START_GAME)
	w.WriteS(name)
	return w
}

func equipCmd(itemUID int32) *packet.Writer {
	w := packet.NewWriter(packet.C_OPCODE_EQUIP_ITEM)
	w.WriteD(itemUID)
	return w
}

func removeCmd(itemUID int32) *packet.Writer {
	w := packet.NewWriter(packet.C_OPCODE_REMOVE_ITEM)
	w.WriteD(itemUID)
	return w
}

func harvestCmd(objID int32) *packet.Writer {
	w := packet.NewWriter(packet.C_OPCODE_HARVEST)
	w.WriteD(objID)
	return w
}

func whisperCmd(target, text string) *packet.Writer {
	w := packet.NewWriter(packet.C_OPCODE_WHISPER)
	w.WriteS(target)
	w.WriteS(text)
	return w
}
