package packet

// Client → server opcodes.
const (
	C_OPCODE_VERSION        byte = 1
	C_OPCODE_LOGIN          byte = 2
	C_OPCODE_NEW_ACCOUNT    byte = 3
	C_OPCODE_NEW_CHARACTER  byte = 4
	C_OPCODE_START_GAME     byte = 5
	C_OPCODE_WALK           byte = 10
	C_OPCODE_RUN            byte = 11
	C_OPCODE_TURN           byte = 12
	C_OPCODE_ATTACK         byte = 13
	C_OPCODE_OPEN_DOOR      byte = 14
	C_OPCODE_PICKUP         byte = 15
	C_OPCODE_HARVEST        byte = 16
	C_OPCODE_USE_ITEM       byte = 20
	C_OPCODE_DROP_ITEM      byte = 21
	C_OPCODE_EQUIP_ITEM     byte = 22
	C_OPCODE_REMOVE_ITEM    byte = 23
	C_OPCODE_CALL_NPC       byte = 30
	C_OPCODE_SELL_ITEM      byte = 31
	C_OPCODE_REPAIR_ITEM    byte = 32
	C_OPCODE_SPECIAL_REPAIR byte = 33
	C_OPCODE_BUY_ITEM       byte = 34
	C_OPCODE_CHAT           byte = 40
	C_OPCODE_WHISPER        byte = 41
	C_OPCODE_KEEPALIVE      byte = 50
	C_OPCODE_DISCONNECT     byte = 51
)

// Server → client opcodes.
const (
	S_OPCODE_LOGIN_RESULT       byte = 1
	S_OPCODE_NEW_ACCOUNT_RESULT byte = 2
	S_OPCODE_CHAR_LIST          byte = 3
	S_OPCODE_CHAR_CREATE_RESULT byte = 4
	S_OPCODE_START_GAME         byte = 5
	S_OPCODE_START_GAME_BANNED  byte = 6
	S_OPCODE_START_GAME_DELAY   byte = 7

	S_OPCODE_MAP_INFO      byte = 10
	S_OPCODE_MAP_CHANGED   byte = 11
	S_OPCODE_TELEPORT_OUT  byte = 12
	S_OPCODE_TELEPORT_IN   byte = 13
	S_OPCODE_USER_INFO     byte = 14
	S_OPCODE_USER_LOCATION byte = 15
	S_OPCODE_TIME_OF_DAY   byte = 16

	S_OPCODE_OBJECT_PLAYER    byte = 20
	S_OPCODE_OBJECT_MONSTER   byte = 21
	S_OPCODE_OBJECT_MERCHANT  byte = 22
	S_OPCODE_OBJECT_ITEM      byte = 23
	S_OPCODE_OBJECT_GOLD      byte = 24
	S_OPCODE_OBJECT_TURN      byte = 25
	S_OPCODE_OBJECT_WALK      byte = 26
	S_OPCODE_OBJECT_RUN       byte = 27
	S_OPCODE_OBJECT_REMOVE    byte = 28
	S_OPCODE_OBJECT_DIED      byte = 29
	S_OPCODE_OBJECT_REVIVED   byte = 30
	S_OPCODE_OBJECT_HARVESTED byte = 31

	S_OPCODE_WALK_ACK byte = 32
	S_OPCODE_RUN_ACK  byte = 33

	S_OPCODE_STRUCK           byte = 35
	S_OPCODE_OBJECT_STRUCK    byte = 36
	S_OPCODE_DAMAGE_INDICATOR byte = 37
	S_OPCODE_DEATH            byte = 38

	S_OPCODE_ITEM_GAINED    byte = 40
	S_OPCODE_ITEM_USED      byte = 41
	S_OPCODE_ITEM_MOVED     byte = 42
	S_OPCODE_ITEM_EQUIPPED  byte = 43
	S_OPCODE_ITEM_REMOVED   byte = 44
	S_OPCODE_ITEM_DROPPED   byte = 45
	S_OPCODE_ITEM_DELETED   byte = 46
	S_OPCODE_ITEM_REFRESHED byte = 47
	S_OPCODE_ITEM_CATALOG   byte = 48

	S_OPCODE_GOLD_GAINED byte = 49
	S_OPCODE_GOLD_LOST   byte = 50
	S_OPCODE_EXP         byte = 51
	S_OPCODE_LEVEL       byte = 52

	S_OPCODE_CHAT    byte = 55
	S_OPCODE_WHISPER byte = 56

	S_OPCODE_NPC_RESPONSE       byte = 60
	S_OPCODE_NPC_GOODS          byte = 61
	S_OPCODE_NPC_PREMIUM_GOODS  byte = 62
	S_OPCODE_NPC_PREMIUM_GOODS2 byte = 63
	S_OPCODE_SELL_ACK           byte = 64
	S_OPCODE_REPAIR_ACK         byte = 65
	S_OPCODE_SPECIAL_REPAIR_ACK byte = 66
	S_OPCODE_SELL_RESULT        byte = 67
	S_OPCODE_REPAIR_RESULT      byte = 68

	S_OPCODE_KEEPALIVE byte = 70
)
