package world

import "github.com/m2bot/client/internal/data"

// Model ties together the client-side world mirror: the local player and
// the tracked-object table (with its occupancy index).
type Model struct {
	Player  *Player
	Objects *Objects
}

func NewModel(classes *data.ClassTable) *Model {
	return &Model{
		Player:  NewPlayer(classes),
		Objects: NewObjects(),
	}
}

// MapChanged bulk-clears per-map state: every tracked object disappears
// and the occupancy index resets.
func (m *Model) MapChanged(file, title string, x, y uint16) {
	m.Objects.Clear()
	m.Player.Lock()
	m.Player.MapFile = file
	m.Player.MapTitle = title
	m.Player.X, m.Player.Y = x, y
	m.Player.Unlock()
}
