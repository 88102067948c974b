package ordering

import "github.com/kagechess/kage/position"

// Killers holds two killer-move slots per search-stack ply.
type Killers struct {
	slots [][2]position.Move
}

func NewKillers(stackSize int) *Killers {
	return &Killers{slots: make([][2]position.Move, stackSize)}
}

func (k *Killers) At(height int) (killer1, killer2 position.Move) {
	return k.slots[height][0], k.slots[height][1]
}

func (k *Killers) Update(height int, m position.Move) {
	if k.slots[height][0] != m {
		k.slots[height][1] = k.slots[height][0]
		k.slots[height][0] = m
	}
}

func (k *Killers) ClearChild(height int) {
	if height < len(k.slots) {
		k.slots[height] = [2]position.Move{}
	}
}
