package home

// KeySlots is the configuration key holding the number of slots shown in the
// homes menu.
const KeySlots = "homes.max-homes-gui-slots"

// DefaultSlots is the number of menu slots used when none is configured.
const DefaultSlots = 7

// SlotKind describes what a menu slot shows.
type SlotKind int

const (
	// SlotOccupied shows an existing home.
	SlotOccupied SlotKind = iota
	// SlotAvailable offers creating a new home.
	SlotAvailable
	// SlotUnavailable is a slot beyond the owner's limit.
	SlotUnavailable
)

// Slot is one entry of the homes menu.
type Slot struct {
	Kind SlotKind
	Home Home
}

// Layout arranges homes into slots menu slots: existing homes first, then
// free slots up to limit, then unavailable slots. Homes beyond the slot count
// are not shown.
func Layout(homes []Home, limit, slots int) []Slot {
	if slots <= 0 {
		return nil
	}
	out := make([]Slot, 0, slots)
	for i := 0; i < slots; i++ {
		switch {
		case i < len(homes):
			out = append(out, Slot{Kind: SlotOccupied, Home: homes[i]})
		case limit == Unlimited || i < limit:
			out = append(out, Slot{Kind: SlotAvailable})
		default:
			out = append(out, Slot{Kind: SlotUnavailable})
		}
	}
	return out
}
