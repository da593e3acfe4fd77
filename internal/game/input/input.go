// Package input defines the ability input bindings of a MOBA-style layout.
package input

import "fmt"

// AbilityInputID binds an input action to an ability slot.
type AbilityInputID int32

const (
	None AbilityInputID = iota

	Skill1 // Q
	Skill2 // W
	Skill3 // E
	Skill4 // D
	Skill5 // F
	Skill6 // R

	Item1 // 1
	Item2 // 2
	Item3 // 3
	Item4 // 4
	Item5 // 5
	Item6 // 6
	Item7 // T
	Item8 // V

	Confirm
	Cancel
)

var names = [...]string{
	None:    "None",
	Skill1:  "Skill1",
	Skill2:  "Skill2",
	Skill3:  "Skill3",
	Skill4:  "Skill4",
	Skill5:  "Skill5",
	Skill6:  "Skill6",
	Item1:   "Item1",
	Item2:   "Item2",
	Item3:   "Item3",
	Item4:   "Item4",
	Item5:   "Item5",
	Item6:   "Item6",
	Item7:   "Item7",
	Item8:   "Item8",
	Confirm: "Confirm",
	Cancel:  "Cancel",
}

func (id AbilityInputID) String() string {
	if id >= 0 && int(id) < len(names) {
		return names[id]
	}
	return fmt.Sprintf("AbilityInputID(%d)", int32(id))
}

// ForSlot returns the input bound to ability slot n (0-based). Slots past
// the last item key get None.
func ForSlot(n int) AbilityInputID {
	id := AbilityInputID(n + 1)
	if n < 0 || id >= Confirm {
		return None
	}
	return id
}

// IsAbility returns true for skill and item bindings.
func (id AbilityInputID) IsAbility() bool {
	return id >= Skill1 && id <= Item8
}

// Parse converts a binding name into an AbilityInputID.
func Parse(s string) (AbilityInputID, error) {
	for i, name := range names {
		if name == s {
			return AbilityInputID(i), nil
		}
	}
	return None, fmt.Errorf("unknown ability input %q", s)
}
