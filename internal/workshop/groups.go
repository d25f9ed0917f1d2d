package workshop

import "github.com/jaki95/set-workshop/internal/domain"

// ResolveGroups derives the ordered source groups from a slot sequence.
// A group is a maximal contiguous run of slots whose sources match by
// type, id and tree type. Empty slots never merge: each one is its own
// length-1 group. Grouping is purely structural, so the result is fully
// re-derivable from any sequence with no hidden state.
func ResolveGroups(slots []*domain.Slot) []domain.SourceGroup {
	groups := make([]domain.SourceGroup, 0, len(slots))
	for i := 0; i < len(slots); {
		group := domain.SourceGroup{
			StartIndex: i,
			Source:     slots[i].Source.Clone(),
			SlotIDs:    []string{slots[i].ID},
		}
		j := i + 1
		if slots[i].Source != nil {
			for j < len(slots) && slots[i].Source.SameGroup(slots[j].Source) {
				group.SlotIDs = append(group.SlotIDs, slots[j].ID)
				j++
			}
		}
		group.Length = j - i
		groups = append(groups, group)
		i = j
	}
	return groups
}
