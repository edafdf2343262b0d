package events

import (
	"slices"

	"eventhub/pkg/models"
)

// Merge folds incoming categories into current. Known categories gain
// only events whose id they do not already hold (first seen wins, current
// events first). New categories are adopted as they are, and categories
// only in current are kept. Neither input is modified.
func Merge(current, incoming models.CategorizedEvents) models.CategorizedEvents {
	out := make(models.CategorizedEvents, len(current)+len(incoming))
	for name, evs := range current {
		out[name] = slices.Clone(evs)
	}

	for name, evs := range incoming {
		existing, ok := out[name]
		if !ok {
			out[name] = slices.Clone(evs)
			continue
		}

		seen := make(map[models.ID]struct{}, len(existing)+len(evs))
		for _, e := range existing {
			seen[e.ID] = struct{}{}
		}
		// an id repeated within incoming is dropped too, not only one
		// already held by current
		for _, e := range evs {
			if _, dup := seen[e.ID]; dup {
				continue
			}
			seen[e.ID] = struct{}{}
			existing = append(existing, e)
		}
		out[name] = existing
	}
	return out
}
