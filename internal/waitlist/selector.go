package waitlist

import "sort"

// Candidate pairs an active entry with the role priority of its user. Role
// priority only matters when priority_by_role is enabled.
type Candidate struct {
	Entry        WaitlistEntry
	RolePriority int
}

// SortCandidates orders candidates in the authoritative queue order: role
// priority ascending (lower number first) then created_at ascending when
// byRole is set, pure created_at ascending otherwise. The stored position
// field is advisory and never consulted here; cancellations ahead of a user
// promote them simply because order is re-derived on every advance.
func SortCandidates(candidates []Candidate, byRole bool) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if byRole && candidates[i].RolePriority != candidates[j].RolePriority {
			return candidates[i].RolePriority < candidates[j].RolePriority
		}
		return candidates[i].Entry.CreatedAt.Before(candidates[j].Entry.CreatedAt)
	})
}

// SelectNextCandidate returns the first candidate in authoritative order for
// which skip returns false, or nil when none is eligible. The skip predicate
// carries the per-advance exclusions: users already holding a pending offer
// for the date, and users who previously failed to take this exact spot.
func SelectNextCandidate(candidates []Candidate, byRole bool, skip func(Candidate) bool) *Candidate {
	ordered := make([]Candidate, len(candidates))
	copy(ordered, candidates)
	SortCandidates(ordered, byRole)

	for i := range ordered {
		if skip != nil && skip(ordered[i]) {
			continue
		}
		return &ordered[i]
	}
	return nil
}
