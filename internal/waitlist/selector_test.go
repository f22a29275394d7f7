package waitlist

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func candidateAt(createdAt time.Time, rolePriority int) Candidate {
	return Candidate{
		Entry: WaitlistEntry{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			Status:    EntryStatusActive,
			CreatedAt: createdAt,
		},
		RolePriority: rolePriority,
	}
}

func TestSortCandidatesByCreatedAt(t *testing.T) {
	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	first := candidateAt(base, 3)
	second := candidateAt(base.Add(time.Minute), 1)
	third := candidateAt(base.Add(2*time.Minute), 2)

	candidates := []Candidate{third, first, second}
	SortCandidates(candidates, false)

	// Role priority is ignored when byRole is off
	assert.Equal(t, first.Entry.ID, candidates[0].Entry.ID)
	assert.Equal(t, second.Entry.ID, candidates[1].Entry.ID)
	assert.Equal(t, third.Entry.ID, candidates[2].Entry.ID)
}

func TestSortCandidatesByRole(t *testing.T) {
	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	managerLate := candidateAt(base.Add(time.Hour), 1)
	userEarly := candidateAt(base, 2)
	userLater := candidateAt(base.Add(time.Minute), 2)

	candidates := []Candidate{userLater, userEarly, managerLate}
	SortCandidates(candidates, true)

	// Lower role priority wins even when it joined later; ties fall back to
	// joining order
	assert.Equal(t, managerLate.Entry.ID, candidates[0].Entry.ID)
	assert.Equal(t, userEarly.Entry.ID, candidates[1].Entry.ID)
	assert.Equal(t, userLater.Entry.ID, candidates[2].Entry.ID)
}

func TestSelectNextCandidateSkipsExcluded(t *testing.T) {
	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	first := candidateAt(base, 0)
	second := candidateAt(base.Add(time.Minute), 0)
	third := candidateAt(base.Add(2*time.Minute), 0)

	candidates := []Candidate{second, third, first}
	excluded := map[uuid.UUID]bool{first.Entry.UserID: true}

	winner := SelectNextCandidate(candidates, false, func(c Candidate) bool {
		return excluded[c.Entry.UserID]
	})
	assert.NotNil(t, winner)
	assert.Equal(t, second.Entry.ID, winner.Entry.ID)

	// The input slice must not be reordered by selection
	assert.Equal(t, second.Entry.ID, candidates[0].Entry.ID)
	assert.Equal(t, third.Entry.ID, candidates[1].Entry.ID)
	assert.Equal(t, first.Entry.ID, candidates[2].Entry.ID)
}

func TestSelectNextCandidateNilSkip(t *testing.T) {
	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	first := candidateAt(base, 0)
	second := candidateAt(base.Add(time.Second), 0)

	winner := SelectNextCandidate([]Candidate{second, first}, false, nil)
	assert.NotNil(t, winner)
	assert.Equal(t, first.Entry.ID, winner.Entry.ID)
}

func TestSelectNextCandidateAllExcluded(t *testing.T) {
	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	candidates := []Candidate{candidateAt(base, 0), candidateAt(base.Add(time.Minute), 0)}

	winner := SelectNextCandidate(candidates, false, func(Candidate) bool { return true })
	assert.Nil(t, winner)

	winner = SelectNextCandidate(nil, false, nil)
	assert.Nil(t, winner)
}
