package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterStampsRecord(t *testing.T) {
	reg := NewContractRegistry()

	stored := reg.Register(Contract{ID: "c1", Version: "1.0", Segment: "energy"})
	require.Equal(t, StatusActive, stored.Status)
	require.False(t, stored.RegisteredAt.IsZero())

	got, err := reg.Get("c1")
	require.NoError(t, err)
	require.Equal(t, "c1", got.ID)
	require.Equal(t, StatusActive, got.Status)
}

func TestGetUnknownContract(t *testing.T) {
	reg := NewContractRegistry()

	_, err := reg.Get("missing")
	require.ErrorIs(t, err, ErrContractNotFound)
}

func TestSegmentIndexInsertionOrder(t *testing.T) {
	reg := NewContractRegistry()

	reg.Register(Contract{ID: "c1", Version: "1.0", Segment: "energy"})
	reg.Register(Contract{ID: "c2", Version: "1.0", Segment: "energy"})
	reg.Register(Contract{ID: "c3", Version: "1.0", Segment: "water"})

	require.Equal(t, []string{"c1", "c2"}, reg.BySegment("energy"))
	require.Equal(t, []string{"c3"}, reg.BySegment("water"))
	require.Empty(t, reg.BySegment("gas"))
	require.ElementsMatch(t, []string{"energy", "water"}, reg.Segments())
}

func TestSegmentIndexConsistency(t *testing.T) {
	reg := NewContractRegistry()

	reg.Register(Contract{ID: "c1", Version: "1.0", Segment: "energy"})
	reg.Register(Contract{ID: "c2", Version: "1.0", Segment: "water"})

	// Every indexed id resolves, and every contract is indexed exactly once.
	indexed := 0
	for _, segment := range reg.Segments() {
		for _, id := range reg.BySegment(segment) {
			_, err := reg.Get(id)
			require.NoError(t, err)
			indexed++
		}
	}
	require.Equal(t, reg.Len(), indexed)
}

func TestReRegisterMovesSegmentEntry(t *testing.T) {
	reg := NewContractRegistry()

	reg.Register(Contract{ID: "c1", Version: "1.0", Segment: "energy"})
	reg.Register(Contract{ID: "c1", Version: "2.0", Segment: "water"})

	require.Empty(t, reg.BySegment("energy"))
	require.Equal(t, []string{"c1"}, reg.BySegment("water"))
	require.Equal(t, 1, reg.Len())
}

func TestClear(t *testing.T) {
	reg := NewContractRegistry()

	reg.Register(Contract{ID: "c1", Version: "1.0", Segment: "energy"})
	reg.Clear()

	require.Equal(t, 0, reg.Len())
	require.Empty(t, reg.BySegment("energy"))
	_, err := reg.Get("c1")
	require.ErrorIs(t, err, ErrContractNotFound)
}
