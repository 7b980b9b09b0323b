package inputs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sleuthgrowth/sleuth/internal/sleuth/grid"
)

func TestPutLeaseRelease(t *testing.T) {
	s := New(4, 4)
	g := grid.New(4, 4)
	role := Role{Kind: Slope}
	require.NoError(t, s.Put(role, g))

	leased, err := s.Lease(role)
	require.NoError(t, err)
	require.Same(t, g, leased)

	require.NoError(t, s.Release(role))
	require.NoError(t, s.ValidateAllReleased())
}

func TestReleaseWithoutLeaseFails(t *testing.T) {
	s := New(2, 2)
	role := Role{Kind: Excluded}
	require.NoError(t, s.Put(role, grid.New(2, 2)))
	require.Error(t, s.Release(role))
}

func TestValidateAllReleasedFailsWithOutstandingLease(t *testing.T) {
	s := New(2, 2)
	role := Role{Kind: Urban, Year: 1990}
	require.NoError(t, s.Put(role, grid.New(2, 2)))
	_, err := s.Lease(role)
	require.NoError(t, err)
	require.Error(t, s.ValidateAllReleased())
}

func TestPutRejectsShapeMismatch(t *testing.T) {
	s := New(4, 4)
	err := s.Put(Role{Kind: Road, Year: 1990}, grid.New(2, 2))
	require.Error(t, err)
}

func TestYearsByKind(t *testing.T) {
	s := New(2, 2)
	require.NoError(t, s.Put(Role{Kind: Urban, Year: 1990}, grid.New(2, 2)))
	require.NoError(t, s.Put(Role{Kind: Urban, Year: 2000}, grid.New(2, 2)))
	require.NoError(t, s.Put(Role{Kind: Road, Year: 1990}, grid.New(2, 2)))

	years := s.Years(Urban)
	require.ElementsMatch(t, []int{1990, 2000}, years)
}

func TestLeaseUnknownRoleFails(t *testing.T) {
	s := New(2, 2)
	_, err := s.Lease(Role{Kind: Background})
	require.Error(t, err)
}
