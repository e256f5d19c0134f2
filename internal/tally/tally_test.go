package tally

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomTallies(n int) []VoteTally {
	r := rand.New(rand.NewSource(42))
	out := []VoteTally{{0, 0}, {1, 0}, {0, 1}}
	for i := 0; i < n; i++ {
		out = append(out, VoteTally{Upvotes: r.Intn(10000), Downvotes: r.Intn(10000)})
	}
	return out
}

func TestParseVoteAction(t *testing.T) {
	testCases := []struct {
		raw     string
		want    VoteAction
		wantErr bool
	}{
		{"upvote", Upvote, false},
		{"downvote", Downvote, false},
		{"Upvote", "", true},
		{" upvote", "", true},
		{"sideways", "", true},
		{"", "", true},
	}

	for _, tc := range testCases {
		got, err := ParseVoteAction(tc.raw)
		if tc.wantErr {
			require.ErrorIs(t, err, ErrInvalidVoteAction, tc.raw)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestApplyVoteIncrementsOneCounter(t *testing.T) {
	for _, tl := range randomTallies(200) {
		up, err := ApplyVote(tl, Upvote)
		require.NoError(t, err)
		assert.Equal(t, tl.Upvotes+1, up.Upvotes)
		assert.Equal(t, tl.Downvotes, up.Downvotes)

		down, err := ApplyVote(tl, Downvote)
		require.NoError(t, err)
		assert.Equal(t, tl.Upvotes, down.Upvotes)
		assert.Equal(t, tl.Downvotes+1, down.Downvotes)

		assert.GreaterOrEqual(t, up.Upvotes, tl.Upvotes)
		assert.GreaterOrEqual(t, down.Downvotes, tl.Downvotes)
	}
}

func TestApplyVoteDoesNotMutateInput(t *testing.T) {
	in := VoteTally{Upvotes: 2, Downvotes: 5}
	_, err := ApplyVote(in, Upvote)
	require.NoError(t, err)
	assert.Equal(t, VoteTally{Upvotes: 2, Downvotes: 5}, in)
}

func TestInvalidActionRejected(t *testing.T) {
	in := VoteTally{Upvotes: 3, Downvotes: 1}

	got, err := ApplyVote(in, VoteAction("sideways"))
	require.ErrorIs(t, err, ErrInvalidVoteAction)
	assert.Equal(t, VoteTally{}, got)

	res, err := ApplyVoteAndDerive(in, VoteAction("sideways"))
	require.ErrorIs(t, err, ErrInvalidVoteAction)
	assert.Equal(t, VoteResult{}, res)

	assert.Equal(t, VoteTally{Upvotes: 3, Downvotes: 1}, in)
}

func TestApplyVoteAndDeriveTotalMatchesApply(t *testing.T) {
	for _, tl := range randomTallies(200) {
		for _, a := range []VoteAction{Upvote, Downvote} {
			applied, err := ApplyVote(tl, a)
			require.NoError(t, err)
			res, err := ApplyVoteAndDerive(tl, a)
			require.NoError(t, err)
			assert.Equal(t, applied.Upvotes+applied.Downvotes, res.TotalCount)
		}
	}
}

func TestPercentagesSumToHundred(t *testing.T) {
	for _, tl := range randomTallies(500) {
		res := Derive(tl)
		if res.TotalCount == 0 {
			continue
		}
		assert.InDelta(t, 100, res.UpvotePercentage+res.DownvotePercentage, 0.01, "%+v", tl)
		assert.GreaterOrEqual(t, res.UpvotePercentage, 0.0)
		assert.LessOrEqual(t, res.UpvotePercentage, 100.0)
	}
}

func TestDeriveEmptyTally(t *testing.T) {
	res := Derive(VoteTally{})
	assert.Equal(t, VoteResult{}, res)
	assert.False(t, math.IsNaN(res.UpvotePercentage))
	assert.False(t, math.IsNaN(res.DownvotePercentage))

	res = Engine{Total: TotalNet}.Derive(VoteTally{})
	assert.Equal(t, VoteResult{}, res)
}

func TestDeriveNegativeCounterKeepsPercentagesInRange(t *testing.T) {
	res := Derive(VoteTally{Upvotes: -1, Downvotes: 3})
	assert.Equal(t, 2, res.TotalCount)
	assert.Zero(t, res.UpvotePercentage)
	assert.Zero(t, res.DownvotePercentage)

	res = Engine{Total: TotalNet}.Derive(VoteTally{Upvotes: 4, Downvotes: -2})
	assert.Equal(t, 6, res.TotalCount)
	assert.Zero(t, res.UpvotePercentage)
	assert.Zero(t, res.DownvotePercentage)
}

func TestVoteTallyCarriesNoStorageTags(t *testing.T) {
	typ := reflect.TypeOf(VoteTally{})
	for i := 0; i < typ.NumField(); i++ {
		assert.Empty(t, typ.Field(i).Tag.Get("gorm"), typ.Field(i).Name)
	}
}

func TestScenarios(t *testing.T) {
	got, err := ApplyVote(VoteTally{}, Upvote)
	require.NoError(t, err)
	assert.Equal(t, VoteTally{Upvotes: 1, Downvotes: 0}, got)

	res, err := ApplyVoteAndDerive(VoteTally{Upvotes: 3, Downvotes: 1}, Downvote)
	require.NoError(t, err)
	assert.Equal(t, VoteResult{TotalCount: 5, UpvotePercentage: 60, DownvotePercentage: 40}, res)

	res, err = ApplyVoteAndDerive(VoteTally{}, Upvote)
	require.NoError(t, err)
	assert.Equal(t, VoteResult{TotalCount: 1, UpvotePercentage: 100, DownvotePercentage: 0}, res)
}

func TestRoundingHalfAwayFromZero(t *testing.T) {
	res := Derive(VoteTally{Upvotes: 1, Downvotes: 2})
	assert.Equal(t, 33.33, res.UpvotePercentage)
	assert.Equal(t, 66.67, res.DownvotePercentage)

	res = Derive(VoteTally{Upvotes: 1, Downvotes: 15})
	assert.Equal(t, 6.25, res.UpvotePercentage)
	assert.Equal(t, 93.75, res.DownvotePercentage)

	res = Derive(VoteTally{Upvotes: 1, Downvotes: 199})
	assert.Equal(t, 0.5, res.UpvotePercentage)
	assert.Equal(t, 99.5, res.DownvotePercentage)
}

func TestNetTotalMode(t *testing.T) {
	e := Engine{Total: TotalNet}

	res, err := e.ApplyVoteAndDerive(VoteTally{Upvotes: 3, Downvotes: 1}, Downvote)
	require.NoError(t, err)
	assert.Equal(t, VoteResult{TotalCount: 1, UpvotePercentage: 60, DownvotePercentage: 40}, res)

	res = e.Derive(VoteTally{Upvotes: 1, Downvotes: 4})
	assert.Equal(t, -3, res.TotalCount)
	assert.Equal(t, 20.0, res.UpvotePercentage)
}

func TestParseTotalMode(t *testing.T) {
	m, err := ParseTotalMode("")
	require.NoError(t, err)
	assert.Equal(t, TotalSum, m)

	m, err = ParseTotalMode("net")
	require.NoError(t, err)
	assert.Equal(t, TotalNet, m)
	assert.Equal(t, "net", m.String())

	_, err = ParseTotalMode("actions")
	assert.Error(t, err)
}
