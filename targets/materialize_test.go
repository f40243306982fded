package targets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterializeRoleUnion(t *testing.T) {
	t.Parallel()
	snapshot := testSnapshot()
	res := Resolve("<@&900000000000000001> <@&900000000000000002>", snapshot)

	ids, err := Materialize(res, snapshot, MaterializeOptions{Cap: 500})
	require.NoError(t, err)
	// Member 3 holds both roles and appears once; the bot member is
	// filtered out.
	assert.ElementsMatch(t, []string{
		"100000000000000001", "100000000000000002", "100000000000000003",
	}, ids)
}

func TestMaterializeCombinesExplicitUsers(t *testing.T) {
	t.Parallel()
	snapshot := testSnapshot()
	res := Resolve("<@&900000000000000002> <@100000000000000005>", snapshot)

	ids, err := Materialize(res, snapshot, MaterializeOptions{Cap: 500})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"100000000000000002", "100000000000000003", "100000000000000005",
	}, ids)
}

func TestMaterializeEveryoneFiltersBots(t *testing.T) {
	t.Parallel()
	snapshot := testSnapshot()
	res := Resolve("everyone", snapshot)

	ids, err := Materialize(res, snapshot, MaterializeOptions{Cap: 500})
	require.NoError(t, err)
	assert.NotContains(t, ids, "100000000000000004")
	assert.Len(t, ids, 4)

	// The executing bot itself is exempt from the filter.
	ids, err = Materialize(res, snapshot, MaterializeOptions{Cap: 500, SelfID: "100000000000000004"})
	require.NoError(t, err)
	assert.Contains(t, ids, "100000000000000004")
}

func TestMaterializeExplicitBotFiltered(t *testing.T) {
	t.Parallel()
	snapshot := testSnapshot()
	res := Resolve("<@100000000000000004> <@100000000000000005>", snapshot)

	ids, err := Materialize(res, snapshot, MaterializeOptions{Cap: 500})
	require.NoError(t, err)
	assert.Equal(t, []string{"100000000000000005"}, ids)
}

func TestMaterializeUnknownExplicitIDKept(t *testing.T) {
	t.Parallel()
	snapshot := testSnapshot()
	res := Resolve("<@100000000000000099>", snapshot)

	ids, err := Materialize(res, snapshot, MaterializeOptions{Cap: 500})
	require.NoError(t, err)
	assert.Equal(t, []string{"100000000000000099"}, ids)
}

func TestMaterializeEmptySet(t *testing.T) {
	t.Parallel()
	snapshot := testSnapshot()
	res := Resolve("@Nobody", snapshot)

	_, err := Materialize(res, snapshot, MaterializeOptions{Cap: 500})
	require.ErrorIs(t, err, ErrNoTargets)
}

func TestMaterializeCapEnforced(t *testing.T) {
	t.Parallel()
	snapshot := testSnapshot()
	res := Resolve("everyone", snapshot)

	_, err := Materialize(res, snapshot, MaterializeOptions{Cap: 2})
	var tooMany *TooManyTargetsError
	require.ErrorAs(t, err, &tooMany)
	assert.Equal(t, 4, tooMany.Count)
	assert.Equal(t, 2, tooMany.Cap)

	// At the cap exactly is allowed.
	ids, err := Materialize(res, snapshot, MaterializeOptions{Cap: 4})
	require.NoError(t, err)
	assert.Len(t, ids, 4)
}
