package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionTable_BindLookupClear(t *testing.T) {
	table := NewSessionTable()

	_, ok := table.Lookup("c1")
	assert.False(t, ok)

	table.Bind("c1", "alice")
	username, ok := table.Lookup("c1")
	assert.True(t, ok)
	assert.Equal(t, "alice", username)
	assert.Equal(t, 1, table.Len())

	// rebinding replaces the association
	table.Bind("c1", "bob")
	username, _ = table.Lookup("c1")
	assert.Equal(t, "bob", username)
	assert.Equal(t, 1, table.Len())

	table.Clear("c1")
	_, ok = table.Lookup("c1")
	assert.False(t, ok)
	assert.Zero(t, table.Len())
}

func TestSessionTable_ClearUnknownIsNoop(t *testing.T) {
	table := NewSessionTable()
	assert.NotPanics(t, func() { table.Clear("missing") })
}

func TestSessionTable_SameUserOnTwoConnections(t *testing.T) {
	table := NewSessionTable()

	table.Bind("c1", "alice")
	table.Bind("c2", "alice")

	u1, _ := table.Lookup("c1")
	u2, _ := table.Lookup("c2")
	assert.Equal(t, "alice", u1)
	assert.Equal(t, "alice", u2)
	assert.Equal(t, 2, table.Len())

	table.Clear("c1")
	_, ok := table.Lookup("c2")
	assert.True(t, ok, "dropping one session must not affect the other")
}
