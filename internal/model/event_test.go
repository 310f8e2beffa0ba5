package model

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_Transitions(t *testing.T) {
	tests := []struct {
		from, to EventStatus
		ok       bool
	}{
		{EventStatusDraft, EventStatusActive, false},
		{EventStatusDraft, EventStatusCompleted, false},
		{EventStatusActive, EventStatusCompleted, true},
		{EventStatusActive, EventStatusDraft, false},
		{EventStatusCompleted, EventStatusActive, false},
		{EventStatus("UNKNOWN"), EventStatusCompleted, false},
	}
	for _, tt := range tests {
		e := &Event{Status: tt.from}
		err := e.UpdateStatus(tt.to)
		if tt.ok {
			require.NoError(t, err, "%s -> %s", tt.from, tt.to)
			assert.Equal(t, tt.to, e.Status)
		} else {
			require.Error(t, err, "%s -> %s", tt.from, tt.to)
			assert.Equal(t, tt.from, e.Status)
		}
	}
}

func TestEvent_MatchFor(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	e := &Event{Matches: []Match{{Giver: a, Receiver: b}, {Giver: b, Receiver: a}}}

	assert.Equal(t, 0, e.MatchFor(a))
	assert.Equal(t, 1, e.MatchFor(b))
	assert.Equal(t, -1, e.MatchFor(uuid.New()))
}

func TestIDList_ValueAndScan(t *testing.T) {
	var empty IDList
	v, err := empty.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)

	ids := IDList{uuid.New(), uuid.New()}
	v, err = ids.Value()
	require.NoError(t, err)

	var fromBytes IDList
	require.NoError(t, fromBytes.Scan(v))
	assert.Equal(t, ids, fromBytes)

	var fromString IDList
	require.NoError(t, fromString.Scan(string(v.([]byte))))
	assert.Equal(t, ids, fromString)

	var fromNil IDList
	require.NoError(t, fromNil.Scan(nil))
	assert.Nil(t, fromNil)

	assert.Error(t, fromNil.Scan(42))
}

func TestMatch_JSONFieldNames(t *testing.T) {
	raw, err := json.Marshal(Match{Giver: uuid.New(), Receiver: uuid.New()})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Contains(t, fields, "giver")
	assert.Contains(t, fields, "receiver")
	assert.Contains(t, fields, "is_revealed")
	assert.NotContains(t, fields, "giver_revealed_date")
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleSuperAdmin.Valid())
	assert.True(t, RoleOrganizer.Valid())
	assert.True(t, RoleParticipant.Valid())
	assert.False(t, Role("").Valid())
	assert.False(t, Role("ADMIN").Valid())
}
