package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamAffiliation(t *testing.T) {
	none := NoTeam()
	assert.True(t, none.IsNone())
	assert.Nil(t, none.Nullable())
	_, ok := none.Name()
	assert.False(t, ok)

	assert.True(t, Team("   ").IsNone())

	rockets := Team(" Rockets ")
	name, ok := rockets.Name()
	assert.True(t, ok)
	assert.Equal(t, "Rockets", name)
	require.NotNil(t, rockets.Nullable())
	assert.Equal(t, "Rockets", *rockets.Nullable())

	assert.True(t, rockets.SameTeam(Team("Rockets")))
	assert.False(t, rockets.SameTeam(Team("rockets")))
	assert.False(t, none.SameTeam(NoTeam()))

	assert.True(t, Team("ADMIN").Is("admin"))
	assert.False(t, none.Is(""))
}

func TestTeamFromNullable(t *testing.T) {
	assert.True(t, TeamFromNullable(nil).IsNone())

	empty := ""
	assert.True(t, TeamFromNullable(&empty).IsNone())

	name := "Owls"
	assert.Equal(t, Team("Owls"), TeamFromNullable(&name))
}

func TestTeamAffiliationJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		A TeamAffiliation `json:"a"`
		B TeamAffiliation `json:"b"`
	}{A: Team("Owls"), B: NoTeam()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"Owls","b":null}`, string(out))
}

func TestAvatarURL(t *testing.T) {
	p := Participant{ID: "abc"}
	assert.Equal(t, "https://api.dicebear.com/7.x/pixel-art/svg?seed=abc", p.AvatarURL())

	seed := "pixel"
	p.AvatarSeed = &seed
	assert.Equal(t, "https://api.dicebear.com/7.x/pixel-art/svg?seed=pixel", p.AvatarURL())
}
