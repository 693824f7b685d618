package models

import (
	"encoding/json"
	"strings"
)

const avatarBaseURL = "https://api.dicebear.com/7.x/pixel-art/svg?seed="

// TeamAffiliation is either no team or a named team. The zero value is no team.
type TeamAffiliation struct {
	name string
}

func NoTeam() TeamAffiliation {
	return TeamAffiliation{}
}

// Team returns a named affiliation. A blank name yields NoTeam.
func Team(name string) TeamAffiliation {
	return TeamAffiliation{name: strings.TrimSpace(name)}
}

// TeamFromNullable maps a nullable team_name column onto an affiliation.
func TeamFromNullable(name *string) TeamAffiliation {
	if name == nil {
		return NoTeam()
	}
	return Team(*name)
}

func (t TeamAffiliation) IsNone() bool {
	return t.name == ""
}

func (t TeamAffiliation) Name() (string, bool) {
	return t.name, t.name != ""
}

// Nullable is the column value for team_name.
func (t TeamAffiliation) Nullable() *string {
	if t.name == "" {
		return nil
	}
	name := t.name
	return &name
}

// SameTeam reports whether both affiliations name the same team. Two "none"
// affiliations are not considered the same team.
func (t TeamAffiliation) SameTeam(other TeamAffiliation) bool {
	return t.name != "" && t.name == other.name
}

// Is compares the team name case-insensitively against name.
func (t TeamAffiliation) Is(name string) bool {
	return t.name != "" && strings.EqualFold(t.name, name)
}

func (t TeamAffiliation) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Nullable())
}

type Participant struct {
	ID             string
	Email          string
	HashedPassword string
	Name           string
	PhoneNumber    string
	Profile        string
	WantsToBuild   string
	HasBuilt       *string
	Website        *string
	LinkedInHandle *string
	GithubHandle   *string
	XHandle        *string
	Organization   *string
	AvatarSeed     *string
	Team           TeamAffiliation
}

func (p Participant) AvatarURL() string {
	seed := p.ID
	if p.AvatarSeed != nil && *p.AvatarSeed != "" {
		seed = *p.AvatarSeed
	}
	return avatarBaseURL + seed
}

// ProfileUpdate carries the editable profile fields. Nil optional fields are
// stored as NULL.
type ProfileUpdate struct {
	Name           string
	PhoneNumber    string
	Profile        string
	WantsToBuild   string
	HasBuilt       *string
	Website        *string
	LinkedInHandle *string
	GithubHandle   *string
	XHandle        *string
	Organization   *string
	AvatarSeed     *string
	Team           TeamAffiliation
}
