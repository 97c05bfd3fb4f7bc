package types

// GroupName names a tool group a mode may whitelist.
type GroupName string

const (
	GroupRead GroupName = "read"
	GroupEdit GroupName = "edit"
	GroupWeb  GroupName = "web"
)

// Mode is a named bundle of role definition, allowed tool groups and
// custom instructions controlling assistant behavior.
type Mode struct {
	Slug               string      `json:"slug"`
	Name               string      `json:"name"`
	RoleDefinition     string      `json:"roleDefinition"`
	Groups             []GroupName `json:"groups"`
	CustomInstructions string      `json:"customInstructions,omitempty"`
	IsBuiltIn          bool        `json:"isBuiltIn,omitempty"`
}

// AllowsGroup reports whether the mode whitelists the given tool group.
func (m *Mode) AllowsGroup(g GroupName) bool {
	for _, have := range m.Groups {
		if have == g {
			return true
		}
	}
	return false
}
