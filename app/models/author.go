package models

// Validate checks the author record.
func (a *Author) Validate() error {
	return validate.Struct(a)
}

// DisplayName prefers the full name and falls back to the username.
func (a *Author) DisplayName() string {
	if a.FullName != "" {
		return a.FullName
	}
	return a.Username
}

// Validate checks the group record.
func (g *Group) Validate() error {
	return validate.Struct(g)
}

func (g *Group) String() string {
	return g.Title
}
