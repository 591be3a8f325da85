package config

// NewProfileForTest builds a Profile pointing at the given path without going
// through flag parsing.
func NewProfileForTest(path string) *Profile {
	return &Profile{path: path}
}
