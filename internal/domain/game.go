package domain

// Game represents a single game listed in a user's inventory.
// Identity is (owner, name): the name is unique within one inventory but not
// globally, and renaming a game changes its identity.
type Game struct {
	Name      string `json:"name"`
	Publisher string `json:"publisher"`
	Year      int    `json:"year"`
	Platform  string `json:"platform"`
	Condition string `json:"condition"`
}
