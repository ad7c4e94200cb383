package partner

// DefaultRootTerritory is used when the territory tree has no root yet
const DefaultRootTerritory = "All Territories"

// Territory is a node of the sales territory tree
type Territory struct {
	Name            string
	ParentTerritory string
	IsGroup         bool
}

// IsRoot returns true if the territory has no parent
func (t *Territory) IsRoot() bool {
	return t.ParentTerritory == ""
}
