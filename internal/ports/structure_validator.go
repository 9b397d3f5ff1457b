package ports

// StructureValidator checks that a SMILES string describes a readable
// structure without computing anything expensive.
type StructureValidator interface {
	Check(smiles string) error
}
