// Package periodic holds the element data the SMILES reader and the geometry
// code need: standard atomic weights, default valences and covalent radii.
package periodic

// Element describes one chemical element.
type Element struct {
	Symbol string
	Number int

	// Weight is the standard atomic weight in g/mol.
	Weight float64

	// Valences lists the default valences in increasing order. Implicit
	// hydrogen filling picks the smallest valence that covers the bond
	// order sum.
	Valences []int

	// CovalentRadius in Å, used for ideal bond lengths.
	CovalentRadius float64
}

var table = map[string]Element{
	"H":  {Symbol: "H", Number: 1, Weight: 1.008, Valences: []int{1}, CovalentRadius: 0.31},
	"B":  {Symbol: "B", Number: 5, Weight: 10.811, Valences: []int{3}, CovalentRadius: 0.84},
	"C":  {Symbol: "C", Number: 6, Weight: 12.011, Valences: []int{4}, CovalentRadius: 0.76},
	"N":  {Symbol: "N", Number: 7, Weight: 14.007, Valences: []int{3}, CovalentRadius: 0.71},
	"O":  {Symbol: "O", Number: 8, Weight: 15.999, Valences: []int{2}, CovalentRadius: 0.66},
	"F":  {Symbol: "F", Number: 9, Weight: 18.998, Valences: []int{1}, CovalentRadius: 0.57},
	"Si": {Symbol: "Si", Number: 14, Weight: 28.086, Valences: []int{4}, CovalentRadius: 1.11},
	"P":  {Symbol: "P", Number: 15, Weight: 30.974, Valences: []int{3, 5}, CovalentRadius: 1.07},
	"S":  {Symbol: "S", Number: 16, Weight: 32.06, Valences: []int{2, 4, 6}, CovalentRadius: 1.05},
	"Cl": {Symbol: "Cl", Number: 17, Weight: 35.453, Valences: []int{1}, CovalentRadius: 1.02},
	"Br": {Symbol: "Br", Number: 35, Weight: 79.904, Valences: []int{1}, CovalentRadius: 1.20},
	"I":  {Symbol: "I", Number: 53, Weight: 126.904, Valences: []int{1}, CovalentRadius: 1.39},
}

// Lookup returns the element for a symbol ("Cl", not "cl").
func Lookup(symbol string) (Element, bool) {
	e, ok := table[symbol]
	return e, ok
}

// Weight returns the standard atomic weight, or 0 for unknown symbols.
func Weight(symbol string) float64 {
	return table[symbol].Weight
}
