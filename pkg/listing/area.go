package listing

import "fmt"

// Area is one of the five supported districts.
type Area string

const (
	AreaAmmochostos Area = "Ammochostos"
	AreaLarnaka     Area = "Larnaka"
	AreaLefkosia    Area = "Lefkosia"
	AreaLimassol    Area = "Limassol"
	AreaPaphos      Area = "Paphos"
)

// Areas returns every supported area.
func Areas() []Area {
	return []Area{AreaAmmochostos, AreaLarnaka, AreaLefkosia, AreaLimassol, AreaPaphos}
}

// AreaTable accepts English names, Greek transliterations and Greek script.
var AreaTable = Table[Area]{
	Match(`ammochostos|famagusta|αμμόχωστος|αμμοχωστος`, AreaAmmochostos),
	Match(`larna[ck]a|λάρνακα|λαρνακα`, AreaLarnaka),
	Match(`lefkosia|nicosia|λευκωσία|λευκωσια`, AreaLefkosia),
	Match(`limassol|lemesos|λεμεσός|λεμεσος`, AreaLimassol),
	Match(`pa(ph|f)os|πάφος|παφος`, AreaPaphos),
}

// LookupArea classifies free text into an Area.
func LookupArea(text string) (Area, bool) {
	return AreaTable.Lookup(text)
}

// ParseArea resolves a user supplied area name, accepting any synonym.
func ParseArea(s string) (Area, error) {
	a, ok := LookupArea(s)
	if !ok {
		return "", fmt.Errorf("unknown area %q (options: famagusta|larnaka|lefkosia|limassol|paphos)", s)
	}
	return a, nil
}
