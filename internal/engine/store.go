package engine

// ColumnStore holds the master dataset in Struct-of-Arrays format. It is
// built once at startup and never mutated afterwards; every chart reads it
// through a Dataset.
type ColumnStore struct {
	// Data Columns (Flat Arrays)
	Years       []int32
	Consumption []float64
	Emissions   []float64
	Population  []float64
	Lats        []float64
	Lons        []float64

	// Dictionary Encoded IDs (0..N)
	CountryIDs []int32
	TypeIDs    []uint8

	// Dictionaries (ID -> String). A country is identified by its code; the
	// name dictionary is parallel to the code dictionary.
	CodeDict    []string
	CountryDict []string

	codeIndex map[string]int32
	nameIndex map[string]int32
}

// Len returns the number of rows.
func (cs *ColumnStore) Len() int {
	return len(cs.Years)
}

// buildIndex creates the name<->code lookups. Called once after loading.
func (cs *ColumnStore) buildIndex() {
	cs.codeIndex = make(map[string]int32, len(cs.CodeDict))
	cs.nameIndex = make(map[string]int32, len(cs.CountryDict))
	for id, code := range cs.CodeDict {
		cs.codeIndex[code] = int32(id)
	}
	for id, name := range cs.CountryDict {
		cs.nameIndex[name] = int32(id)
	}
}

// CountryID returns the dictionary id for a country code.
func (cs *ColumnStore) CountryID(code string) (int32, bool) {
	id, ok := cs.codeIndex[code]
	return id, ok
}

// CodeForName maps a country name (as used by the boundary source) to its code.
func (cs *ColumnStore) CodeForName(name string) (string, bool) {
	id, ok := cs.nameIndex[name]
	if !ok {
		return "", false
	}
	return cs.CodeDict[id], true
}

// NameForCode maps a country code to its display name.
func (cs *ColumnStore) NameForCode(code string) (string, bool) {
	id, ok := cs.codeIndex[code]
	if !ok {
		return "", false
	}
	return cs.CountryDict[id], true
}

// NumCountries returns the size of the country dictionary.
func (cs *ColumnStore) NumCountries() int {
	return len(cs.CodeDict)
}
