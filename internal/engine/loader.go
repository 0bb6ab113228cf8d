package engine

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"
	"unsafe"

	"golang.org/x/sync/errgroup"

	"energydash/internal/logger"
	"energydash/internal/models"
)

// --- 1. FAST ZERO-ALLOC PARSERS ---

func unsafeToString(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// fastInt parses "1965" -> 1965
func fastInt(b []byte) int32 {
	var n int32
	for _, c := range b {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int32(c-'0')
	}
	return n
}

// fastFloat parses "-123.45" -> -123.45. Missing cells ("NA", "") are 0.
// Anything outside the plain decimal form falls back to strconv.
func fastFloat(b []byte) float64 {
	if len(b) == 0 || (len(b) == 2 && b[0] == 'N' && b[1] == 'A') {
		return 0
	}
	neg := false
	i := 0
	if b[0] == '-' || b[0] == '+' {
		neg = b[0] == '-'
		i++
	}
	var num float64
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		num = num*10 + float64(b[i]-'0')
		i++
	}
	if i < len(b) && b[i] == '.' {
		i++
		div := 10.0
		for i < len(b) && b[i] >= '0' && b[i] <= '9' {
			num += float64(b[i]-'0') / div
			div *= 10
			i++
		}
	}
	if i < len(b) {
		// exponent or garbage
		f, err := strconv.ParseFloat(unsafeToString(b), 64)
		if err != nil {
			return 0
		}
		return f
	}
	if neg {
		return -num
	}
	return num
}

// splitFields cuts a CSV line into fields, honoring double-quoted fields
// (country names such as "Korea, Rep."). The returned slices alias line
// unless a field contains escaped quotes.
func splitFields(line []byte, dst [][]byte) [][]byte {
	dst = dst[:0]
	for {
		if len(line) > 0 && line[0] == '"' {
			field, rest, escaped := cutQuoted(line[1:])
			if escaped {
				field = bytes.ReplaceAll(field, []byte(`""`), []byte(`"`))
			}
			dst = append(dst, field)
			if len(rest) == 0 {
				return dst
			}
			line = rest[1:] // skip the comma
			continue
		}
		field, rest, found := bytes.Cut(line, []byte{','})
		dst = append(dst, field)
		if !found {
			return dst
		}
		line = rest
	}
}

// cutQuoted scans past the closing quote. rest starts at the separator.
func cutQuoted(b []byte) (field, rest []byte, escaped bool) {
	for i := 0; i < len(b); i++ {
		if b[i] != '"' {
			continue
		}
		if i+1 < len(b) && b[i+1] == '"' {
			escaped = true
			i++
			continue
		}
		return b[:i], b[i+1:], escaped
	}
	return b, nil, escaped
}

// --- 2. HEADER ---

type columns struct {
	country, code, typ, year, consumption, emissions, population, lat, lon int
}

var requiredColumns = []string{"Country", "Country_Code", "Type", "Year", "Consumption", "Emissions", "Population", "lat", "lon"}

func parseHeader(line []byte) (columns, error) {
	idx := make(map[string]int)
	for i, f := range splitFields(bytes.TrimRight(line, "\r"), nil) {
		idx[string(bytes.TrimSpace(f))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := idx[name]; !ok {
			return columns{}, fmt.Errorf("missing column %q", name)
		}
	}
	return columns{
		country:     idx["Country"],
		code:        idx["Country_Code"],
		typ:         idx["Type"],
		year:        idx["Year"],
		consumption: idx["Consumption"],
		emissions:   idx["Emissions"],
		population:  idx["Population"],
		lat:         idx["lat"],
		lon:         idx["lon"],
	}, nil
}

func (c columns) width() int {
	m := 0
	for _, v := range []int{c.country, c.code, c.typ, c.year, c.consumption, c.emissions, c.population, c.lat, c.lon} {
		if v > m {
			m = v
		}
	}
	return m + 1
}

// --- 3. MAIN LOADER ---

// LoadColumnar reads the records CSV at path into a ColumnStore.
func LoadColumnar(path string) (*ColumnStore, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	return ParseColumnar(content)
}

// ParseColumnar parses CSV content in parallel chunks. Rows with an unknown
// energy type or too few fields are skipped and counted.
func ParseColumnar(content []byte) (*ColumnStore, error) {
	start := time.Now()

	// A. Header
	idx := bytes.IndexByte(content, '\n')
	if idx == -1 {
		if len(bytes.TrimSpace(content)) == 0 {
			return nil, errors.New("records: empty input")
		}
		idx = len(content)
	}
	cols, err := parseHeader(content[:idx])
	if err != nil {
		return nil, fmt.Errorf("records header: %w", err)
	}
	if idx < len(content) {
		content = content[idx+1:]
	} else {
		content = nil
	}
	width := cols.width()

	numWorkers := runtime.NumCPU()
	if len(content) < 1<<16 {
		numWorkers = 1
	}
	chunkSize := len(content) / numWorkers

	// B. Parallel Parsing into worker-local columns
	type localChunk struct {
		years              []int32
		cons, ems, pops    []float64
		lats, lons         []float64
		types              []uint8
		codeMap            map[string]int32
		codeList, nameList []string
		ids                []int32
		skipped            int
	}
	chunks := make([]*localChunk, numWorkers)

	var g errgroup.Group
	for i := 0; i < numWorkers; i++ {
		w, start, end := i, i*chunkSize, (i+1)*chunkSize
		g.Go(func() error {
			lc := &localChunk{codeMap: make(map[string]int32)}
			chunks[w] = lc

			// Align to newlines
			if start > 0 {
				if i := bytes.IndexByte(content[start:], '\n'); i != -1 {
					start += i + 1
				} else {
					start = len(content)
				}
			}
			if w == numWorkers-1 {
				end = len(content)
			} else if end < len(content) {
				if i := bytes.IndexByte(content[end:], '\n'); i != -1 {
					end += i + 1
				} else {
					end = len(content)
				}
			}
			if start >= end {
				return nil
			}

			chunk := content[start:end]
			fields := make([][]byte, 0, width)
			for len(chunk) > 0 {
				line, rest, _ := bytes.Cut(chunk, []byte{'\n'})
				chunk = rest
				line = bytes.TrimRight(line, "\r")
				if len(line) == 0 {
					continue
				}

				fields = splitFields(line, fields)
				if len(fields) < width {
					lc.skipped++
					continue
				}
				typ, err := models.ParseEnergyType(unsafeToString(fields[cols.typ]))
				if err != nil {
					lc.skipped++
					continue
				}

				code := fields[cols.code]
				id, ok := lc.codeMap[unsafeToString(code)]
				if !ok {
					id = int32(len(lc.codeList))
					str := string(code) // Allocate string for dict
					lc.codeList = append(lc.codeList, str)
					lc.nameList = append(lc.nameList, string(fields[cols.country]))
					lc.codeMap[str] = id
				}

				lc.ids = append(lc.ids, id)
				lc.types = append(lc.types, uint8(typ))
				lc.years = append(lc.years, fastInt(fields[cols.year]))
				lc.cons = append(lc.cons, fastFloat(fields[cols.consumption]))
				lc.ems = append(lc.ems, fastFloat(fields[cols.emissions]))
				lc.pops = append(lc.pops, fastFloat(fields[cols.population]))
				lc.lats = append(lc.lats, fastFloat(fields[cols.lat]))
				lc.lons = append(lc.lons, fastFloat(fields[cols.lon]))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// C. Allocate Store ONCE
	totalRows, skipped := 0, 0
	for _, lc := range chunks {
		totalRows += len(lc.ids)
		skipped += lc.skipped
	}
	store := &ColumnStore{
		Years:       make([]int32, 0, totalRows),
		Consumption: make([]float64, 0, totalRows),
		Emissions:   make([]float64, 0, totalRows),
		Population:  make([]float64, 0, totalRows),
		Lats:        make([]float64, 0, totalRows),
		Lons:        make([]float64, 0, totalRows),
		CountryIDs:  make([]int32, 0, totalRows),
		TypeIDs:     make([]uint8, 0, totalRows),
	}

	// D. Merge Dictionaries and Columns (chunk order preserves file order)
	gMap := make(map[string]int32)
	for _, lc := range chunks {
		remap := make([]int32, len(lc.codeList))
		for lid, code := range lc.codeList {
			if gid, exists := gMap[code]; exists {
				remap[lid] = gid
			} else {
				gid = int32(len(store.CodeDict))
				store.CodeDict = append(store.CodeDict, code)
				store.CountryDict = append(store.CountryDict, lc.nameList[lid])
				gMap[code] = gid
				remap[lid] = gid
			}
		}
		for _, id := range lc.ids {
			store.CountryIDs = append(store.CountryIDs, remap[id])
		}
		store.Years = append(store.Years, lc.years...)
		store.Consumption = append(store.Consumption, lc.cons...)
		store.Emissions = append(store.Emissions, lc.ems...)
		store.Population = append(store.Population, lc.pops...)
		store.Lats = append(store.Lats, lc.lats...)
		store.Lons = append(store.Lons, lc.lons...)
		store.TypeIDs = append(store.TypeIDs, lc.types...)
	}
	store.buildIndex()

	if skipped > 0 {
		logger.Warn("Skipped %d malformed record rows", skipped)
	}
	logger.Info("Load Complete. Rows: %d. Countries: %d. Time: %v", totalRows, len(store.CodeDict), time.Since(start))
	return store, nil
}

// NewColumnStore builds a store from in-memory records. Used by tests and
// by callers that already hold parsed rows.
func NewColumnStore(records []models.Record) *ColumnStore {
	cs := &ColumnStore{}
	gMap := make(map[string]int32)
	for _, r := range records {
		id, ok := gMap[r.CountryCode]
		if !ok {
			id = int32(len(cs.CodeDict))
			cs.CodeDict = append(cs.CodeDict, r.CountryCode)
			cs.CountryDict = append(cs.CountryDict, r.Country)
			gMap[r.CountryCode] = id
		}
		cs.CountryIDs = append(cs.CountryIDs, id)
		cs.TypeIDs = append(cs.TypeIDs, uint8(r.Type))
		cs.Years = append(cs.Years, int32(r.Year))
		cs.Consumption = append(cs.Consumption, r.Consumption)
		cs.Emissions = append(cs.Emissions, r.Emissions)
		cs.Population = append(cs.Population, r.Population)
		cs.Lats = append(cs.Lats, r.Lat)
		cs.Lons = append(cs.Lons, r.Lon)
	}
	cs.buildIndex()
	return cs
}
