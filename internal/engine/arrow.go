package engine

import (
	"io"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"energydash/internal/models"
)

// RecordSchema is the Arrow layout of an exported Dataset. Field names
// follow the records CSV header.
var RecordSchema = arrow.NewSchema([]arrow.Field{
	{Name: "Country", Type: arrow.BinaryTypes.String},
	{Name: "Country_Code", Type: arrow.BinaryTypes.String},
	{Name: "Type", Type: arrow.BinaryTypes.String},
	{Name: "Year", Type: arrow.PrimitiveTypes.Int32},
	{Name: "Consumption", Type: arrow.PrimitiveTypes.Float64},
	{Name: "Emissions", Type: arrow.PrimitiveTypes.Float64},
	{Name: "Population", Type: arrow.PrimitiveTypes.Float64},
	{Name: "lat", Type: arrow.PrimitiveTypes.Float64},
	{Name: "lon", Type: arrow.PrimitiveTypes.Float64},
}, nil)

// ArrowRecord copies the filtered rows into one Arrow record. The caller
// releases it.
func (d *Dataset) ArrowRecord(mem memory.Allocator) arrow.Record {
	b := array.NewRecordBuilder(mem, RecordSchema)
	defer b.Release()

	cs := d.store
	n := len(d.rows)
	country := b.Field(0).(*array.StringBuilder)
	code := b.Field(1).(*array.StringBuilder)
	typ := b.Field(2).(*array.StringBuilder)
	year := b.Field(3).(*array.Int32Builder)
	cols := []*array.Float64Builder{
		b.Field(4).(*array.Float64Builder),
		b.Field(5).(*array.Float64Builder),
		b.Field(6).(*array.Float64Builder),
		b.Field(7).(*array.Float64Builder),
		b.Field(8).(*array.Float64Builder),
	}
	src := [][]float64{cs.Consumption, cs.Emissions, cs.Population, cs.Lats, cs.Lons}
	for _, c := range cols {
		c.Reserve(n)
	}
	year.Reserve(n)

	for _, j := range d.rows {
		cid := cs.CountryIDs[j]
		country.Append(cs.CountryDict[cid])
		code.Append(cs.CodeDict[cid])
		typ.Append(models.EnergyType(cs.TypeIDs[j]).String())
		year.Append(cs.Years[j])
		for k, c := range cols {
			c.Append(src[k][j])
		}
	}
	return b.NewRecord()
}

// WriteJSON writes the filtered rows as newline-delimited JSON objects.
func (d *Dataset) WriteJSON(w io.Writer) error {
	rec := d.ArrowRecord(memory.NewGoAllocator())
	defer rec.Release()
	return array.RecordToJSON(rec, w)
}
