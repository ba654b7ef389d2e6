package importer

import "io"

// NativeParser reads a minimal statement layout:
// date,description,amount[,reference] with ISO dates and major-unit amounts.
type NativeParser struct{}

var nativeLayout = layout{
	name:       "native",
	dateFormat: "2006-01-02",
	minFields:  3,
	maxFields:  4,
	date:       0,
	desc:       1,
	amount:     2,
	ref:        3,
	kind:       noColumn,
}

// Format returns the parser name.
func (p *NativeParser) Format() string { return nativeLayout.name }

// Parse reads a native CSV. The first row is a header.
func (p *NativeParser) Parse(r io.Reader) ([]StatementLine, error) {
	return nativeLayout.read(r)
}
