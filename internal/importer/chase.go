package importer

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ChaseParser parses Chase checking CSV exports:
// Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
type ChaseParser struct{}

var chaseLayout = layout{
	name:       "chase",
	dateFormat: "01/02/2006",
	minFields:  7,
	maxFields:  7,
	date:       1,
	desc:       2,
	amount:     3,
	ref:        noColumn,
	kind:       4,
}

// Format returns the parser name.
func (p *ChaseParser) Format() string { return chaseLayout.name }

// Parse reads a Chase CSV. Chase exports carry no transaction IDs, so each
// line is referenced by its date and description.
func (p *ChaseParser) Parse(r io.Reader) ([]StatementLine, error) {
	lines, err := chaseLayout.read(r)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		lines[i].Reference = chaseRef(lines[i].Date, lines[i].Description)
	}
	return lines, nil
}

// chaseRef builds a reference like chase_20260205_WHOLEFDSMK.
func chaseRef(date time.Time, desc string) string {
	var b strings.Builder
	for _, r := range desc {
		if b.Len() == 10 {
			break
		}
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return fmt.Sprintf("chase_%s_%s", date.Format("20060102"), b.String())
}
