package data

import (
	"fmt"
	"strings"
)

// valuesClause renders a multi-row VALUES clause with positional
// placeholders: ($1,$2),($3,$4),...
func valuesClause(rowCount, colCount int) string {
	var b strings.Builder
	arg := 1
	for row := 0; row < rowCount; row++ {
		if row > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for col := 0; col < colCount; col++ {
			if col > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "$%d", arg)
			arg++
		}
		b.WriteByte(')')
	}
	return b.String()
}
