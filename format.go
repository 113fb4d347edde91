package hsm

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented tree of state names to w, marking the active
// chain with a leading asterisk. This is a debugging aid, not a
// serialization format: there is no corresponding parser.
func (m *Machine) Dump(w io.Writer) {
	m.dump(w, "")
}

func (m *Machine) dump(w io.Writer, indent string) {
	for pair := m.states.Oldest(); pair != nil; pair = pair.Next() {
		s := pair.Value
		marker := " "
		if m.current == s {
			marker = "*"
		}
		fmt.Fprintf(w, "%s%s%s\n", indent, marker, s.name)
		if s.child != nil {
			s.child.dump(w, indent+"  ")
		}
	}
}

// dumpString returns the Dump output as a single string rather than
// writing it to an io.Writer.
func (m *Machine) dumpString() string {
	var b strings.Builder
	m.Dump(&b)
	return b.String()
}
