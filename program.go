package pegrun

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Program is a compiled grammar: immutable after Compile returns
// (spec.md §3 "Compiled program"). Multiple VMs may share one Program by
// reference without synchronization (spec.md §5).
type Program struct {
	Code        []Instr
	Strings     []string
	Identifiers map[int]int // instruction index -> string index, production entry points
	Labels      map[int]int // label string id -> message string id
	Recovery    map[int]recoveryBinding
	EntryName   string

	// BuildID stamps this compilation for log correlation (SPEC_FULL.md §B),
	// the same role google/uuid plays in the teacher's pack sibling tunaq's
	// session claims, repurposed here for compile/run provenance.
	buildID uuid.UUID
}

func newBuildID() uuid.UUID { return uuid.New() }

// BuildID returns the Program's build identifier.
func (p *Program) BuildID() uuid.UUID { return p.buildID }

// NameAt returns the production name whose entry point is addr, if any.
func (p *Program) NameAt(addr int) (string, bool) {
	id, ok := p.Identifiers[addr]
	if !ok {
		return "", false
	}
	return p.Strings[id], true
}

// String renders a label-annotated assembly listing, in the spirit of the
// teacher's `vm_program.go` printer, printed by `cmd/pegrun compile`.
func (p *Program) String() string {
	var s strings.Builder
	fmt.Fprintf(&s, "; program %s (entry %s)\n", p.buildID, p.EntryName)
	for addr, instr := range p.Code {
		if name, ok := p.NameAt(addr); ok {
			fmt.Fprintf(&s, "%s:\n", name)
		}
		fmt.Fprintf(&s, "%4d  %s\n", addr, p.formatInstr(instr))
	}
	return s.String()
}

func (p *Program) formatInstr(i Instr) string {
	switch i.Op {
	case OpStr:
		return fmt.Sprintf("str %q", p.Strings[i.Str])
	case OpThrow:
		if i.HasRecovery {
			return fmt.Sprintf("throw %q (recoverable)", p.Strings[i.ErrorLabel])
		}
		return fmt.Sprintf("throw %q", p.Strings[i.ErrorLabel])
	case OpCall, OpCallB:
		target, _ := p.NameAt(i.Addr)
		return fmt.Sprintf("%s %d<%s> prec=%d", i.Op, i.Addr, target, i.Precedence)
	default:
		return i.String()
	}
}
