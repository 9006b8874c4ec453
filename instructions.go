package pegrun

import "fmt"

// Op identifies one bytecode instruction (spec.md §4.1's instruction table).
type Op int

const (
	OpHalt Op = iota
	OpAny
	OpChar
	OpSpan
	OpStr
	OpChoice
	OpChoiceP
	OpCommit
	OpCommitB
	OpPartialCommit
	OpBackCommit
	OpFail
	OpFailTwice
	OpJump
	OpCall
	OpCallB
	OpReturn
	OpThrow
	OpOpen
	OpClose
	OpCapPush
	OpCapPop
	OpCapCommit
)

var opNames = [...]string{
	OpHalt:          "halt",
	OpAny:           "any",
	OpChar:          "char",
	OpSpan:          "span",
	OpStr:           "str",
	OpChoice:        "choice",
	OpChoiceP:       "choice_p",
	OpCommit:        "commit",
	OpCommitB:       "commit_b",
	OpPartialCommit: "partial_commit",
	OpBackCommit:    "back_commit",
	OpFail:          "fail",
	OpFailTwice:     "fail_twice",
	OpJump:          "jump",
	OpCall:          "call",
	OpCallB:         "call_b",
	OpReturn:        "return",
	OpThrow:         "throw",
	OpOpen:          "open",
	OpClose:         "close",
	OpCapPush:       "cap_push",
	OpCapPop:        "cap_pop",
	OpCapCommit:     "cap_commit",
}

func (op Op) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// NodeKind distinguishes the two shapes `Close` can wrap a list frame's
// captures into (spec.md §4.1 `Close(kind)`).
type NodeKind int

const (
	KindList NodeKind = iota
	KindNode
)

// Instr is one entry of a compiled Program's flat instruction array. Only the
// fields relevant to Op are meaningful; this mirrors the teacher's approach
// of one concrete type per opcode (go/vm_instructions.go) collapsed into a
// single struct so a Program can be a plain `[]Instr` slice, directly
// patchable during backpatching instead of requiring type-switched rebuilds.
type Instr struct {
	Op Op

	// Addr is a resolved absolute instruction index, used by Choice,
	// ChoiceP, Commit, CommitB, PartialCommit, BackCommit, Jump, Call, and
	// CallB.
	Addr int

	// Precedence is the call precedence `k` (0 for non-left-recursive).
	Precedence int

	// Char/Span operands.
	Lo, Hi rune

	// Str is an index into Program.Strings — used by OpStr (literal to
	// match); OpCapPush prints it in listings (0 for anonymous).
	Str int

	// HasRecovery/ErrorLabel are set on OpThrow: ErrorLabel indexes
	// Program.Strings for the label name; HasRecovery records that a
	// production named after the label exists. The VM itself looks the
	// recovery binding up in Program.Recovery by ErrorLabel.
	ErrorLabel  int
	HasRecovery bool

	Kind NodeKind

	// Cap is the capture-wrapping mode of an OpReturn (spec.md §4.2).
	Cap CapMode

	sl SourceLocation
}

// CapMode parameterises OpReturn's capture-wrapping behavior (spec.md §4.2
// "Capture Discipline").
type CapMode int

const (
	CapWrapped CapMode = iota
	CapDisabled
	CapUnwrapped
)

func (i Instr) String() string {
	switch i.Op {
	case OpChar:
		return fmt.Sprintf("char %q", i.Lo)
	case OpSpan:
		return fmt.Sprintf("span %q-%q", i.Lo, i.Hi)
	case OpStr:
		return fmt.Sprintf("str #%d", i.Str)
	case OpChoice, OpChoiceP, OpCommit, OpCommitB, OpPartialCommit, OpBackCommit, OpJump:
		return fmt.Sprintf("%s %d", i.Op, i.Addr)
	case OpCall, OpCallB:
		return fmt.Sprintf("%s %d prec=%d", i.Op, i.Addr, i.Precedence)
	case OpThrow:
		return fmt.Sprintf("throw #%d", i.ErrorLabel)
	case OpCapPush:
		return fmt.Sprintf("cap_push #%d", i.Str)
	case OpClose:
		return fmt.Sprintf("close %v", i.Kind)
	default:
		return i.Op.String()
	}
}

// SourceLocation pins an instruction back to the grammar text it was
// compiled from, for diagnostics and assembly dumps.
type SourceLocation struct {
	FileID int
	Range  Range
}
