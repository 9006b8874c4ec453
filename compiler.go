package pegrun

import "fmt"

// compiler turns a Grammar's patterns into a flat Instr array, following the
// post-order, per-construct emission templates of spec.md §4.4. It tracks
// forward call sites and jump targets separately and backpatches both once
// every definition has been emitted (spec.md §9 "Forward references").
//
// Jump targets use integer "marks" resolved to an absolute instruction index
// once placed; unlike the relative pc±off encoding spec.md's table
// describes (an artifact of a true byte-addressed bytecode), every Instr
// here carries an already-resolved absolute address, so Commit/CommitB (and
// similarly Call/CallB) differ only in which direction they were originally
// written, not in how the VM executes them — kept as distinct opcodes for
// assembly-dump fidelity to spec.md's instruction table.
type compiler struct {
	g             *Grammar
	cfg           *Config
	leftRecursive map[string]bool
	unwrapped     map[string]bool
	synthetic     map[string]bool

	code []Instr

	strs   []string
	strIdx map[string]int

	identifiers map[int]int
	prodAddr    map[string]int

	marks      map[int]int
	markFixups []markFixup
	nextMark   int

	callFixups []callFixup
}

type markFixup struct {
	instrIndex int
	markID     int
}

type callFixup struct {
	instrIndex int
	prodName   string
	srcRange   Range
}

func newCompiler(g *Grammar, cfg *Config, leftRecursive, unwrapped map[string]bool, synthetic map[string]bool) *compiler {
	return &compiler{
		g:             g,
		cfg:           cfg,
		leftRecursive: leftRecursive,
		unwrapped:     unwrapped,
		synthetic:     synthetic,
		strIdx:        map[string]int{},
		identifiers:   map[int]int{},
		prodAddr:      map[string]int{},
		marks:         map[int]int{},
	}
}

func (c *compiler) intern(s string) int {
	if i, ok := c.strIdx[s]; ok {
		return i
	}
	i := len(c.strs)
	c.strs = append(c.strs, s)
	c.strIdx[s] = i
	return i
}

func (c *compiler) newMark() int {
	id := c.nextMark
	c.nextMark++
	return id
}

func (c *compiler) placeMark(id int) {
	c.marks[id] = len(c.code)
}

func (c *compiler) emit(instr Instr) int {
	c.code = append(c.code, instr)
	return len(c.code) - 1
}

// emitJumpTo appends instr (whose Addr field is not yet known) and records
// a fixup against mark id, resolved once that mark is placed.
func (c *compiler) emitJumpTo(op Op, markID int) int {
	idx := c.emit(Instr{Op: op})
	c.markFixups = append(c.markFixups, markFixup{instrIndex: idx, markID: markID})
	return idx
}

func (c *compiler) resolveMarks() error {
	for _, fx := range c.markFixups {
		addr, ok := c.marks[fx.markID]
		if !ok {
			return fmt.Errorf("pegrun: internal error: unresolved jump mark %d", fx.markID)
		}
		c.code[fx.instrIndex].Addr = addr
	}
	return nil
}

func (c *compiler) resolveCalls() error {
	for _, fx := range c.callFixups {
		addr, ok := c.prodAddr[fx.prodName]
		if !ok {
			return (&CompileError{
				Kind:   ErrUndefinedProduction,
				Detail: fmt.Sprintf("undefined production %q", fx.prodName),
				Range:  fx.srcRange,
			})
		}
		c.code[fx.instrIndex].Addr = addr
	}
	return nil
}

// compilePattern is the post-order walk described in spec.md §4.4.
func (c *compiler) compilePattern(p Pattern) error {
	switch n := p.(type) {
	case *EmptyLit:
		return nil

	case *CharLit:
		c.emit(Instr{Op: OpChar, Lo: n.C})
		return nil

	case *RangeLit:
		c.emit(Instr{Op: OpSpan, Lo: n.Lo, Hi: n.Hi})
		return nil

	case *StringLit:
		c.emit(Instr{Op: OpStr, Str: c.intern(n.Text)})
		return nil

	case *AnyLit:
		c.emit(Instr{Op: OpAny})
		return nil

	case *Reference:
		return c.compileReference(n)

	case *Choice:
		return c.compileChoice(n)

	case *SequencePattern:
		for _, item := range n.Items {
			if err := c.compilePattern(item); err != nil {
				return err
			}
		}
		return nil

	case *Optional:
		return c.compileOptional(n)

	case *ZeroOrMore:
		return c.compileZeroOrMore(n.Expr)

	case *OneOrMore:
		if err := c.compilePattern(n.Expr); err != nil {
			return err
		}
		return c.compileZeroOrMore(n.Expr)

	case *Not:
		return c.compileNot(n)

	case *And:
		return c.compileAnd(n)

	case *Labelled:
		return c.compileLabelled(n)

	case *NodePattern:
		c.emit(Instr{Op: OpOpen})
		c.emit(Instr{Op: OpStr, Str: c.intern(n.Name)})
		if err := c.compilePattern(n.Expr); err != nil {
			return err
		}
		c.emit(Instr{Op: OpClose, Kind: KindNode})
		return nil

	case *ListPattern:
		c.emit(Instr{Op: OpOpen})
		for _, item := range n.Items {
			if err := c.compilePattern(item); err != nil {
				return err
			}
		}
		c.emit(Instr{Op: OpClose, Kind: KindList})
		return nil

	case *Lexification:
		return c.compilePattern(n.Expr)

	default:
		return fmt.Errorf("pegrun: internal error: unknown pattern %T", p)
	}
}

func (c *compiler) compileReference(n *Reference) error {
	idx := c.emit(Instr{Op: OpCall})

	precedence := 0
	if c.leftRecursive[n.Name] {
		precedence = n.Precedence
		if precedence == 0 {
			precedence = 1
		}
	} else if n.Precedence != 0 {
		return &CompileError{
			Kind:   ErrBadPrecedenceSuffix,
			Detail: fmt.Sprintf("precedence suffix applied to non-left-recursive reference %q", n.Name),
			Range:  n.Range(),
		}
	}
	c.code[idx].Precedence = precedence

	if addr, ok := c.prodAddr[n.Name]; ok {
		c.code[idx].Op = OpCallB
		c.code[idx].Addr = addr
		return nil
	}
	c.callFixups = append(c.callFixups, callFixup{instrIndex: idx, prodName: n.Name, srcRange: n.Range()})
	return nil
}

// compileChoice: Choice L1; <p>; Commit L2; L1: <q>; L2: — chained across
// N alternatives, each Commit patched to the shared end mark.
func (c *compiler) compileChoice(n *Choice) error {
	if len(n.Items) == 0 {
		return nil
	}
	end := c.newMark()
	for i, alt := range n.Items {
		last := i == len(n.Items)-1
		if last {
			if err := c.compilePattern(alt); err != nil {
				return err
			}
			break
		}
		next := c.newMark()
		c.emitJumpTo(OpChoice, next)
		if err := c.compilePattern(alt); err != nil {
			return err
		}
		c.emitJumpTo(OpCommit, end)
		c.placeMark(next)
	}
	c.placeMark(end)
	return nil
}

// compileOptional: CapPush; Choice L; <p>; Commit L+1; L: CapCommit; CapPop.
func (c *compiler) compileOptional(n *Optional) error {
	c.emit(Instr{Op: OpCapPush})
	l := c.newMark()
	after := c.newMark()
	c.emitJumpTo(OpChoice, l)
	if err := c.compilePattern(n.Expr); err != nil {
		return err
	}
	c.emitJumpTo(OpCommit, after)
	c.placeMark(l)
	c.emit(Instr{Op: OpCapCommit})
	c.placeMark(after)
	c.emit(Instr{Op: OpCapPop})
	return nil
}

// compileZeroOrMore: CapPush; Choice L; <p>; CapCommit; PartialCommit back;
// L: CapCommit; CapPop. Uses the optimized PartialCommit form (in-place
// backtrack-frame update) so a later failure resumes at the last completed
// iteration rather than before the loop — spec.md §4.4 calls this
// "essential", not merely an optimization.
func (c *compiler) compileZeroOrMore(p Pattern) error {
	c.emit(Instr{Op: OpCapPush})
	l := c.newMark()
	back := c.newMark()
	c.emitJumpTo(OpChoice, l)
	c.placeMark(back)
	if err := c.compilePattern(p); err != nil {
		return err
	}
	c.emit(Instr{Op: OpCapCommit})
	c.emitJumpTo(OpPartialCommit, back)
	c.placeMark(l)
	c.emit(Instr{Op: OpCapCommit})
	c.emit(Instr{Op: OpCapPop})
	return nil
}

// compileNot: ChoiceP L; <p>; FailTwice; L:. The predicate flag on the
// ChoiceP frame suppresses captures for the duration of <p>.
func (c *compiler) compileNot(n *Not) error {
	l := c.newMark()
	c.emitJumpTo(OpChoiceP, l)
	if err := c.compilePattern(n.Expr); err != nil {
		return err
	}
	c.emit(Instr{Op: OpFailTwice})
	c.placeMark(l)
	return nil
}

// compileAnd: ChoiceP L1; <p>; BackCommit L2; L1: Fail; L2:. On success,
// BackCommit discards the predicate frame and restores the pre-<p> cursor
// before jumping past the Fail; on failure, the ChoiceP frame's own restore
// lands on Fail, which propagates the failure past this predicate.
func (c *compiler) compileAnd(n *And) error {
	l1 := c.newMark()
	l2 := c.newMark()
	c.emitJumpTo(OpChoiceP, l1)
	if err := c.compilePattern(n.Expr); err != nil {
		return err
	}
	c.emitJumpTo(OpBackCommit, l2)
	c.placeMark(l1)
	c.emit(Instr{Op: OpFail})
	c.placeMark(l2)
	return nil
}

// compileLabelled: Choice L1; <p>; Commit L2; L1: Throw L; L2:.
func (c *compiler) compileLabelled(n *Labelled) error {
	l1 := c.newMark()
	l2 := c.newMark()
	c.emitJumpTo(OpChoice, l1)
	if err := c.compilePattern(n.Expr); err != nil {
		return err
	}
	c.emitJumpTo(OpCommit, l2)
	c.placeMark(l1)
	_, hasRecovery := c.g.Lookup(n.Label)
	c.emit(Instr{Op: OpThrow, ErrorLabel: c.intern(n.Label), HasRecovery: hasRecovery})
	c.placeMark(l2)
	return nil
}

func (c *compiler) capModeFor(name string) CapMode {
	if !c.cfg.GetBool("captures") {
		return CapDisabled
	}
	if c.unwrapped[name] {
		return CapUnwrapped
	}
	return CapWrapped
}

// compileDefinitions emits every production body in source order, after a
// two-instruction program header (`Call entry,k; Halt`) reserved at
// addresses 0 and 1, patched once the entry point is known (spec.md §4.4
// step 2).
func (c *compiler) compileDefinitions() error {
	c.emit(Instr{Op: OpCall}) // addr 0: header call, patched below
	c.emit(Instr{Op: OpHalt}) // addr 1

	for _, def := range c.g.Definitions {
		addr := len(c.code)
		c.prodAddr[def.Name] = addr
		c.identifiers[addr] = c.intern(def.Name)
		if err := c.compilePattern(def.Expr); err != nil {
			return err
		}
		c.emit(Instr{Op: OpReturn, Cap: c.capModeFor(def.Name)})
	}
	return nil
}

func (c *compiler) selectEntryPoint() (string, error) {
	if c.g.StartRule != "" {
		if !c.g.Has(c.g.StartRule) {
			return "", &CompileError{Kind: ErrUndefinedProduction, Detail: fmt.Sprintf("undefined start rule %q", c.g.StartRule)}
		}
		return c.g.StartRule, nil
	}
	for _, def := range c.g.Definitions {
		if c.synthetic[def.Name] {
			continue
		}
		return def.Name, nil
	}
	return "", &CompileError{Detail: "grammar defines no productions"}
}

func (c *compiler) precedenceForEntry(name string) int {
	if c.leftRecursive[name] {
		return 1
	}
	return 0
}

// bindRecovery binds each declared label to the production whose name
// matches it, if one exists (spec.md §4.4 step 3).
func (c *compiler) bindRecovery() map[string]recoveryBinding {
	out := map[string]recoveryBinding{}
	for label := range c.g.Labels {
		if addr, ok := c.prodAddr[label]; ok {
			out[label] = recoveryBinding{addr: addr, precedence: c.precedenceForEntry(label)}
		}
	}
	// Also bind labels that were never declared via `label X = "..."` but do
	// have a same-named production (a label used only inline, with no
	// message).
	for _, instr := range c.code {
		if instr.Op != OpThrow || !instr.HasRecovery {
			continue
		}
		label := c.strs[instr.ErrorLabel]
		if _, bound := out[label]; bound {
			continue
		}
		if addr, ok := c.prodAddr[label]; ok {
			out[label] = recoveryBinding{addr: addr, precedence: c.precedenceForEntry(label)}
		}
	}
	return out
}

type recoveryBinding struct {
	addr       int
	precedence int
}

// compileGrammar runs the full compiler pipeline: builtins, whitespace
// rewrite, first-pass analysis, emission, and backpatching.
func compileGrammar(g *Grammar, cfg *Config) (*Program, error) {
	if cfg == nil {
		cfg = NewConfig()
	}

	working := NewGrammar()
	working.Labels = g.Labels
	working.Imports = g.Imports
	working.Whitespace = g.Whitespace
	working.StartRule = g.StartRule
	for _, def := range g.Definitions {
		working.Define(def.Name, def.Expr)
		if g.IsMarkedUnwrapped(def.Name) {
			working.MarkUnwrapped(def.Name)
		}
	}

	synthetic := map[string]bool{}
	before := map[string]bool{}
	for _, def := range working.Definitions {
		before[def.Name] = true
	}
	addBuiltins(working)
	for _, def := range working.Definitions {
		if !before[def.Name] {
			synthetic[def.Name] = true
		}
	}

	if cfg.GetBool("whitespace") && working.Whitespace != "" {
		working = rewriteWhitespace(working)
	}

	leftRecursive, unwrapped := analyze(working)

	c := newCompiler(working, cfg, leftRecursive, unwrapped, synthetic)
	if err := c.compileDefinitions(); err != nil {
		return nil, err
	}
	if err := c.resolveCalls(); err != nil {
		return nil, err
	}
	if err := c.resolveMarks(); err != nil {
		return nil, err
	}

	entry, err := c.selectEntryPoint()
	if err != nil {
		return nil, err
	}
	entryAddr := c.prodAddr[entry]
	c.code[0].Addr = entryAddr
	c.code[0].Precedence = c.precedenceForEntry(entry)

	recovery := c.bindRecovery()
	labels := map[int]int{}
	for label, msg := range g.Labels {
		labels[c.intern(label)] = c.intern(msg)
	}
	recoveryByID := map[int]recoveryBinding{}
	for label, binding := range recovery {
		recoveryByID[c.intern(label)] = binding
	}

	prog := &Program{
		Code:        c.code,
		Strings:     c.strs,
		Identifiers: c.identifiers,
		Labels:      labels,
		Recovery:    recoveryByID,
		EntryName:   entry,
	}
	prog.buildID = newBuildID()
	return prog, nil
}
