package pegrun

import "fmt"

// VM executes one compiled Program against one value sequence. One parse =
// one VM instance = one owned set of stacks (spec.md §5): there is no
// shared mutable state between concurrent VMs over the same Program.
type VM struct {
	prog *Program
	cfg  *Config

	src []StreamValue
	cur int
	ffp int

	pc     int
	frames []frame
	caps   *captureStack
	memo   *memoTable

	predDepth int

	maxDepth int
}

// NewVM constructs a VM ready to match src against prog.
func NewVM(prog *Program, src []StreamValue, cfg *Config) *VM {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &VM{
		prog:     prog,
		cfg:      cfg,
		src:      src,
		caps:     newCaptureStack(),
		memo:     newMemoTable(),
		maxDepth: cfg.GetInt("max-stack-depth"),
	}
}

func (vm *VM) currentValue() (StreamValue, bool) {
	if vm.cur < 0 || vm.cur >= len(vm.src) {
		return nil, false
	}
	return vm.src[vm.cur], true
}

func (vm *VM) advance() {
	vm.cur++
	if vm.cur > vm.ffp {
		vm.ffp = vm.cur
	}
}

// Run executes the program to completion, returning the root captured
// value (or nil, if the grammar matched but produced no captures) on
// success, or a *ParsingError on an unrecoverable failure.
func (vm *VM) Run() (Value, error) {
	for {
		if len(vm.frames) > vm.maxDepth {
			return nil, fmt.Errorf("pegrun: frame stack exceeded max depth %d", vm.maxDepth)
		}
		instr := vm.prog.Code[vm.pc]
		switch instr.Op {
		case OpHalt:
			return vm.result(), nil

		case OpAny:
			cv, ok := vm.currentValue()
			if !ok {
				if err := vm.fail(); err != nil {
					return nil, err
				}
				continue
			}
			vm.pushCapture(streamToValue(cv, Range{vm.cur, vm.cur + 1}))
			vm.advance()
			vm.pc++

		case OpChar:
			cv, ok := vm.currentValue()
			r, rok := streamAsRune(cv)
			if !ok || !rok || r != instr.Lo {
				if err := vm.fail(); err != nil {
					return nil, err
				}
				continue
			}
			vm.pushCapture(NewChar(r, Range{vm.cur, vm.cur + 1}))
			vm.advance()
			vm.pc++

		case OpSpan:
			cv, ok := vm.currentValue()
			r, rok := streamAsRune(cv)
			if !ok || !rok || r < instr.Lo || r > instr.Hi {
				if err := vm.fail(); err != nil {
					return nil, err
				}
				continue
			}
			vm.pushCapture(NewChar(r, Range{vm.cur, vm.cur + 1}))
			vm.advance()
			vm.pc++

		case OpStr:
			if !vm.matchStr(vm.prog.Strings[instr.Str]) {
				if err := vm.fail(); err != nil {
					return nil, err
				}
				continue
			}
			vm.pc++

		case OpChoice:
			vm.pushChoice(instr.Addr, false)
			vm.pc++

		case OpChoiceP:
			vm.pushChoice(instr.Addr, true)
			vm.pc++

		case OpCommit, OpCommitB:
			f := vm.popFrame()
			if f.kind != frameChoice {
				panic("pegrun: internal error: commit without matching choice frame")
			}
			if f.predicate {
				vm.predDepth--
			}
			vm.pc = instr.Addr

		case OpPartialCommit:
			f := vm.topFrame()
			if f.kind != frameChoice {
				panic("pegrun: internal error: partial_commit without matching choice frame")
			}
			f.choiceCur = vm.cur
			f.capTrunc = vm.caps.top().committed
			vm.pc = instr.Addr

		case OpBackCommit:
			f := vm.popFrame()
			if f.kind != frameChoice {
				panic("pegrun: internal error: back_commit without matching choice frame")
			}
			vm.cur = f.choiceCur
			if f.predicate {
				vm.predDepth--
			}
			vm.pc = instr.Addr

		case OpFail:
			if err := vm.fail(); err != nil {
				return nil, err
			}

		case OpFailTwice:
			f := vm.popFrame()
			if f.predicate {
				vm.predDepth--
			}
			if err := vm.fail(); err != nil {
				return nil, err
			}

		case OpJump:
			vm.pc = instr.Addr

		case OpCall, OpCallB:
			if instr.Precedence > 0 {
				if err := vm.callLR(instr.Addr, instr.Precedence); err != nil {
					return nil, err
				}
			} else {
				vm.callPlain(instr.Addr)
			}

		case OpReturn:
			if err := vm.doReturn(instr.Cap); err != nil {
				return nil, err
			}

		case OpThrow:
			if err := vm.doThrow(instr); err != nil {
				return nil, err
			}

		case OpOpen:
			if err := vm.doOpen(); err != nil {
				return nil, err
			}

		case OpClose:
			vm.doClose(instr.Kind)

		case OpCapPush:
			if vm.predDepth == 0 {
				vm.caps.push()
			}
			vm.pc++

		case OpCapPop:
			if vm.predDepth == 0 {
				popped := vm.caps.pop()
				for _, v := range popped.values {
					vm.caps.top().push(v)
				}
			}
			vm.pc++

		case OpCapCommit:
			if vm.predDepth == 0 {
				vm.caps.top().commit()
			}
			vm.pc++

		default:
			return nil, fmt.Errorf("pegrun: internal error: unknown opcode %v", instr.Op)
		}
	}
}

func (vm *VM) result() Value {
	root := vm.caps.top()
	if len(root.values) == 0 {
		return nil
	}
	return root.values[len(root.values)-1]
}

func (vm *VM) pushCapture(v Value) {
	if vm.predDepth > 0 {
		return
	}
	vm.caps.top().push(v)
}

func (vm *VM) pushChoice(target int, predicate bool) {
	vm.frames = append(vm.frames, frame{
		kind:      frameChoice,
		choicePC:  target,
		choiceCur: vm.cur,
		predicate: predicate,
		capTrunc:  vm.caps.top().committed,
	})
	if predicate {
		vm.predDepth++
	}
}

func (vm *VM) topFrame() *frame {
	return &vm.frames[len(vm.frames)-1]
}

func (vm *VM) popFrame() frame {
	f := vm.frames[len(vm.frames)-1]
	vm.frames = vm.frames[:len(vm.frames)-1]
	return f
}

// matchStr implements spec.md §4.1's dual String semantics: try the whole
// interned string against a single value first, then fall back to matching
// one character of it per consumed value.
func (vm *VM) matchStr(text string) bool {
	if cv, ok := vm.currentValue(); ok && streamEqualsWholeString(cv, text) {
		vm.pushCapture(NewString(text, Range{vm.cur, vm.cur + 1}))
		vm.advance()
		return true
	}
	runes := []rune(text)
	start := vm.cur
	for i, r := range runes {
		cv, ok := vm.currentValueAt(start + i)
		if !ok || !streamEqualsChar(cv, r) {
			return false
		}
	}
	for range runes {
		vm.advance()
	}
	vm.pushCapture(NewString(text, Range{start, vm.cur}))
	return true
}

func (vm *VM) currentValueAt(idx int) (StreamValue, bool) {
	if idx < 0 || idx >= len(vm.src) {
		return nil, false
	}
	return vm.src[idx], true
}

// fail implements spec.md §4.1's unified fail-handling algorithm. It
// returns a non-nil error only when the unwind exhausts the frame stack
// (a hard matching error); nil means it found a backtrack frame (or an
// already-advanced LR call) and execution should simply continue from the
// updated vm.pc/vm.cur.
func (vm *VM) fail() error {
	for len(vm.frames) > 0 {
		top := vm.topFrame()
		switch top.kind {
		case frameCall:
			if top.isLR {
				if entry, ok := vm.memo.get(top.key); ok && entry.seeded {
					vm.memo.evict(top.key)
					vm.popFrame()
					if !top.noCaps {
						vm.caps.pop()
					}
					continue
				}
				if top.result > 0 {
					// An already-advanced LR iteration: consume it as a
					// successful completion instead of continuing to fail
					// (spec.md §4.1: "consume it as a successful completion
					// of the iteration and stop unwinding").
					vm.finalizeLR(*top)
					vm.popFrame()
					return nil
				}
			}
			vm.popFrame()
			if !top.noCaps {
				vm.caps.pop()
			}
			continue

		case frameList:
			vm.popFrame()
			if !top.noCaps {
				vm.caps.pop()
			}
			vm.src = top.outer
			vm.cur = top.outerIdx
			continue

		case frameChoice:
			vm.popFrame()
			vm.cur = top.choiceCur
			vm.pc = top.choicePC
			cf := vm.caps.top()
			if top.capTrunc <= len(cf.values) {
				cf.values = cf.values[:top.capTrunc]
			}
			cf.committed = top.capTrunc
			if top.predicate {
				vm.predDepth--
			}
			return nil
		}
	}
	return &ParsingError{FFP: vm.ffp, Message: "no alternative matched"}
}

func (vm *VM) callPlain(addr int) {
	name, _ := vm.prog.NameAt(addr)
	noCaps := vm.predDepth > 0
	vm.frames = append(vm.frames, frame{
		kind:       frameCall,
		returnPC:   vm.pc + 1,
		name:       name,
		noCaps:     noCaps,
		precedence: 0,
	})
	if !noCaps {
		vm.caps.push()
	}
	vm.pc = addr
}

// callLR implements spec.md §4.3's four-way `Call address, k` branch with
// k > 0, following the Rust original's `inst_call` (SPEC_FULL.md §C.2).
func (vm *VM) callLR(addr, precedence int) error {
	key := memoKey{addr: addr, cursor: vm.cur}
	name, _ := vm.prog.NameAt(addr)
	noCaps := vm.predDepth > 0
	returnPC := vm.pc + 1

	entry, ok := vm.memo.get(key)
	switch {
	case !ok:
		vm.memo.seed(key, precedence)
		vm.frames = append(vm.frames, frame{
			kind: frameCall, returnPC: returnPC, name: name, noCaps: noCaps,
			isLR: true, precedence: precedence, key: key, result: -1, entryCur: vm.cur,
		})
		if !noCaps {
			vm.caps.push()
		}
		vm.pc = addr

	case entry.seeded || precedence < entry.precedence:
		return vm.fail()

	default:
		vm.cur = entry.cursor
		if !noCaps {
			vm.pushCapture(entry.value)
		}
		vm.pc = returnPC
	}
	return nil
}

func (vm *VM) doReturn(mode CapMode) error {
	top := vm.popFrame()
	if top.kind != frameCall {
		panic("pegrun: internal error: return without matching call frame")
	}

	if top.isLR {
		return vm.returnLR(top, mode)
	}

	var val Value
	if !top.noCaps {
		cf := vm.caps.pop()
		val = buildWrappedValue(cf, mode, top.name)
	}

	if top.isRecovery {
		errVal := NewError(top.recoveryLabel, top.recoveryMsg, val, Range{})
		vm.pushCapture(errVal)
	} else if val != nil {
		switch mode {
		case CapUnwrapped:
			// val is already a flattened representation; unwrap its
			// children directly into the caller's frame.
			if seq, ok := val.(*Sequence); ok {
				for _, v := range seq.Items {
					vm.pushCapture(v)
				}
			} else {
				vm.pushCapture(val)
			}
		default:
			vm.pushCapture(val)
		}
	}

	vm.pc = top.returnPC
	return nil
}

// returnLR implements spec.md §4.3's Return-side grow/finalize rule.
func (vm *VM) returnLR(top frame, mode CapMode) error {
	entry, ok := vm.memo.get(top.key)
	if !ok {
		return fmt.Errorf("pegrun: internal error: missing left-recursion memo entry")
	}

	newCur := vm.cur
	cf := vm.caps.pop()
	grown := buildWrappedValue(cf, mode, top.name)
	if len(cf.values) == 1 {
		// A lone node already named after this production is forwarded
		// unchanged instead of being re-wrapped (SPEC_FULL.md §C.3).
		if n, isNode := cf.values[0].(*Node); isNode && n.Name == top.name {
			grown = n
		}
	}

	if entry.seeded || newCur > entry.cursor {
		entry.cursor = newCur
		entry.seeded = false
		entry.iteration++
		if top.precedence > entry.precedence {
			entry.precedence = top.precedence
		}
		entry.value = grown

		vm.frames = append(vm.frames, frame{
			kind: frameCall, returnPC: top.returnPC, name: top.name, noCaps: top.noCaps,
			isLR: true, precedence: top.precedence, key: top.key, result: newCur, entryCur: top.entryCur,
		})
		if !top.noCaps {
			vm.caps.push()
		}
		vm.cur = top.entryCur
		vm.pc = top.key.addr
		return nil
	}

	vm.finalizeLR(top)
	vm.pc = top.returnPC
	return nil
}

// finalizeLR pops the memo entry and pushes its accumulated value into the
// now-restored caller frame, without re-entering the production.
func (vm *VM) finalizeLR(top frame) {
	entry, ok := vm.memo.get(top.key)
	if !ok {
		return
	}
	vm.cur = entry.cursor
	val := entry.value
	vm.memo.evict(top.key)
	if !top.noCaps && val != nil {
		vm.pushCapture(val)
	}
}

// doThrow implements spec.md §4.5's three-way Throw behavior.
func (vm *VM) doThrow(instr Instr) error {
	if vm.predDepth > 0 {
		return vm.fail()
	}
	binding, ok := vm.prog.Recovery[instr.ErrorLabel]
	if !ok {
		msg := ""
		if msgID, hasMsg := vm.prog.Labels[instr.ErrorLabel]; hasMsg {
			msg = vm.prog.Strings[msgID]
		}
		label := vm.prog.Strings[instr.ErrorLabel]
		return &ParsingError{FFP: vm.ffp, Label: label, Message: msg}
	}

	msg := ""
	if msgID, hasMsg := vm.prog.Labels[instr.ErrorLabel]; hasMsg {
		msg = vm.prog.Strings[msgID]
	}
	label := vm.prog.Strings[instr.ErrorLabel]
	name, _ := vm.prog.NameAt(binding.addr)
	noCaps := vm.predDepth > 0

	vm.frames = append(vm.frames, frame{
		kind: frameCall, returnPC: vm.pc + 1, name: name, noCaps: noCaps,
		isRecovery: true, recoveryLabel: label, recoveryMsg: msg,
	})
	if !noCaps {
		vm.caps.push()
	}
	vm.pc = binding.addr
	return nil
}

func (vm *VM) doOpen() error {
	cv, ok := vm.currentValue()
	if !ok {
		return vm.fail()
	}
	list, isList := cv.(StreamList)
	if !isList {
		return vm.fail()
	}
	noCaps := vm.predDepth > 0
	vm.frames = append(vm.frames, frame{
		kind: frameList, outer: vm.src, outerIdx: vm.cur, noCaps: noCaps,
	})
	if !noCaps {
		vm.caps.push()
	}
	vm.src = list.Items
	vm.cur = 0
	vm.pc++
	return nil
}

func (vm *VM) doClose(kind NodeKind) {
	top := vm.popFrame()
	var cf *capFrame
	if !top.noCaps {
		cf = vm.caps.pop()
	}
	vm.src = top.outer
	vm.cur = top.outerIdx + 1
	vm.pc++
	if top.noCaps {
		return
	}

	var val Value
	switch kind {
	case KindList:
		val = NewSequence(cf.values, Range{})
	case KindNode:
		if len(cf.values) == 0 {
			val = NewNode("", nil, Range{})
			break
		}
		nameVal, _ := cf.values[0].(*String)
		name := ""
		if nameVal != nil {
			name = nameVal.Text
		}
		rest := cf.values[1:]
		var expr Value
		switch len(rest) {
		case 0:
			expr = nil
		case 1:
			expr = rest[0]
		default:
			expr = NewSequence(rest, Range{})
		}
		val = NewNode(name, expr, Range{})
	}
	vm.pushCapture(val)
}

// buildWrappedValue implements the non-predicate, non-recovery half of
// spec.md §4.2's Wrapped capture rule: no values -> nil; otherwise a node
// labelled with name containing the captured values in order. The
// same-name "forward unchanged" guard described in spec.md §4.2's prose is
// applied only within left-recursive grow/finalize (returnLR, SPEC_FULL.md §C.3),
// never here — applying it unconditionally collapses structural-match
// self-nesting scenarios that are supposed to stay nested (spec.md §8
// scenario 5: `A <- {A: 'aba'}` on a pre-built `A["a","b","a"]` node
// produces `A[A[aba]]`, not `A[aba]`).
func buildWrappedValue(cf *capFrame, mode CapMode, name string) Value {
	if mode == CapDisabled {
		return nil
	}
	if len(cf.values) == 0 {
		return nil
	}
	var expr Value
	if len(cf.values) == 1 {
		expr = cf.values[0]
	} else {
		expr = NewSequence(cf.values, Range{})
	}
	if mode == CapUnwrapped {
		// Returned to doReturn/returnLR as a Sequence so the caller can
		// iterate the original value list without a wrapping node.
		return NewSequence(cf.values, Range{})
	}
	return NewNode(name, expr, Range{})
}

// streamAsRune extracts a single rune from a StreamValue, for Char/Span
// matching (a structural element may be a one-character StreamString
// rather than a StreamChar — spec.md §8 scenario 5 matches terminals
// against pre-built string atoms).
func streamAsRune(sv StreamValue) (rune, bool) {
	switch v := sv.(type) {
	case StreamChar:
		return v.R, true
	case StreamString:
		rs := []rune(v.S)
		if len(rs) == 1 {
			return rs[0], true
		}
	}
	return 0, false
}

func streamEqualsChar(sv StreamValue, r rune) bool {
	got, ok := streamAsRune(sv)
	return ok && got == r
}

func streamEqualsWholeString(sv StreamValue, s string) bool {
	if ss, ok := sv.(StreamString); ok {
		return ss.S == s
	}
	return false
}

// streamToValue converts one StreamValue (and, recursively, any nested
// StreamList) into the Value tree shape, for `Any` matching a structural
// element without an explicit Open/Close.
func streamToValue(sv StreamValue, rg Range) Value {
	switch v := sv.(type) {
	case StreamChar:
		return NewChar(v.R, rg)
	case StreamString:
		return NewString(v.S, rg)
	case StreamList:
		if len(v.Items) > 0 {
			if name, ok := v.Items[0].(StreamString); ok {
				children := make([]Value, 0, len(v.Items)-1)
				for _, it := range v.Items[1:] {
					children = append(children, streamToValue(it, rg))
				}
				var expr Value
				switch len(children) {
				case 0:
				case 1:
					expr = children[0]
				default:
					expr = NewSequence(children, rg)
				}
				return NewNode(name.S, expr, rg)
			}
		}
		items := make([]Value, len(v.Items))
		for i, it := range v.Items {
			items[i] = streamToValue(it, rg)
		}
		return NewSequence(items, rg)
	}
	return nil
}
