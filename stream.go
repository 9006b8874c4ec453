package pegrun

// StreamValue is one element of a caller-supplied, already-structured value
// sequence (spec.md §3 "Runtime values" / §4.1 "Structural matching"). Unlike
// a char-stream Input, a StreamValue sequence is matched element-by-element:
// `Open` descends into a StreamList, `Close` climbs back out.
//
// A named node is represented, exactly as in the reference Rust
// implementation (original_source/src/vm.rs), as a StreamList whose first
// element is a StreamString holding the node's name — so `Open`/`Close` only
// ever need to understand "is this a list", never a third node shape.
type StreamValue interface {
	isStreamValue()
}

type StreamChar struct{ R rune }
type StreamString struct{ S string }
type StreamList struct{ Items []StreamValue }

func (StreamChar) isStreamValue()   {}
func (StreamString) isStreamValue() {}
func (StreamList) isStreamValue()   {}

// NewStreamNode builds the list-with-leading-name-string representation of a
// named node input value.
func NewStreamNode(name string, children ...StreamValue) StreamList {
	return StreamList{Items: append([]StreamValue{StreamString{S: name}}, children...)}
}

// streamFromString turns plain text into a StreamValue sequence of
// StreamChars, letting the same `Open`/element-matching code path run over
// structured input built by hand in tests without a separate code path.
func streamFromString(s string) []StreamValue {
	runes := []rune(s)
	out := make([]StreamValue, len(runes))
	for i, r := range runes {
		out[i] = StreamChar{R: r}
	}
	return out
}
