package html

// Tag is one parsed element: registry id, instance flags, the attribute
// components that survived deduplication, and the span of visible text
// emitted while the tag was open. Extra holds the semantic payload for
// anchor (*urlx.URL), image (*Image) and block (*Block) tags.
type Tag struct {
	ID    int // -1 for unknown names
	Name  []byte
	Flags uint32

	Components map[Component][]byte

	ContentOffset int
	ContentLength int

	Extra any
}

// Component returns the first stored value for the given component kind.
func (t *Tag) Component(c Component) []byte {
	if t.Components == nil {
		return nil
	}
	return t.Components[c]
}

func (t *Tag) setComponent(c Component, v []byte) {
	if t.Components == nil {
		t.Components = make(map[Component][]byte, 4)
	}
	if _, ok := t.Components[c]; !ok {
		t.Components[c] = v
	}
}
