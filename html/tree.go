package html

import (
	"github.com/rs/zerolog/log"
)

// The tree is a dense node vector: index 0 is the root sentinel, parents
// always precede their children, and children are implied by parent links.
// Dropping a tag on the TOO_MANY_TAGS path simply never appends a node.

type node struct {
	tag    *Tag
	parent int32
}

type tree struct {
	nodes []node
}

func (t *tree) append(parent int32, tag *Tag) int32 {
	t.nodes = append(t.nodes, node{tag: tag, parent: parent})
	return int32(len(t.nodes) - 1)
}

// prevSibling returns the closest earlier node sharing idx's parent, -1
// when idx is the first child.
func (t *tree) prevSibling(idx int32) int32 {
	parent := t.nodes[idx].parent
	for i := idx - 1; i > 0; i-- {
		if t.nodes[i].parent == parent {
			return i
		}
	}
	return -1
}

// balance reconciles the closing token at nidx against the open stack. A
// matched ancestor is marked closed, the closing node is destroyed and the
// level pops above the match. Self-closed tokens are balanced by
// definition.
func (hc *Content) balance(nidx int32, curLevel *int32) bool {
	arg := hc.tree.nodes[nidx].tag
	if arg.Flags&FLClosing == 0 {
		return true
	}
	cur := hc.tree.nodes[nidx].parent
	for cur > 0 {
		tmp := hc.tree.nodes[cur].tag
		if tmp != nil && tmp.ID == arg.ID && tmp.Flags&FLClosed == 0 {
			tmp.Flags |= FLClosed
			// destroy the closing token; it was appended last
			hc.tree.nodes = hc.tree.nodes[:nidx]
			*curLevel = hc.tree.nodes[cur].parent
			return true
		}
		cur = hc.tree.nodes[cur].parent
	}
	return false
}

// processTag attaches one emitted tag to the tree. The return value tells
// the tokenizer whether the tag's content should be written (true) or
// ignored (false: unknown tags, head content, ignored subtrees).
func (hc *Content) processTag(tag *Tag, curLevel *int32, balanced *bool) bool {
	if len(hc.tree.nodes) == 0 {
		hc.tree.nodes = append(hc.tree.nodes, node{tag: nil, parent: -1})
		*curLevel = 0
	}

	if hc.TotalTags >= maxTags {
		hc.Flags |= FlagTooManyTags
	}

	if tag.ID == -1 {
		hc.TotalTags++
		return false
	}

	if tag.Flags&(CMInline|CMEmpty) == 0 {
		// block tag
		if tag.Flags&(FLClosing|FLClosed) != 0 {
			if *curLevel < 0 {
				log.Debug().Msg("html: bad parent node")
				return false
			}
			if hc.TotalTags < maxTags {
				nidx := hc.tree.append(*curLevel, tag)
				if !hc.balance(nidx, curLevel) {
					log.Debug().Str("tag", string(tag.Name)).
						Msg("html: part is unbalanced, no pairable closing tag")
					hc.Flags |= FlagUnbalanced
					*balanced = false
				} else {
					*balanced = true
				}
				hc.TotalTags++
			}
		} else {
			parent := hc.tree.nodes[*curLevel].tag
			if parent != nil {
				if parent.Flags&FLIgnore != 0 {
					tag.Flags |= FLIgnore
				}
				if tag.Flags&FLClosed == 0 && parent.Flags&FLBlock == 0 {
					if parent.ID == tag.ID {
						// bad nesting like <a>bla<a>foo
						hc.Flags |= FlagUnbalanced
						*balanced = false
						gp := hc.tree.nodes[*curLevel].parent
						if hc.TotalTags < maxTags {
							*curLevel = hc.tree.append(gp, tag)
							hc.TotalTags++
						}
						return true
					}
				}
			}
			if hc.TotalTags < maxTags {
				nidx := hc.tree.append(*curLevel, tag)
				if tag.Flags&FLClosed == 0 {
					*curLevel = nidx
				}
				hc.TotalTags++
			}
			if tag.Flags&(CMHead|CMUnknown|FLIgnore) != 0 {
				tag.Flags |= FLIgnore
				return false
			}
		}
	} else {
		// inline or empty tag: attach without pushing
		if hc.TotalTags < maxTags {
			hc.tree.append(*curLevel, tag)
			hc.TotalTags++
		}
		parent := hc.tree.nodes[*curLevel].tag
		if parent != nil && parent.Flags&(CMHead|CMUnknown|FLIgnore) != 0 {
			tag.Flags |= FLIgnore
			return false
		}
	}

	return true
}

// propagateLengths folds child content lengths into their parents. Children
// always carry larger indices, so a reverse sweep sees grandchildren before
// children.
func (hc *Content) propagateLengths() {
	nodes := hc.tree.nodes
	for i := len(nodes) - 1; i > 0; i-- {
		p := nodes[i].parent
		if p >= 0 && nodes[p].tag != nil && nodes[i].tag != nil {
			nodes[p].tag.ContentLength += nodes[i].tag.ContentLength
		}
	}
}
