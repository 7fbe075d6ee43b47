package html

import (
	"github.com/smarsching/rspamd/mempool"
)

// Component identifies a recognized attribute kind. Several source names
// collapse into one component: href, src and action all feed ComponentHref.
type Component uint8

const (
	ComponentName Component = iota
	ComponentHref
	ComponentColor
	ComponentBgcolor
	ComponentStyle
	ComponentClass
	ComponentWidth
	ComponentHeight
	ComponentSize
	ComponentRel
	ComponentAlt
)

// Keyed by name rather than atom: legacy attributes like bgcolor sit
// outside the html5 atom table.
var componentsMap = map[string]Component{
	"name":    ComponentName,
	"href":    ComponentHref,
	"src":     ComponentHref,
	"action":  ComponentHref,
	"color":   ComponentColor,
	"bgcolor": ComponentBgcolor,
	"style":   ComponentStyle,
	"class":   ComponentClass,
	"width":   ComponentWidth,
	"height":  ComponentHeight,
	"size":    ComponentSize,
	"rel":     ComponentRel,
	"alt":     ComponentAlt,
}

// findComponentName resolves an attribute name slice to a component. The
// name is entity-decoded and lowercased on a copy before lookup; unknown
// names report false and the attribute is parsed but discarded.
func findComponentName(pool *mempool.Pool, b []byte) (Component, bool) {
	if len(b) == 0 {
		return 0, false
	}
	buf := pool.Copy(b)
	buf = buf[:DecodeEntitiesInplace(buf)]
	asciiLowerInplace(buf)
	c, ok := componentsMap[string(buf)]
	return c, ok
}
