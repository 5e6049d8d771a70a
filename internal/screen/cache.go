package screen

// FieldCache tracks the last value rendered per display field so updates can
// skip unchanged fields.
type FieldCache struct {
	last map[string]string
}

func NewFieldCache() *FieldCache {
	return &FieldCache{last: make(map[string]string)}
}

// ShouldRedraw reports whether value differs from the last rendered value for
// field, storing it when it does. The decision is single-use: a true return
// updates the stored value immediately, so callers must call once per render
// attempt and must draw when true.
func (c *FieldCache) ShouldRedraw(field, value string) bool {
	if prev, ok := c.last[field]; ok && prev == value {
		return false
	}
	c.last[field] = value
	return true
}

// Reset forgets every stored value, forcing the next render to treat all
// fields as changed.
func (c *FieldCache) Reset() {
	c.last = make(map[string]string)
}
