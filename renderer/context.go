package renderer

// Context is an ordered set of named values injected into a template.
// The zero value is ready to use.
type Context struct {
	keys   []string
	values map[string]any
}

// NewContext returns an empty Context with room for n keys.
func NewContext(n int) Context {
	return Context{keys: make([]string, 0, n), values: make(map[string]any, n)}
}

// Set stores value under key. Re-setting a key keeps its original position.
func (c *Context) Set(key string, value any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
}

// Get returns the value stored under key.
func (c Context) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Has reports whether key is present.
func (c Context) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (c Context) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len returns the number of keys.
func (c Context) Len() int { return len(c.keys) }

// Map returns a shallow copy of the values for template engines.
func (c Context) Map() map[string]any {
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// ContextFromMap builds a Context from m; keys are visited in order when given.
func ContextFromMap(m map[string]any, order ...string) Context {
	ctx := NewContext(len(m))
	seen := make(map[string]bool, len(order))
	for _, k := range order {
		if v, ok := m[k]; ok {
			ctx.Set(k, v)
			seen[k] = true
		}
	}
	for k, v := range m {
		if !seen[k] {
			ctx.Set(k, v)
		}
	}
	return ctx
}
