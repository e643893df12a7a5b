package materials

import "fmt"

// Collection is the ordered list of materials a chat works with. Names are
// unique so that lookups by name are unambiguous. The zero value is an empty
// collection.
type Collection struct {
	items []Material
}

// NewCollection appends items in order and fails on the first repeated name.
func NewCollection(items ...Material) (*Collection, error) {
	c := &Collection{}
	for _, m := range items {
		if err := c.Append(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collection) Append(m Material) error {
	if _, ok := c.Get(m.Name); ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, m.Name)
	}
	m.Position = len(c.items)
	c.items = append(c.items, m)
	return nil
}

func (c *Collection) Get(name string) (Material, bool) {
	for _, m := range c.items {
		if m.Name == name {
			return m, true
		}
	}
	return Material{}, false
}

func (c *Collection) ByID(id int64) (Material, bool) {
	for _, m := range c.items {
		if m.ID == id {
			return m, true
		}
	}
	return Material{}, false
}

// RemoveID deletes the material with the given ID and renumbers the rest.
func (c *Collection) RemoveID(id int64) (Material, bool) {
	for i, m := range c.items {
		if m.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.renumber()
			return m, true
		}
	}
	return Material{}, false
}

func (c *Collection) Clear() { c.items = nil }

func (c *Collection) Len() int { return len(c.items) }

func (c *Collection) Names() []string {
	out := make([]string, 0, len(c.items))
	for _, m := range c.items {
		out = append(out, m.Name)
	}
	return out
}

func (c *Collection) Items() []Material {
	out := make([]Material, len(c.items))
	copy(out, c.items)
	return out
}

// Select returns the materials whose IDs are in ids, in collection order.
func (c *Collection) Select(ids []int64) []Material {
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []Material
	for _, m := range c.items {
		if want[m.ID] {
			out = append(out, m)
		}
	}
	return out
}

func (c *Collection) renumber() {
	for i := range c.items {
		c.items[i].Position = i
	}
}
