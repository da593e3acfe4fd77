// Package curve implements per-level scalable values backed by a shared curve table.
package curve

import (
	"log/slog"
	"math"
	"sort"
)

// Key is one point of a curve: Value at Level.
type Key struct {
	Level float64
	Value float64
}

// SimpleCurve is a piecewise linear curve over ability level.
type SimpleCurve struct {
	keys []Key
}

// AddKey inserts or overwrites the key at level, keeping keys sorted.
func (c *SimpleCurve) AddKey(level, value float64) {
	i := sort.Search(len(c.keys), func(i int) bool { return c.keys[i].Level >= level })
	if i < len(c.keys) && c.keys[i].Level == level {
		c.keys[i].Value = value
		return
	}
	c.keys = append(c.keys, Key{})
	copy(c.keys[i+1:], c.keys[i:])
	c.keys[i] = Key{Level: level, Value: value}
}

// Keys returns a copy of the curve keys.
func (c *SimpleCurve) Keys() []Key {
	out := make([]Key, len(c.keys))
	copy(out, c.keys)
	return out
}

// Eval returns the interpolated value at level, clamped to the first and last key.
// An empty curve evaluates to 1.
func (c *SimpleCurve) Eval(level float64) float64 {
	n := len(c.keys)
	if n == 0 {
		return 1
	}
	if level <= c.keys[0].Level {
		return c.keys[0].Value
	}
	if level >= c.keys[n-1].Level {
		return c.keys[n-1].Value
	}
	i := sort.Search(n, func(i int) bool { return c.keys[i].Level >= level })
	lo, hi := c.keys[i-1], c.keys[i]
	alpha := (level - lo.Level) / (hi.Level - lo.Level)
	return lo.Value + (hi.Value-lo.Value)*alpha
}

// Table is the shared curve table, rows keyed by name ("Cooldown.Fireball").
// Not safe for concurrent use.
type Table struct {
	rows map[string]*SimpleCurve
}

// NewTable creates an empty curve table.
func NewTable() *Table {
	return &Table{rows: make(map[string]*SimpleCurve)}
}

// AddSimpleCurve returns a fresh curve stored under name.
// An existing row with the same name is overwritten, never duplicated.
func (t *Table) AddSimpleCurve(name string) *SimpleCurve {
	c := &SimpleCurve{}
	t.rows[name] = c
	return c
}

// FindCurve returns the curve stored under name.
func (t *Table) FindCurve(name string) (*SimpleCurve, bool) {
	c, ok := t.rows[name]
	return c, ok
}

// RemoveCurve deletes the row.
func (t *Table) RemoveCurve(name string) {
	delete(t.rows, name)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// RowNames returns the row names in sorted order.
func (t *Table) RowNames() []string {
	out := make([]string, 0, len(t.rows))
	for name := range t.rows {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ScalableFloat is a base value optionally scaled by a curve row.
type ScalableFloat struct {
	Value float64
	Table *Table
	Row   string
}

// Constant returns a ScalableFloat without a curve.
func Constant(v float64) ScalableFloat {
	return ScalableFloat{Value: v}
}

// HasCurve returns true if the value is scaled by a curve row.
func (s ScalableFloat) HasCurve() bool {
	return s.Table != nil && s.Row != ""
}

// AtLevel returns Value multiplied by the curve value at level.
// Missing rows leave the base value unscaled.
func (s ScalableFloat) AtLevel(level int) float64 {
	if !s.HasCurve() {
		return s.Value
	}
	c, ok := s.Table.FindCurve(s.Row)
	if !ok {
		return s.Value
	}
	return s.Value * c.Eval(float64(level))
}

// GenerateFromArray converts per-level values into a ScalableFloat.
//
// values[0] is the base. With valuesAreFinal every level i+1 is keyed to
// values[i]/values[0]; otherwise level i+1 is keyed to values[i] as a ratio
// and level 1 is keyed to 1, so level 1 evaluates to the base instead of
// clamping to the level-2 ratio. Costs are forced negative. A multi-value row is
// written to table under row, replacing any previous row of that name.
func GenerateFromArray(table *Table, row string, values []float64, valuesAreFinal, cost bool) ScalableFloat {
	sign := func(v float64) float64 {
		if cost {
			return -math.Abs(v)
		}
		return v
	}

	switch len(values) {
	case 0:
		slog.Warn("empty value array for curve", "row", row)
		return ScalableFloat{}
	case 1:
		return Constant(sign(values[0]))
	}

	base := values[0]
	c := table.AddSimpleCurve(row)

	if valuesAreFinal {
		if base == 0 {
			// Ratios are undefined, key the raw values against a unit base.
			slog.Warn("zero base value for curve, using raw values", "row", row)
			for i, v := range values {
				if cost {
					v = math.Abs(v)
				}
				c.AddKey(float64(i+1), v)
			}
			return ScalableFloat{Value: sign(1), Table: table, Row: row}
		}
		for i, v := range values {
			c.AddKey(float64(i+1), v/base)
		}
	} else {
		c.AddKey(1, 1)
		for i := 1; i < len(values); i++ {
			c.AddKey(float64(i+1), values[i])
		}
	}

	return ScalableFloat{Value: sign(base), Table: table, Row: row}
}
