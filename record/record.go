package record

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// Field is a single named cell of a Record.
type Field struct {
	Name  string
	Value Value
}

// Record is an ordered mapping from column name to Value.
// The zero value is an empty record ready to use.
type Record struct {
	fields []Field
}

// New builds a record from alternating column/value pairs.
// A trailing column without a value is ignored.
//
//	record.New("doc_id", 1, "text", "hello world")
func New(kvs ...any) Record {
	r := Record{fields: make([]Field, 0, len(kvs)/2)}
	for i := 0; i+1 < len(kvs); i += 2 {
		name, ok := kvs[i].(string)
		if !ok {
			name = fmt.Sprint(kvs[i])
		}
		r.put(name, kvs[i+1])
	}
	return r
}

// FromMap builds a record from a map; columns are ordered by name.
func FromMap(m map[string]any) Record {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	r := Record{fields: make([]Field, 0, len(names))}
	for _, name := range names {
		r.fields = append(r.fields, Field{Name: name, Value: Normalize(m[name])})
	}
	return r
}

func (r Record) index(name string) int {
	for i := range r.fields {
		if r.fields[i].Name == name {
			return i
		}
	}
	return -1
}

// Len returns the number of columns.
func (r Record) Len() int { return len(r.fields) }

// Has reports whether the column is present.
func (r Record) Has(name string) bool { return r.index(name) >= 0 }

// Get returns the value of a column and whether it is present.
func (r Record) Get(name string) (Value, bool) {
	if i := r.index(name); i >= 0 {
		return r.fields[i].Value, true
	}
	return nil, false
}

// Value returns the column value, or nil when absent.
func (r Record) Value(name string) Value {
	v, _ := r.Get(name)
	return v
}

// Set assigns a column, appending it when it does not exist yet.
// Records copied by value never observe each other's updates: Set and
// Delete always write to fresh storage.
func (r *Record) Set(name string, v Value) {
	v = Normalize(v)
	if i := r.index(name); i >= 0 {
		fields := r.Fields()
		fields[i].Value = v
		r.fields = fields
		return
	}
	n := len(r.fields)
	r.fields = append(r.fields[:n:n], Field{Name: name, Value: v})
}

// put writes in place; only for records under construction.
func (r *Record) put(name string, v Value) {
	v = Normalize(v)
	if i := r.index(name); i >= 0 {
		r.fields[i].Value = v
		return
	}
	r.fields = append(r.fields, Field{Name: name, Value: v})
}

// Delete removes a column if present.
func (r *Record) Delete(name string) {
	if i := r.index(name); i >= 0 {
		fields := make([]Field, 0, len(r.fields)-1)
		fields = append(fields, r.fields[:i]...)
		r.fields = append(fields, r.fields[i+1:]...)
	}
}

// Columns returns the column names in order.
func (r Record) Columns() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// Fields returns a copy of the record's fields in order.
func (r Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	return Record{fields: r.Fields()}
}

// Key extracts the values of the given columns; missing columns yield nil.
func (r Record) Key(columns []string) Key {
	k := make(Key, len(columns))
	for i, c := range columns {
		k[i] = r.Value(c)
	}
	return k
}

// Equal reports whether both records hold the same columns with equal
// values, regardless of column order.
func (r Record) Equal(o Record) bool {
	if len(r.fields) != len(o.fields) {
		return false
	}
	for _, f := range r.fields {
		v, ok := o.Get(f.Name)
		if !ok || !Equal(f.Value, v) {
			return false
		}
	}
	return true
}

// Map returns the record as a plain map.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.fields))
	for _, f := range r.fields {
		m[f.Name] = f.Value
	}
	return m
}

// String renders the record as {name: value, ...} in column order.
func (r Record) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		if s, ok := f.Value.(string); ok {
			fmt.Fprintf(&sb, "%s: %q", f.Name, s)
		} else {
			fmt.Fprintf(&sb, "%s: %v", f.Name, f.Value)
		}
	}
	sb.WriteByte('}')
	return sb.String()
}

// --- typed accessors ---

// GetString returns the column converted to a string.
func (r Record) GetString(name string) (string, error) {
	v, err := r.require(name)
	if err != nil {
		return "", err
	}
	return cast.ToStringE(v)
}

// GetInt returns the column converted to an int64.
func (r Record) GetInt(name string) (int64, error) {
	v, err := r.require(name)
	if err != nil {
		return 0, err
	}
	return cast.ToInt64E(v)
}

// GetFloat returns the column converted to a float64.
func (r Record) GetFloat(name string) (float64, error) {
	v, err := r.require(name)
	if err != nil {
		return 0, err
	}
	return cast.ToFloat64E(v)
}

func (r Record) require(name string) (Value, error) {
	v, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("record: missing column %q", name)
	}
	return v, nil
}

// Builder assembles a record in place without the copy-on-write cost of Set.
type Builder struct {
	r Record
}

// NewBuilder returns a builder with room for n columns.
func NewBuilder(n int) *Builder {
	return &Builder{r: Record{fields: make([]Field, 0, n)}}
}

// Set assigns a column of the record under construction.
func (b *Builder) Set(name string, v Value) *Builder {
	b.r.put(name, v)
	return b
}

// Has reports whether the record under construction has the column.
func (b *Builder) Has(name string) bool { return b.r.Has(name) }

// Delete removes a column of the record under construction.
func (b *Builder) Delete(name string) *Builder {
	b.r.Delete(name)
	return b
}

// Record returns the built record. The builder must not be reused.
func (b *Builder) Record() Record {
	r := b.r
	b.r = Record{}
	return r
}
