package nbt

import (
	"strconv"
	"strings"
)

func (t *End) String() string       { return render(t) }
func (t *Byte) String() string      { return render(t) }
func (t *Short) String() string     { return render(t) }
func (t *Int) String() string       { return render(t) }
func (t *Long) String() string      { return render(t) }
func (t *Float) String() string     { return render(t) }
func (t *Double) String() string    { return render(t) }
func (t *ByteArray) String() string { return render(t) }
func (t *String) String() string    { return render(t) }
func (t *IntArray) String() string  { return render(t) }
func (t *List) String() string      { return render(t) }
func (t *Compound) String() string  { return render(t) }

func render(t Tag) string {
	var sb strings.Builder
	writeTree(&sb, t, 0)

	return sb.String()
}

// writeTree renders t as "[KIND] name: value". Containers list their size and
// then their children one per line, indented by one tab per level.
func writeTree(sb *strings.Builder, t Tag, depth int) {
	sb.WriteByte('[')
	sb.WriteString(t.Kind().String())
	sb.WriteByte(']')
	if t.Name() != "" {
		sb.WriteByte(' ')
		sb.WriteString(t.Name())
	}

	var children []Tag
	switch t := t.(type) {
	case *End:
		return
	case *Byte:
		writeValue(sb, strconv.FormatInt(int64(t.Value), 10))
	case *Short:
		writeValue(sb, strconv.FormatInt(int64(t.Value), 10))
	case *Int:
		writeValue(sb, strconv.FormatInt(int64(t.Value), 10))
	case *Long:
		writeValue(sb, strconv.FormatInt(t.Value, 10))
	case *Float:
		writeValue(sb, strconv.FormatFloat(float64(t.Value), 'g', -1, 32))
	case *Double:
		writeValue(sb, strconv.FormatFloat(t.Value, 'g', -1, 64))
	case *String:
		writeValue(sb, strconv.Quote(t.Value))
	case *ByteArray:
		writeSize(sb, len(t.Value))
	case *IntArray:
		writeSize(sb, len(t.Value))
	case *List:
		sb.WriteString(" <")
		sb.WriteString(t.elem.String())
		sb.WriteByte('>')
		writeSize(sb, len(t.items))
		children = t.items
	case *Compound:
		writeSize(sb, len(t.items))
		children = t.items
	}

	if len(children) == 0 {
		return
	}
	sb.WriteString(" {\n")
	for _, child := range children {
		sb.WriteString(strings.Repeat("\t", depth+1))
		writeTree(sb, child, depth+1)
		sb.WriteByte('\n')
	}
	sb.WriteString(strings.Repeat("\t", depth))
	sb.WriteByte('}')
}

func writeValue(sb *strings.Builder, v string) {
	sb.WriteString(": ")
	sb.WriteString(v)
}

func writeSize(sb *strings.Builder, n int) {
	sb.WriteString(" (")
	sb.WriteString(strconv.Itoa(n))
	sb.WriteByte(')')
}
