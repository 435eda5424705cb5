// Package debug has helpers producing human readable dumps for debug reports.
package debug

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/maruel/natural"
)

// TreeWriter accumulates indented lines, two spaces per depth level.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{w: &strings.Builder{}}
}

func (tw *TreeWriter) String() string {
	return tw.w.String()
}

func (tw *TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

// Line writes formatted line at depth.
func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Text writes label and quoted value, nothing when value is empty.
func (tw *TreeWriter) Text(depth int, label, value string) {
	if value == "" {
		return
	}
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(strconv.Quote(value))
	tw.w.WriteByte('\n')
}

// Map writes map entries as "key=value" in natural key order on one line.
func (tw *TreeWriter) Map(depth int, label string, m map[string]string) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Sort(natural.StringSlice(keys))

	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(":")
	for _, k := range keys {
		fmt.Fprintf(tw.w, " %s=%s", k, strconv.Quote(m[k]))
	}
	tw.w.WriteByte('\n')
}
