package content

import (
	"pandoc2hwpx/utils/debug"
)

// String returns a readable tree of the whole Content starting with source
// information. It exists solely for manual inspection during debugging.
func (c *Content) String() string {
	if c == nil {
		return "<nil Content>"
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "Content")
	tw.Text(1, "source", c.SrcName)
	tw.Text(1, "ref", c.RefID.String())
	tw.Text(1, "input dir", c.InputDir)

	out := tw.String()
	if c.Doc != nil {
		out += "\n" + c.Doc.String()
	}
	return out
}
