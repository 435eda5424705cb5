package pandoc

import "strings"

var calloutKinds = map[string]bool{
	"note":      true,
	"tip":       true,
	"warning":   true,
	"caution":   true,
	"important": true,
}

// classifyDiv decides semantic subtype of Div from its classes. Quarto marks
// callouts with "callout-<kind>", figures with "quarto-figure*" and
// executable code cells with "cell" / "cell-output-*".
func classifyDiv(a Attr) Wrapper {
	for _, c := range a.Classes {
		if kind, ok := strings.CutPrefix(c, "callout-"); ok && calloutKinds[kind] {
			return Wrapper{Kind: WrapperCallout, Callout: kind}
		}
	}
	// stream markers come together with generic "cell-output"
	for _, c := range a.Classes {
		if stream, ok := strings.CutPrefix(c, "cell-output-"); ok && (stream == "stdout" || stream == "stderr") {
			return Wrapper{Kind: WrapperCodeCell, Stream: stream}
		}
	}
	for _, c := range a.Classes {
		switch {
		case c == "callout":
			return Wrapper{Kind: WrapperCallout, Callout: "note"}
		case c == "quarto-figure" || strings.HasPrefix(c, "quarto-figure-"):
			return Wrapper{Kind: WrapperFigure}
		case c == "cell" || c == "cell-output" || c == "cell-output-display":
			return Wrapper{Kind: WrapperCodeCell}
		}
	}
	return Wrapper{Kind: WrapperPlain}
}
