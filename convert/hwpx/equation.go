package hwpx

import (
	"regexp"
	"strings"

	"github.com/beevik/etree"
)

// rewriteRule is one step of LaTeX to HWP equation script translation.
// Either pattern or literal is set.
type rewriteRule struct {
	pattern     *regexp.Regexp
	literal     string
	replacement string
}

func (r rewriteRule) apply(s string) string {
	if r.pattern != nil {
		return r.pattern.ReplaceAllString(s, r.replacement)
	}
	return strings.ReplaceAll(s, r.literal, r.replacement)
}

func structural(expr, repl string) rewriteRule {
	return rewriteRule{pattern: regexp.MustCompile(expr), replacement: repl}
}

func symbol(cmd, repl string) rewriteRule {
	return rewriteRule{literal: cmd, replacement: repl}
}

// Order matters: compound structures must be rewritten before the catch-all
// strips their command names. Nested braces are not supported.
var equationRules = []rewriteRule{
	structural(`\\frac\{([^}]*)\}\{([^}]*)\}`, `{${1}} over {${2}}`),
	structural(`\\sum_\{([^}]*)\}\^\{([^}]*)\}`, `sum from{${1}} to{${2}}`),
	structural(`\\int_\{([^}]*)\}\^\{([^}]*)\}`, `int from{${1}} to{${2}}`),
	structural(`\\sqrt\{([^}]*)\}`, `sqrt{${1}}`),

	symbol(`\left(`, `left(`),
	symbol(`\right)`, `right)`),
	symbol(`\left[`, `left[`),
	symbol(`\right]`, `right]`),
	symbol(`\left\{`, `left lbrace `),
	symbol(`\right\}`, `right rbrace `),

	symbol(`\geq`, `>=`),
	symbol(`\leq`, `<=`),
	symbol(`\neq`, `<>`),
	symbol(`\times`, `times`),
	symbol(`\cdots`, `cdots`),
	symbol(`\cdot`, `cdot`),
	symbol(`\ldots`, `ldots`),
	symbol(`\infty`, `inf`),
	symbol(`\pm`, `+-`),
	symbol(`\mp`, `-+`),
	symbol(`\approx`, `approx`),
	symbol(`\equiv`, `equiv`),
	symbol(`\partial`, `partial`),
	symbol(`\nabla`, `nabla`),
	symbol(`\rightarrow`, `rightarrow`),
	symbol(`\leftarrow`, `leftarrow`),
	symbol(`\Rightarrow`, `Rightarrow`),
	symbol(`\Leftarrow`, `Leftarrow`),

	// greek letters and everything else
	structural(`\\([a-zA-Z]+)`, `${1}`),
}

// TranspileEquation rewrites LaTeX math source into HWP equation script.
func TranspileEquation(latex string) string {
	s := strings.Trim(strings.TrimSpace(latex), "$")
	for _, r := range equationRules {
		s = r.apply(s)
	}
	return s
}

func newEquation(latex string) *etree.Element {
	eq := etree.NewElement("hp:equation")
	eq.CreateAttr("version", "eqEdit")
	eq.CreateAttr("baseLine", "0")
	eq.CreateAttr("textColor", "#000000")
	eq.CreateAttr("baseUnit", "1000")
	eq.CreateAttr("lineMode", "0")
	eq.CreateAttr("font", "")
	eq.CreateElement("hp:script").SetText(TranspileEquation(latex))
	return eq
}
