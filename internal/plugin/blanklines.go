package plugin

import (
	"regexp"

	"github.com/vk/confwatch/internal/compiler"
)

// BlankLinesName is the registry name of the blank-line removal plugin.
const BlankLinesName = "strip-blank-lines"

// blankLine matches a whitespace-only line together with its terminator.
// RE2's \s is ASCII only, so vertical tab, NEL, BOM and the Unicode space
// separators are listed explicitly.
var blankLine = regexp.MustCompile(`(?m)^[\s\v\p{Z}\x{85}\x{FEFF}]*[\r\n]`)

// DeleteEmptyLines removes every line that holds only whitespace. Lines with
// any other content are kept verbatim.
func DeleteEmptyLines(text string) string {
	return blankLine.ReplaceAllString(text, "")
}

// BlankLines taps the after-render point with DeleteEmptyLines.
type BlankLines struct{}

func (BlankLines) Name() string { return BlankLinesName }

func (p BlankLines) Apply(c *compiler.Compiler) {
	c.Hooks().Tap(compiler.AfterRender, p.Name(), func(text string) (string, error) {
		return DeleteEmptyLines(text), nil
	})
}
