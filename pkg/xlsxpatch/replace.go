package xlsxpatch

import (
	"regexp"

	"github.com/ukaji3/xlsxpatch/pkg/xlsxpatch/parser"
)

// TextReplace replaces every match of pattern in the shared string table and
// returns how many text runs changed. Inline strings and formulas are not
// touched.
func (p *Package) TextReplace(pattern *regexp.Regexp, repl string) (int, error) {
	if err := p.checkOpen(); err != nil {
		return 0, err
	}
	sst, err := p.frags.root(parser.SharedStringsPart)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, t := range sst.FindElements("//t") {
		old := t.Text()
		if s := pattern.ReplaceAllString(old, repl); s != old {
			t.SetText(s)
			setSpacePreserve(t, s)
			changed++
		}
	}
	if changed > 0 {
		p.markDirty(parser.SharedStringsPart)
		p.log.Debug("replaced shared text", "pattern", pattern.String(), "count", changed)
	}
	return changed, nil
}

// TextReplaceString compiles pattern and calls TextReplace.
func (p *Package) TextReplaceString(pattern, repl string) (int, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, &PackageError{Kind: ErrInvalidArgument, Msg: "bad pattern", Err: err}
	}
	return p.TextReplace(re, repl)
}
