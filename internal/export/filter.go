package export

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"questgen/internal/contract"
)

// Filter is a compiled per-question selection expression. The expression
// sees {stem, bloom, correct, edited} and must yield a boolean, for example
// `edited or bloom == "Apply"` or `correct != "A"`.
type Filter struct {
	src  string
	prog *vm.Program
}

// CompileFilter compiles src. An empty source yields a nil filter, which
// matches everything.
func CompileFilter(src string) (*Filter, error) {
	if src == "" {
		return nil, nil
	}
	prog, err := expr.Compile(src, expr.Env(filterEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression %q: %w", src, err)
	}
	return &Filter{src: src, prog: prog}, nil
}

type filterEnv struct {
	Stem    string `expr:"stem"`
	Bloom   string `expr:"bloom"`
	Correct string `expr:"correct"`
	Edited  bool   `expr:"edited"`
}

// Match evaluates the filter for one question. A nil filter matches.
func (f *Filter) Match(q contract.Question, bloomLevel string, edited bool) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, err := expr.Run(f.prog, filterEnv{
		Stem:    q.Stem,
		Bloom:   bloomLevel,
		Correct: q.CorrectOptionID,
		Edited:  edited,
	})
	if err != nil {
		return false, fmt.Errorf("filter expression %q: %w", f.src, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}
