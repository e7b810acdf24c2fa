package hcl

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

var functions = map[string]function.Function{
	"upper":  stdlib.UpperFunc,
	"lower":  stdlib.LowerFunc,
	"format": stdlib.FormatFunc,
	"concat": stdlib.ConcatFunc,
	"join":   stdlib.JoinFunc,
}

// newEvalContext exposes config_dir and env to expressions in one file.
func newEvalContext(configDir string, env map[string]string) *hcl.EvalContext {
	envVal := cty.MapValEmpty(cty.String)
	if len(env) > 0 {
		vals := make(map[string]cty.Value, len(env))
		for k, v := range env {
			vals[k] = cty.StringVal(v)
		}
		envVal = cty.MapVal(vals)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"config_dir": cty.StringVal(configDir),
			"env":        envVal,
		},
		Functions: functions,
	}
}
