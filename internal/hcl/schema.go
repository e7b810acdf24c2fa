package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes every top-level block a config file may contain.
type fileRoot struct {
	Templates []*templateBlock `hcl:"template,block"`
	Concats   []*concatBlock   `hcl:"concat,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

type templateBlock struct {
	Name        string    `hcl:"name,label"`
	TemplateDir string    `hcl:"template_dir"`
	Template    string    `hcl:"template"`
	OutputDir   string    `hcl:"output_dir,optional"`
	Versions    []float64 `hcl:"versions,optional"`
	ContextEnv  []string  `hcl:"context_env,optional"`
	Watch       []string  `hcl:"watch,optional"`
	Strict      bool      `hcl:"strict,optional"`
	// Plugins stays an expression so an omitted attribute can be told apart
	// from an explicit empty list.
	Plugins hcl.Expression `hcl:"plugins,optional"`
}

type concatBlock struct {
	Name       string         `hcl:"name,label"`
	SourceDir  string         `hcl:"source_dir"`
	Zdotdir    string         `hcl:"zdotdir"`
	OutputName string         `hcl:"output_name,optional"`
	Watch      []string       `hcl:"watch,optional"`
	Plugins    hcl.Expression `hcl:"plugins,optional"`
}
