package hcl

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/confwatch/internal/config"
	"github.com/vk/confwatch/internal/ctxlog"
	"github.com/vk/confwatch/internal/plugin"
	"github.com/vk/confwatch/internal/version"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// defaultTemplatePlugins apply to template targets that omit plugins.
var defaultTemplatePlugins = []string{plugin.BlankLinesName}

func translateTemplate(ctx context.Context, b *templateBlock, dir string, evalCtx *hcl.EvalContext) (*config.TemplateTarget, error) {
	logger := ctxlog.FromContext(ctx)

	if strings.TrimSpace(b.Template) == "" {
		return nil, fmt.Errorf("template %q: template must not be empty", b.Name)
	}
	plugins, err := decodePlugins(b.Plugins, evalCtx, defaultTemplatePlugins)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", b.Name, err)
	}

	target := &config.TemplateTarget{
		Name:         b.Name,
		TemplateDir:  resolve(dir, b.TemplateDir),
		TemplateName: b.Template,
		OutputDir:    resolve(dir, b.OutputDir),
		Versions:     version.FromFloats(b.Versions),
		ContextEnv:   b.ContextEnv,
		Watch:        resolveAll(dir, b.Watch),
		Plugins:      plugins,
		Strict:       b.Strict,
	}
	if b.OutputDir == "" {
		target.OutputDir = target.TemplateDir
	}

	collisions := version.Collisions(target.Versions)
	for _, name := range version.SortedKeys(collisions) {
		logger.Warn("Versions share an output file; the last one rendered wins.",
			"target", b.Name, "file", name, "count", len(collisions[name]))
	}

	logger.Debug("Translated template target.",
		"target", b.Name, "versions", len(target.Versions), "plugins", target.Plugins)
	return target, nil
}

func translateConcat(b *concatBlock, dir string, evalCtx *hcl.EvalContext) (*config.ConcatTarget, error) {
	if strings.ContainsRune(b.OutputName, filepath.Separator) {
		return nil, fmt.Errorf("concat %q: output_name must be a file name, got %q", b.Name, b.OutputName)
	}
	plugins, err := decodePlugins(b.Plugins, evalCtx, nil)
	if err != nil {
		return nil, fmt.Errorf("concat %q: %w", b.Name, err)
	}
	return &config.ConcatTarget{
		Name:       b.Name,
		SourceDir:  resolve(dir, b.SourceDir),
		Zdotdir:    resolve(dir, b.Zdotdir),
		OutputName: b.OutputName,
		Watch:      resolveAll(dir, b.Watch),
		Plugins:    plugins,
	}, nil
}

// decodePlugins evaluates the optional plugins expression. A missing
// attribute evaluates to null and yields def; an explicit list, even an
// empty one, is used as written.
func decodePlugins(expr hcl.Expression, evalCtx *hcl.EvalContext, def []string) ([]string, error) {
	if expr == nil {
		return def, nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return def, nil
	}

	listType := cty.List(cty.String)
	converted, err := convert.Convert(val, listType)
	if err != nil {
		return nil, fmt.Errorf("cannot convert plugins from %s to %s: %w",
			val.Type().FriendlyName(), listType.FriendlyName(), err)
	}
	out := []string{}
	if err := gocty.FromCtyValue(converted, &out); err != nil {
		return nil, fmt.Errorf("failed to decode plugins: %w", err)
	}
	return out, nil
}

func resolve(dir, p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}

func resolveAll(dir string, ps []string) []string {
	if len(ps) == 0 {
		return nil
	}
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = resolve(dir, p)
	}
	return out
}
