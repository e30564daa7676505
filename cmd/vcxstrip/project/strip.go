// Package project removes platform-specific build configurations from Visual C++ project files (.vcxproj).
package project

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/willibrandon/vcxstrip/observability"
)

// Extension is the file extension of the project files the stripper accepts.
const Extension = ".vcxproj"

// DefaultPlatform is the platform label stripped when none is configured.
const DefaultPlatform = "Win32"

// DefaultConfigurations returns the build-variant names matched in ProjectConfiguration declarations.
func DefaultConfigurations() []string {
	return []string{"Debug", "Release"}
}

// BlockKind identifies one of the configuration block shapes removed by a Stripper.
type BlockKind int

const (
	// BlockProjectConfiguration is a <ProjectConfiguration> declaration inside the ProjectConfigurations item group.
	BlockProjectConfiguration BlockKind = iota
	// BlockPropertyGroup is a <PropertyGroup Label="Configuration"> for the platform.
	BlockPropertyGroup
	// BlockImportGroup is an <ImportGroup Label="PropertySheets"> for the platform.
	BlockImportGroup
	// BlockItemDefinitionGroup is an <ItemDefinitionGroup> for the platform.
	BlockItemDefinitionGroup
)

// BlockKinds lists every kind in the order the passes run.
var BlockKinds = []BlockKind{
	BlockProjectConfiguration,
	BlockPropertyGroup,
	BlockImportGroup,
	BlockItemDefinitionGroup,
}

// String returns the metric label for the kind.
func (k BlockKind) String() string {
	switch k {
	case BlockProjectConfiguration:
		return "project_configuration"
	case BlockPropertyGroup:
		return "property_group"
	case BlockImportGroup:
		return "import_group"
	case BlockItemDefinitionGroup:
		return "item_definition_group"
	default:
		return fmt.Sprintf("BlockKind(%d)", int(k))
	}
}

// ErrInvalidOptions is returned by NewStripper for an empty platform or configuration list.
var ErrInvalidOptions = errors.New("invalid strip options")

// StripOptions selects what a Stripper removes.
type StripOptions struct {
	Platform       string
	Configurations []string
}

// StripResult describes what a strip removed.
type StripResult struct {
	Modified bool
	Removed  map[BlockKind]int
}

// Total returns the number of removed blocks across all kinds.
func (r StripResult) Total() int {
	total := 0
	for _, n := range r.Removed {
		total += n
	}
	return total
}

type pass struct {
	kind    BlockKind
	pattern *regexp.Regexp
}

// Stripper removes the configuration blocks of one platform from project text.
// It matches text, not XML: a block nesting another element with its own tag name
// ends at the inner closing tag.
type Stripper struct {
	opts   StripOptions
	passes []pass
	logger observability.Logger
}

// NewStripper compiles the removal passes for opts.
func NewStripper(opts StripOptions, logger observability.Logger) (*Stripper, error) {
	if strings.TrimSpace(opts.Platform) == "" {
		return nil, fmt.Errorf("%w: platform is required", ErrInvalidOptions)
	}

	var configs []string
	for _, c := range opts.Configurations {
		if c = strings.TrimSpace(c); c != "" {
			configs = append(configs, regexp.QuoteMeta(c))
		}
	}
	if len(configs) == 0 {
		return nil, fmt.Errorf("%w: at least one configuration is required", ErrInvalidOptions)
	}

	if logger == nil {
		logger = observability.NewNullLogger()
	}

	platform := regexp.QuoteMeta(opts.Platform)
	variant := "(?:" + strings.Join(configs, "|") + ")"
	condition := `Condition="[^"]*` + platform + `[^"]*"`

	passes := []pass{
		{
			kind: BlockProjectConfiguration,
			pattern: regexp.MustCompile(
				`    <ProjectConfiguration Include="` + variant + `\|` + platform + `">\s*\n` +
					`\s*<Configuration>` + variant + `</Configuration>\s*\n` +
					`\s*<Platform>` + platform + `</Platform>\s*\n` +
					`\s*</ProjectConfiguration>\s*\n`),
		},
		{
			kind:    BlockPropertyGroup,
			pattern: regexp.MustCompile(`(?s)  <PropertyGroup ` + condition + ` Label="Configuration">.*?</PropertyGroup>\s*\n`),
		},
		{
			kind:    BlockImportGroup,
			pattern: regexp.MustCompile(`(?s)  <ImportGroup Label="PropertySheets" ` + condition + `>.*?</ImportGroup>\s*\n`),
		},
		{
			kind:    BlockItemDefinitionGroup,
			pattern: regexp.MustCompile(`(?s)  <ItemDefinitionGroup ` + condition + `>.*?</ItemDefinitionGroup>\s*\n`),
		},
	}

	return &Stripper{
		opts:   opts,
		passes: passes,
		logger: logger,
	}, nil
}

// Platform returns the platform label this stripper removes.
func (s *Stripper) Platform() string {
	return s.opts.Platform
}

// StripText applies the removal passes in order, each on the output of the previous one.
// text must use LF line endings.
func (s *Stripper) StripText(text string) (string, StripResult) {
	result := StripResult{Removed: make(map[BlockKind]int, len(s.passes))}
	out := text
	for _, p := range s.passes {
		n := len(p.pattern.FindAllStringIndex(out, -1))
		if n == 0 {
			continue
		}
		out = p.pattern.ReplaceAllLiteralString(out, "")
		result.Removed[p.kind] = n
	}
	result.Modified = out != text
	return out, result
}

// StripFile strips the project file at path in place.
// The file is rewritten only when the text changed.
func (s *Stripper) StripFile(ctx context.Context, path string) (result StripResult, err error) {
	ctx, span := observability.StartStripSpan(ctx, path)
	defer func() { observability.EndSpanWithError(span, err) }()

	pf, err := LoadProjectFile(path)
	if err != nil {
		return StripResult{}, err
	}

	stripped, result := s.StripText(pf.Text())
	observability.RecordStripResult(ctx, result.Modified, result.Total())

	for _, kind := range BlockKinds {
		if n := result.Removed[kind]; n > 0 {
			s.logger.DebugContext(ctx, "Removed {Count} {Kind} blocks from {Path}", n, kind.String(), path)
		}
	}

	if !result.Modified {
		return result, nil
	}

	if err := pf.Save(stripped); err != nil {
		return result, err
	}

	s.logger.InfoContext(ctx, "Stripped {Platform} from {Path} ({Blocks} blocks)", s.opts.Platform, path, result.Total())
	return result, nil
}
