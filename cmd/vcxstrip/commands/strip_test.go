package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/vcxstrip/cmd/vcxstrip/output"
	"github.com/willibrandon/vcxstrip/cmd/vcxstrip/project"
	"github.com/willibrandon/vcxstrip/observability"
)

const win32Project = `<?xml version="1.0" encoding="utf-8"?>
<Project DefaultTargets="Build" xmlns="http://schemas.microsoft.com/developer/msbuild/2003">
  <ItemGroup Label="ProjectConfigurations">
    <ProjectConfiguration Include="Debug|Win32">
      <Configuration>Debug</Configuration>
      <Platform>Win32</Platform>
    </ProjectConfiguration>
    <ProjectConfiguration Include="Debug|x64">
      <Configuration>Debug</Configuration>
      <Platform>x64</Platform>
    </ProjectConfiguration>
  </ItemGroup>
  <PropertyGroup Condition="'$(Configuration)|$(Platform)'=='Debug|Win32'" Label="Configuration">
    <ConfigurationType>Application</ConfigurationType>
  </PropertyGroup>
  <PropertyGroup Condition="'$(Configuration)|$(Platform)'=='Debug|x64'" Label="Configuration">
    <ConfigurationType>Application</ConfigurationType>
  </PropertyGroup>
  <ImportGroup Label="PropertySheets" Condition="'$(Configuration)|$(Platform)'=='Debug|Win32'">
    <Import Project="$(UserRootDir)\Microsoft.Cpp.$(Platform).user.props" />
  </ImportGroup>
  <ItemDefinitionGroup Condition="'$(Configuration)|$(Platform)'=='Debug|Win32'">
    <ClCompile>
      <WarningLevel>Level3</WarningLevel>
    </ClCompile>
  </ItemDefinitionGroup>
</Project>
`

const x64Project = `<?xml version="1.0" encoding="utf-8"?>
<Project DefaultTargets="Build" xmlns="http://schemas.microsoft.com/developer/msbuild/2003">
  <ItemGroup Label="ProjectConfigurations">
    <ProjectConfiguration Include="Debug|x64">
      <Configuration>Debug</Configuration>
      <Platform>x64</Platform>
    </ProjectConfiguration>
  </ItemGroup>
  <PropertyGroup Condition="'$(Configuration)|$(Platform)'=='Debug|x64'" Label="Configuration">
    <ConfigurationType>Application</ConfigurationType>
  </PropertyGroup>
</Project>
`

func newTestConsole() (*output.Console, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	console := output.NewConsole(&out, &errOut, output.VerbosityNormal)
	console.SetColors(false)
	return console, &out, &errOut
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRunStrip_MixedArguments(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.vcxproj", win32Project)
	b := writeFile(t, dir, "b.vcxproj", x64Project)
	c := filepath.Join(dir, "missing.vcxproj")

	console, out, _ := newTestConsole()
	err := RunStrip(context.Background(), console, []string{a, b, c}, DefaultStripOptions())
	require.NoError(t, err)

	want := "Modified: " + a + "\n" +
		"No changes needed: " + b + "\n" +
		"Skipped: " + c + " (not found or not a .vcxproj file)\n" +
		"\n" +
		"Total files modified: 1\n"
	assert.Equal(t, want, out.String())

	assert.Equal(t, x64Project, readFile(t, a))
	assert.Equal(t, x64Project, readFile(t, b))
}

func TestRunStrip_NoArguments(t *testing.T) {
	console, out, _ := newTestConsole()

	err := RunStrip(context.Background(), console, nil, DefaultStripOptions())
	assert.ErrorIs(t, err, ErrNoFiles)
	assert.Equal(t, "Usage: vcxstrip <vcxproj_file> [<vcxproj_file> ...]\n", out.String())
}

func TestRunStrip_SkipsIneligiblePaths(t *testing.T) {
	dir := t.TempDir()
	wrongExt := writeFile(t, dir, "a.txt", win32Project)
	upperExt := writeFile(t, dir, "b.VCXPROJ", win32Project)
	bare := writeFile(t, dir, ".vcxproj", win32Project)
	asDir := filepath.Join(dir, "folder.vcxproj")
	require.NoError(t, os.Mkdir(asDir, 0755))

	console, out, _ := newTestConsole()
	err := RunStrip(context.Background(), console, []string{wrongExt, upperExt, bare, asDir}, DefaultStripOptions())
	require.NoError(t, err)

	for _, p := range []string{wrongExt, upperExt, bare, asDir} {
		assert.Contains(t, out.String(), "Skipped: "+p+" (not found or not a .vcxproj file)\n")
	}
	assert.True(t, strings.HasSuffix(out.String(), "\nTotal files modified: 0\n"))

	// Skipped files are never touched.
	assert.Equal(t, win32Project, readFile(t, wrongExt))
	assert.Equal(t, win32Project, readFile(t, upperExt))
	assert.Equal(t, win32Project, readFile(t, bare))
}

func TestRunStrip_SecondRunChangesNothing(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.vcxproj", win32Project)

	console, out, _ := newTestConsole()
	require.NoError(t, RunStrip(context.Background(), console, []string{a}, DefaultStripOptions()))
	out.Reset()

	require.NoError(t, RunStrip(context.Background(), console, []string{a}, DefaultStripOptions()))
	assert.Equal(t, "No changes needed: "+a+"\n\nTotal files modified: 0\n", out.String())
}

func TestRunStrip_DuplicateArgumentsProcessedTwice(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.vcxproj", win32Project)

	console, out, _ := newTestConsole()
	require.NoError(t, RunStrip(context.Background(), console, []string{a, a}, DefaultStripOptions()))
	assert.Equal(t, "Modified: "+a+"\nNo changes needed: "+a+"\n\nTotal files modified: 1\n", out.String())
}

func TestRunStrip_GlobExpansion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, filepath.Join("app", "app.vcxproj"), win32Project)
	writeFile(t, dir, filepath.Join("lib", "core", "core.vcxproj"), win32Project)
	writeFile(t, dir, filepath.Join("lib", "notes.txt"), "notes")

	console, out, _ := newTestConsole()
	pattern := filepath.Join(dir, "**", "*.vcxproj")
	require.NoError(t, RunStrip(context.Background(), console, []string{pattern}, DefaultStripOptions()))

	assert.Contains(t, out.String(), "Modified: "+filepath.Join(dir, "app", "app.vcxproj")+"\n")
	assert.Contains(t, out.String(), "Modified: "+filepath.Join(dir, "lib", "core", "core.vcxproj")+"\n")
	assert.NotContains(t, out.String(), "notes.txt")
	assert.Contains(t, out.String(), "Total files modified: 2\n")
}

func TestRunStrip_GlobWithoutMatchesIsSkipped(t *testing.T) {
	dir := t.TempDir()
	pattern := filepath.Join(dir, "*.vcxproj")

	console, out, _ := newTestConsole()
	require.NoError(t, RunStrip(context.Background(), console, []string{pattern}, DefaultStripOptions()))
	assert.Equal(t, "Skipped: "+pattern+" (not found or not a .vcxproj file)\n\nTotal files modified: 0\n", out.String())
}

func TestRunStrip_FailureDoesNotStopBatch(t *testing.T) {
	dir := t.TempDir()
	broken := writeFile(t, dir, "broken.vcxproj", "\xff\xfe<\x00P\x00r\x00o\x00j\x00")
	good := writeFile(t, dir, "good.vcxproj", win32Project)

	console, out, errOut := newTestConsole()
	err := RunStrip(context.Background(), console, []string{broken, good}, DefaultStripOptions())

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 1, batchErr.Failed)
	assert.Equal(t, 2, batchErr.Total)
	assert.Equal(t, "1 of 2 files could not be processed", batchErr.Error())

	assert.Contains(t, errOut.String(), "Error: failed to process "+broken+": ")
	assert.Equal(t, "Modified: "+good+"\n\nTotal files modified: 1\n", out.String())
	assert.Equal(t, x64Project, readFile(t, good))
}

func TestRunStrip_CustomPlatform(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.vcxproj", x64Project)

	opts := DefaultStripOptions()
	opts.Platform = "x64"

	console, out, _ := newTestConsole()
	require.NoError(t, RunStrip(context.Background(), console, []string{a}, opts))
	assert.Contains(t, out.String(), "Modified: "+a+"\n")

	content := readFile(t, a)
	assert.NotContains(t, content, "x64")
	assert.Contains(t, content, `<ItemGroup Label="ProjectConfigurations">`)
}

func TestRunStrip_InvalidPlatform(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.vcxproj", win32Project)

	opts := DefaultStripOptions()
	opts.Platform = ""

	console, _, _ := newTestConsole()
	err := RunStrip(context.Background(), console, []string{a}, opts)
	assert.ErrorIs(t, err, project.ErrInvalidOptions)
	assert.Equal(t, win32Project, readFile(t, a))
}

func TestRunStrip_Solution(t *testing.T) {
	dir := t.TempDir()
	app := writeFile(t, dir, filepath.Join("app", "app.vcxproj"), win32Project)
	sln := writeFile(t, dir, "all.sln", "Microsoft Visual Studio Solution File, Format Version 12.00\r\n"+
		`Project("{8BC9CEB8-8B4A-11D0-8D11-00A0C91EEA6F}") = "app", "app\app.vcxproj", "{8F2B5A4C-1D3E-4F60-9A7B-2C4D6E8F0A1B}"`+"\r\n"+
		"EndProject\r\n"+
		`Project("{2150E333-8FDC-42A3-9474-1A3956D46DE8}") = "docs", "docs", "{11111111-2222-3333-4444-555555555555}"`+"\r\n"+
		"EndProject\r\n")

	opts := DefaultStripOptions()
	opts.Solutions = []string{sln}

	console, out, _ := newTestConsole()
	require.NoError(t, RunStrip(context.Background(), console, nil, opts))

	assert.Equal(t, "Modified: "+app+"\n\nTotal files modified: 1\n", out.String())
	assert.Equal(t, x64Project, readFile(t, app))
}

func TestRunStrip_SolutionNotFound(t *testing.T) {
	opts := DefaultStripOptions()
	opts.Solutions = []string{filepath.Join(t.TempDir(), "missing.sln")}

	console, out, _ := newTestConsole()
	err := RunStrip(context.Background(), console, nil, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read solution")
	assert.Empty(t, out.String())
}

func TestRunStrip_JSONFormat(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.vcxproj", win32Project)
	b := writeFile(t, dir, "b.vcxproj", x64Project)
	c := filepath.Join(dir, "c.txt")

	opts := DefaultStripOptions()
	opts.Format = FormatJSON

	console, out, _ := newTestConsole()
	require.NoError(t, RunStrip(context.Background(), console, []string{a, b, c}, opts))

	var run output.StripRunOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &run))

	assert.Equal(t, output.CurrentSchemaVersion, run.SchemaVersion)
	assert.Equal(t, "Win32", run.Platform)
	assert.Equal(t, 1, run.TotalModified)
	require.Len(t, run.Files, 3)

	assert.Equal(t, a, run.Files[0].Path)
	assert.Equal(t, output.StatusModified, run.Files[0].Status)
	assert.Equal(t, map[string]int{
		"project_configuration": 1,
		"property_group":        1,
		"import_group":          1,
		"item_definition_group": 1,
	}, run.Files[0].BlocksRemoved)

	assert.Equal(t, output.StatusUnchanged, run.Files[1].Status)
	assert.Empty(t, run.Files[1].BlocksRemoved)
	assert.Equal(t, output.StatusSkipped, run.Files[2].Status)
}

func TestRunStrip_MetricsFile(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.vcxproj", win32Project)
	b := writeFile(t, dir, "b.vcxproj", x64Project)
	metricsPath := filepath.Join(dir, "vcxstrip.prom")

	opts := DefaultStripOptions()
	opts.MetricsFile = metricsPath

	console, _, _ := newTestConsole()
	require.NoError(t, RunStrip(context.Background(), console, []string{a, b, "missing.vcxproj"}, opts))

	metrics := readFile(t, metricsPath)
	assert.Contains(t, metrics, `vcxstrip_files_total{outcome="modified"} 1`)
	assert.Contains(t, metrics, `vcxstrip_files_total{outcome="unchanged"} 1`)
	assert.Contains(t, metrics, `vcxstrip_files_total{outcome="skipped"} 1`)
	assert.Contains(t, metrics, `vcxstrip_blocks_removed_total{kind="property_group"} 1`)
}

func TestRunStrip_StdoutTraceExporter(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.vcxproj", win32Project)

	opts := DefaultStripOptions()
	opts.TraceExporter = "stdout"

	console, out, errOut := newTestConsole()
	require.NoError(t, RunStrip(context.Background(), console, []string{a}, opts))

	// Spans go to stderr, stdout keeps the result lines only.
	assert.Equal(t, "Modified: "+a+"\n\nTotal files modified: 1\n", out.String())
	assert.Contains(t, errOut.String(), "vcxstrip.run")
	assert.Contains(t, errOut.String(), "project.strip")
}

func TestRunStrip_QuietVerbosity(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.vcxproj", win32Project)

	opts := DefaultStripOptions()
	opts.Verbosity = "quiet"

	console, out, _ := newTestConsole()
	require.NoError(t, RunStrip(context.Background(), console, []string{a}, opts))
	assert.Equal(t, "\nTotal files modified: 1\n", out.String())
}

func TestRunStrip_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.vcxproj", win32Project)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	console, _, _ := newTestConsole()
	err := RunStrip(ctx, console, []string{a}, DefaultStripOptions())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, win32Project, readFile(t, a))
}

func TestStripOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*StripOptions)
		wantErr bool
	}{
		{"defaults", func(*StripOptions) {}, false},
		{"json format", func(o *StripOptions) { o.Format = FormatJSON }, false},
		{"diagnostic verbosity", func(o *StripOptions) { o.Verbosity = "diag" }, false},
		{"otlp exporter", func(o *StripOptions) { o.TraceExporter = "otlp" }, false},
		{"bad verbosity", func(o *StripOptions) { o.Verbosity = "loud" }, true},
		{"bad format", func(o *StripOptions) { o.Format = "xml" }, true},
		{"bad exporter", func(o *StripOptions) { o.TraceExporter = "jaeger" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultStripOptions()
			tt.modify(opts)
			err := opts.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewRootCommand(t *testing.T) {
	console, _, _ := newTestConsole()
	cmd := NewRootCommand(console)

	assert.True(t, strings.HasPrefix(cmd.Use, "vcxstrip"))
	assert.NotEmpty(t, cmd.Short)

	for _, name := range []string{"platform", "configuration", "solution", "verbosity", "format", "metrics-file", "trace-exporter", "otlp-endpoint"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %s", name)
	}
	assert.NotNil(t, cmd.Flags().ShorthandLookup("v"))
}

func TestNewRootCommand_Execute(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.vcxproj", x64Project)

	console, out, _ := newTestConsole()
	cmd := NewRootCommand(console)
	cmd.SetArgs([]string{"--platform", "x64", a})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "Modified: "+a+"\n\nTotal files modified: 1\n", out.String())
}

func TestNewRootCommand_NoArgs(t *testing.T) {
	console, out, _ := newTestConsole()
	cmd := NewRootCommand(console)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	assert.ErrorIs(t, err, ErrNoFiles)
	assert.Contains(t, out.String(), usageLine)
}

func TestNewRootCommand_InvalidFlagValue(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.vcxproj", win32Project)

	console, out, _ := newTestConsole()
	cmd := NewRootCommand(console)
	cmd.SetArgs([]string{"--format", "yaml", a})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Empty(t, out.String())
	assert.Equal(t, win32Project, readFile(t, a))
}

func TestLogLevelFor(t *testing.T) {
	assert.Equal(t, observability.ErrorLevel, logLevelFor(output.VerbosityQuiet))
	assert.Equal(t, observability.WarnLevel, logLevelFor(output.VerbosityNormal))
	assert.Equal(t, observability.InfoLevel, logLevelFor(output.VerbosityDetailed))
	assert.Equal(t, observability.DebugLevel, logLevelFor(output.VerbosityDiagnostic))
}
