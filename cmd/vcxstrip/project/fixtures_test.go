package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// The builders below emit the layout Visual Studio writes for a C++ console
// application, one block per configuration and platform.

func declaration(cfg, platform string) string {
	return fmt.Sprintf(`    <ProjectConfiguration Include="%[1]s|%[2]s">
      <Configuration>%[1]s</Configuration>
      <Platform>%[2]s</Platform>
    </ProjectConfiguration>
`, cfg, platform)
}

func propertyGroup(cfg, platform string) string {
	return fmt.Sprintf(`  <PropertyGroup Condition="'$(Configuration)|$(Platform)'=='%s|%s'" Label="Configuration">
    <ConfigurationType>Application</ConfigurationType>
    <UseDebugLibraries>%t</UseDebugLibraries>
    <PlatformToolset>v143</PlatformToolset>
    <WholeProgramOptimization>%t</WholeProgramOptimization>
    <CharacterSet>Unicode</CharacterSet>
  </PropertyGroup>
`, cfg, platform, cfg == "Debug", cfg != "Debug")
}

func importGroup(cfg, platform string) string {
	return fmt.Sprintf(`  <ImportGroup Label="PropertySheets" Condition="'$(Configuration)|$(Platform)'=='%s|%s'">
    <Import Project="$(UserRootDir)\Microsoft.Cpp.$(Platform).user.props" Condition="exists('$(UserRootDir)\Microsoft.Cpp.$(Platform).user.props')" Label="LocalAppDataPlatform" />
  </ImportGroup>
`, cfg, platform)
}

func itemDefinitionGroup(cfg, platform string) string {
	return fmt.Sprintf(`  <ItemDefinitionGroup Condition="'$(Configuration)|$(Platform)'=='%s|%s'">
    <ClCompile>
      <WarningLevel>Level3</WarningLevel>
      <SDLCheck>true</SDLCheck>
      <PreprocessorDefinitions>_CONSOLE;%%(PreprocessorDefinitions)</PreprocessorDefinitions>
      <ConformanceMode>true</ConformanceMode>
    </ClCompile>
    <Link>
      <SubSystem>Console</SubSystem>
      <GenerateDebugInformation>true</GenerateDebugInformation>
    </Link>
  </ItemDefinitionGroup>
`, cfg, platform)
}

// vcxproj renders a complete project file with Debug and Release blocks for each platform.
func vcxproj(platforms ...string) string {
	configs := DefaultConfigurations()
	each := func(render func(cfg, platform string) string) string {
		var b strings.Builder
		for _, platform := range platforms {
			for _, cfg := range configs {
				b.WriteString(render(cfg, platform))
			}
		}
		return b.String()
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>
<Project DefaultTargets="Build" xmlns="http://schemas.microsoft.com/developer/msbuild/2003">
  <ItemGroup Label="ProjectConfigurations">
`)
	b.WriteString(each(declaration))
	b.WriteString(`  </ItemGroup>
  <PropertyGroup Label="Globals">
    <VCProjectVersion>17.0</VCProjectVersion>
    <ProjectGuid>{8F2B5A4C-1D3E-4F60-9A7B-2C4D6E8F0A1B}</ProjectGuid>
    <RootNamespace>cmdapp1</RootNamespace>
  </PropertyGroup>
  <Import Project="$(VCTargetsPath)\Microsoft.Cpp.Default.props" />
`)
	b.WriteString(each(propertyGroup))
	b.WriteString(`  <Import Project="$(VCTargetsPath)\Microsoft.Cpp.props" />
  <ImportGroup Label="ExtensionSettings">
  </ImportGroup>
  <ImportGroup Label="Shared">
  </ImportGroup>
`)
	b.WriteString(each(importGroup))
	b.WriteString(`  <PropertyGroup Label="UserMacros" />
`)
	b.WriteString(each(itemDefinitionGroup))
	b.WriteString(`  <ItemGroup>
    <ClCompile Include="main.cpp" />
  </ItemGroup>
  <Import Project="$(VCTargetsPath)\Microsoft.Cpp.targets" />
  <ImportGroup Label="ExtensionTargets">
  </ImportGroup>
</Project>
`)
	return b.String()
}

func writeProject(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestStripper(t *testing.T, platform string) *Stripper {
	t.Helper()
	s, err := NewStripper(StripOptions{
		Platform:       platform,
		Configurations: DefaultConfigurations(),
	}, nil)
	require.NoError(t, err)
	return s
}
