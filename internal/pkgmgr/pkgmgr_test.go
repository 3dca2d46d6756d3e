package pkgmgr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dimos/internal/host/hosttest"
)

func TestAptCommands(t *testing.T) {
	f := hosttest.New()
	apt := Apt{R: f}
	ctx := context.Background()

	require.NoError(t, apt.Update(ctx))
	require.NoError(t, apt.Install(ctx, "portaudio19-dev", "g++"))
	assert.Equal(t, []string{
		"sudo apt-get update",
		"sudo apt-get install -y portaudio19-dev g++",
	}, f.Ran)
}

func TestAptInstalled(t *testing.T) {
	f := hosttest.New()
	f.Outputs[hosttest.Line("dpkg-query", "-W", "-f=${Status}", "python3-dev")] = "install ok installed"
	f.Outputs[hosttest.Line("dpkg-query", "-W", "-f=${Status}", "libturbojpeg0-dev")] = "deinstall ok config-files"
	apt := Apt{R: f}
	ctx := context.Background()

	assert.True(t, apt.Installed(ctx, "python3-dev"))
	assert.False(t, apt.Installed(ctx, "libturbojpeg0-dev"))
	assert.False(t, apt.Installed(ctx, "not-listed"))
}

func TestBrewNixUV(t *testing.T) {
	f := hosttest.New()
	ctx := context.Background()

	require.NoError(t, Brew{R: f}.Install(ctx, "jpeg-turbo"))
	require.NoError(t, Nix{R: f}.Install(ctx, "git-lfs"))
	require.NoError(t, UV{R: f}.ToolInstall(ctx, "pre-commit"))
	assert.Equal(t, []string{
		"brew install jpeg-turbo",
		"nix profile install nixpkgs#git-lfs",
		"uv tool install pre-commit",
	}, f.Ran)
}

func TestRunErrorPropagates(t *testing.T) {
	f := hosttest.New()
	want := hosttest.Fail("brew install gcc", "Error: no bottle")
	f.RunErrors["brew install gcc"] = want
	err := Brew{R: f}.Install(context.Background(), "gcc")
	assert.Same(t, want, err)
}

func TestPipeCommand(t *testing.T) {
	assert.Equal(t,
		"curl --proto '=https' --tlsv1.2 -LsSf https://astral.sh/uv/install.sh | sh",
		PipeCommand("https://astral.sh/uv/install.sh"))
	assert.Equal(t,
		"curl --proto '=https' --tlsv1.2 -LsSf https://install.determinate.systems/nix | sh -s -- install",
		PipeCommand("https://install.determinate.systems/nix", "install"))
}

func TestScript(t *testing.T) {
	f := hosttest.New()
	ctx := context.Background()
	require.NoError(t, Script{R: f}.Pipe(ctx, "https://astral.sh/uv/install.sh"))
	require.NoError(t, Script{R: f}.Bash(ctx, "https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh"))
	assert.Equal(t, []string{
		"sh -c curl --proto '=https' --tlsv1.2 -LsSf https://astral.sh/uv/install.sh | sh",
		`sh -c /bin/bash -c "$(curl -fsSL https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh)"`,
	}, f.Ran)
}

func TestProbes(t *testing.T) {
	f := hosttest.New()
	f.Probes["pkg-config --exists portaudio-2.0"] = true
	f.Paths["c++"] = true
	ctx := context.Background()

	assert.True(t, PkgConfig{R: f}.Exists(ctx, "portaudio-2.0"))
	assert.False(t, PkgConfig{R: f}.Exists(ctx, "libturbojpeg"))
	assert.True(t, Which(f, "g++", "c++"))
	assert.False(t, Which(f, "uv"))
	assert.Empty(t, f.Ran, "probes never run installers")
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, "install", shellQuote("install"))
	assert.Equal(t, "''", shellQuote(""))
	assert.Equal(t, `'it'\''s'`, shellQuote("it's"))
	assert.Equal(t, "'a b'", shellQuote("a b"))
}
