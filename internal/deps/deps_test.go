package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dimos/internal/check"
	"dimos/internal/config"
	"dimos/internal/errs"
	"dimos/internal/host"
	"dimos/internal/host/hosttest"
	"dimos/internal/ui"
	"dimos/internal/ui/uitest"
)

func newEnv(t *testing.T, f *hosttest.Fake) (Env, *uitest.Recorder) {
	t.Helper()
	r := uitest.New()
	return Env{
		Runner:        f,
		UI:            r,
		Home:          t.TempDir(),
		SystemNixConf: filepath.Join(t.TempDir(), "nix.conf"),
	}, r
}

func TestEveryRegisteredCheckIsValid(t *testing.T) {
	env, _ := newEnv(t, hosttest.New())
	reg := NewRegistry(env)
	for _, id := range reg.IDs() {
		for _, kind := range reg.Kinds(id) {
			c, err := reg.Build(id, kind)
			require.NoError(t, err, "%s/%s", id, kind)
			assert.NotEmpty(t, c.Label)
			require.NotNil(t, c.Instructions, "%s/%s needs manual instructions", id, kind)
			assert.NotEmpty(t, c.Instructions(config.Default()))
		}
	}
}

func TestRegistryCoverage(t *testing.T) {
	env, _ := newEnv(t, hosttest.New())
	reg := NewRegistry(env)

	assert.Equal(t, []Kind{Apt, Brew, Nix, Pip}, reg.Kinds(PreCommit))
	assert.Equal(t, []Kind{Apt, Brew, Nix}, reg.Kinds(Curl))
	assert.Equal(t, []Kind{Script}, reg.Kinds(UV))
	assert.Len(t, reg.IDs(), 13)
}

func TestBuildUnknown(t *testing.T) {
	env, _ := newEnv(t, hosttest.New())
	_, err := NewRegistry(env).Build(UV, Apt)
	require.Error(t, err)
	assert.True(t, errs.IsCode(err, errs.InvalidInput))
	assert.Equal(t, "known installers for uv: script", errs.HintOf(err))
}

func TestPerInstallerVariantsDiffer(t *testing.T) {
	f := hosttest.New()
	f.Outputs[hosttest.Line("dpkg-query", "-W", "-f=${Status}", "portaudio19-dev")] = "install ok installed"
	env, _ := newEnv(t, f)
	reg := NewRegistry(env)
	ctx := context.Background()

	apt, err := reg.Build(PortAudio, Apt)
	require.NoError(t, err)
	assert.Equal(t, "portaudio19-dev", apt.Label)
	assert.True(t, apt.Detect(ctx, config.Default()))

	brew, err := reg.Build(PortAudio, Brew)
	require.NoError(t, err)
	assert.Equal(t, "portaudio", brew.Label)
	assert.False(t, brew.Detect(ctx, config.Default()), "brew variant probes pkg-config, not dpkg")
	assert.Contains(t, f.Calls, "pkg-config --exists portaudio-2.0")
}

func TestDetectionIsIdempotentAndReadOnly(t *testing.T) {
	f := hosttest.New()
	f.Paths["git"] = true
	f.Paths["c++"] = true
	f.Probes["pkg-config --exists libturbojpeg"] = true
	f.Probes["python3-config --prefix"] = true
	env, _ := newEnv(t, f)
	reg := NewRegistry(env)
	ctx := context.Background()

	seqs, err := Sequences(reg)
	require.NoError(t, err)
	for _, seq := range seqs {
		for _, c := range seq.Checks {
			first := c.Detect(ctx, config.Default())
			second := c.Detect(ctx, config.Default())
			assert.Equal(t, first, second, "%s/%s", seq.Name, c.Label)
		}
	}
	assert.Empty(t, f.Ran, "detection must never run an installer")
}

func TestAptAutofix(t *testing.T) {
	f := hosttest.New()
	env, _ := newEnv(t, f)
	c, err := NewRegistry(env).Build(LibTurboJPEG, Apt)
	require.NoError(t, err)

	assert.Equal(t, "Install libturbojpeg0-dev via apt?", c.Autofix.Prompt)
	require.NoError(t, c.Autofix.Run(context.Background(), config.Default()))
	assert.Equal(t, []string{"sudo apt-get install -y libturbojpeg0-dev"}, f.Ran)
}

func TestBrewAndNixPackageNames(t *testing.T) {
	f := hosttest.New()
	env, _ := newEnv(t, f)
	reg := NewRegistry(env)
	ctx := context.Background()

	for _, ref := range []Ref{{LibTurboJPEG, Brew}, {Gxx, Brew}, {PythonDev, Brew}, {LibTurboJPEG, Nix}, {Gxx, Nix}, {PythonDev, Nix}} {
		c, err := reg.Build(ref.ID, ref.Kind)
		require.NoError(t, err)
		require.NoError(t, c.Autofix.Run(ctx, config.Default()))
	}
	assert.Equal(t, []string{
		"brew install jpeg-turbo",
		"brew install gcc",
		"brew install python3",
		"nix profile install nixpkgs#libjpeg-turbo",
		"nix profile install nixpkgs#gcc",
		"nix profile install nixpkgs#python3",
	}, f.Ran)
}

func TestNixInstallsRecheck(t *testing.T) {
	f := hosttest.New()
	f.RunErrors["nix profile install nixpkgs#git-lfs"] = hosttest.Fail("nix profile install nixpkgs#git-lfs", "error: package already installed")
	f.OnRun = func(line string) {
		if line == "nix profile install nixpkgs#git-lfs" {
			f.Paths["git-lfs"] = true
		}
	}
	env, _ := newEnv(t, f)
	c, err := NewRegistry(env).Build(GitLFS, Nix)
	require.NoError(t, err)
	require.True(t, c.Autofix.RecheckOnFailure)

	outcome, err := c.Evaluate(context.Background(), config.Default(), uitest.New().Confirms(true))
	require.NoError(t, err)
	assert.Equal(t, check.Fixed, outcome)
}

func TestXcodeCLTQuirk(t *testing.T) {
	ctx := context.Background()

	t.Run("dialog opened means not done yet", func(t *testing.T) {
		f := hosttest.New()
		env, r := newEnv(t, f)
		c, err := NewRegistry(env).Build(XcodeCLT, Script)
		require.NoError(t, err)

		outcome, err := c.Evaluate(ctx, config.Default(), r.Confirms(true))
		assert.Equal(t, check.Failed, outcome)
		assert.True(t, errs.IsCode(err, errs.AutofixFailed))
		assert.True(t, r.Contains("A dialog has opened"))
	})

	t.Run("non-zero exit with tools present is success", func(t *testing.T) {
		f := hosttest.New()
		f.RunErrors["xcode-select --install"] = hosttest.Fail("xcode-select --install", "command line tools are already installed")
		f.OnRun = func(string) { f.Probes["xcode-select -p"] = true }
		env, r := newEnv(t, f)
		c, err := NewRegistry(env).Build(XcodeCLT, Script)
		require.NoError(t, err)

		outcome, err := c.Evaluate(ctx, config.Default(), r.Confirms(true))
		require.NoError(t, err)
		assert.Equal(t, check.Fixed, outcome)
	})

	t.Run("non-zero exit without tools fails", func(t *testing.T) {
		f := hosttest.New()
		f.RunErrors["xcode-select --install"] = hosttest.Fail("xcode-select --install", "")
		env, r := newEnv(t, f)
		c, err := NewRegistry(env).Build(XcodeCLT, Script)
		require.NoError(t, err)

		outcome, err := c.Evaluate(ctx, config.Default(), r.Confirms(true))
		assert.Equal(t, check.Failed, outcome)
		assert.True(t, errs.IsCode(err, errs.AutofixFailed))
		assert.True(t, errs.IsCode(err, errs.ExternalProcessFailed))
		assert.Equal(t, "run `xcode-select --install` manually", errs.HintOf(err))
	})
}

func TestOfficialInstallers(t *testing.T) {
	f := hosttest.New()
	env, r := newEnv(t, f)
	reg := NewRegistry(env)
	ctx := context.Background()

	for _, id := range []ID{UV, NixTool, Homebrew} {
		c, err := reg.Build(id, Script)
		require.NoError(t, err)
		require.NoError(t, c.Autofix.Run(ctx, config.Default()))
	}
	require.Len(t, f.Ran, 3)
	assert.Contains(t, f.Ran[0], "https://astral.sh/uv/install.sh | sh")
	assert.Contains(t, f.Ran[1], "https://install.determinate.systems/nix | sh -s -- install")
	assert.Contains(t, f.Ran[2], "Homebrew/install/HEAD/install.sh")
	assert.Len(t, r.Texts(ui.LevelWarn), 2, "nix and Homebrew warn about PATH")
}

func TestPreCommitPip(t *testing.T) {
	f := hosttest.New()
	env, _ := newEnv(t, f)
	c, err := NewRegistry(env).Build(PreCommit, Pip)
	require.NoError(t, err)
	require.NoError(t, c.Autofix.Run(context.Background(), config.Default()))
	assert.Equal(t, []string{"uv tool install pre-commit"}, f.Ran)
}

func TestFlakesEnabled(t *testing.T) {
	assert.True(t, FlakesEnabled("experimental-features = nix-command flakes\n"))
	assert.True(t, FlakesEnabled("  experimental-features = flakes"))
	assert.False(t, FlakesEnabled("experimental-features = nix-command\n"))
	assert.False(t, FlakesEnabled("# flakes\nsubstituters = x\n"))
	assert.False(t, FlakesEnabled(""))
}

func TestEnableFlakes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "experimental-features = nix-command flakes\n"},
		{"append to file", "max-jobs = 4\n", "max-jobs = 4\nexperimental-features = nix-command flakes\n"},
		{"append without trailing newline", "max-jobs = 4", "max-jobs = 4\nexperimental-features = nix-command flakes\n"},
		{"extend existing line", "experimental-features = nix-command  \nmax-jobs = 4\n", "experimental-features = nix-command flakes\nmax-jobs = 4\n"},
		{"already enabled", "experimental-features = nix-command flakes\n", "experimental-features = nix-command flakes\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EnableFlakes(tt.in))
		})
	}
}

func TestNixFlakesCheck(t *testing.T) {
	env, r := newEnv(t, hosttest.New())
	reg := NewRegistry(env)
	ctx := context.Background()

	c, err := reg.Build(NixFlakes, Nix)
	require.NoError(t, err)
	assert.False(t, c.Detect(ctx, config.Default()))

	outcome, err := c.Evaluate(ctx, config.Default(), r.Confirms(true))
	require.NoError(t, err)
	assert.Equal(t, check.Fixed, outcome)
	assert.True(t, c.Detect(ctx, config.Default()))
	assert.True(t, r.Contains("restart the nix daemon"))

	data, err := os.ReadFile(UserNixConf(env.Home))
	require.NoError(t, err)
	assert.Equal(t, "experimental-features = nix-command flakes\n", string(data))
}

func TestNixFlakesSystemConf(t *testing.T) {
	env, _ := newEnv(t, hosttest.New())
	require.NoError(t, os.WriteFile(env.SystemNixConf, []byte("experimental-features = nix-command flakes\n"), 0o644))
	c, err := NewRegistry(env).Build(NixFlakes, Nix)
	require.NoError(t, err)
	assert.True(t, c.Detect(context.Background(), config.Default()))
}

func TestSequences(t *testing.T) {
	env, _ := newEnv(t, hosttest.New())
	seqs, err := Sequences(NewRegistry(env))
	require.NoError(t, err)

	names := make([]string, len(seqs))
	for i, s := range seqs {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"linux_apt", "linux_nix", "macos_brew", "macos_nix"}, names)

	apt, ok := Find(seqs, "linux_apt")
	require.True(t, ok)
	require.Len(t, apt.Preamble, 1)
	assert.Equal(t, "sudo apt-get update", apt.Preamble[0].Label)
	assert.Equal(t, "uv", apt.Checks[len(apt.Checks)-1].Label)

	brew, _ := Find(seqs, "macos_brew")
	assert.Equal(t, "Xcode Command Line Tools", brew.Checks[0].Label)
	assert.Equal(t, "Homebrew", brew.Checks[1].Label)

	nix, _ := Find(seqs, "linux_nix")
	assert.Equal(t, "nix", nix.Checks[0].Label)
	assert.Equal(t, "nix flakes", nix.Checks[1].Label)

	_, ok = Find(seqs, "windows_choco")
	assert.False(t, ok)
}

func TestSequencePreconditions(t *testing.T) {
	env, _ := newEnv(t, hosttest.New())
	seqs, err := Sequences(NewRegistry(env))
	require.NoError(t, err)

	linuxApt := host.Capabilities{OS: "linux", Managers: map[string]bool{host.ManagerApt: true}}
	linuxBare := host.Capabilities{OS: "linux", Managers: map[string]bool{}}
	mac := host.Capabilities{OS: "darwin", Managers: map[string]bool{}}

	avail := func(caps host.Capabilities) []string {
		var out []string
		for _, s := range seqs {
			if s.Available(caps) {
				out = append(out, s.Name)
			}
		}
		return out
	}
	assert.Equal(t, []string{"linux_apt", "linux_nix"}, avail(linuxApt))
	assert.Equal(t, []string{"linux_nix"}, avail(linuxBare))
	assert.Equal(t, []string{"macos_brew", "macos_nix"}, avail(mac))
	assert.Empty(t, avail(host.Capabilities{OS: "windows"}))
}

func TestAptPreambleRunsUpdate(t *testing.T) {
	f := hosttest.New()
	env, _ := newEnv(t, f)
	seqs, err := Sequences(NewRegistry(env))
	require.NoError(t, err)
	apt, _ := Find(seqs, "linux_apt")
	require.NoError(t, apt.Preamble[0].Run(context.Background(), config.Default()))
	assert.Equal(t, []string{"sudo apt-get update"}, f.Ran)
}
