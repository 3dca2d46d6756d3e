package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"dimos/internal/check"
	"dimos/internal/config"
	"dimos/internal/deps"
	"dimos/internal/errs"
	"dimos/internal/host"
	"dimos/internal/selector"
	"dimos/internal/sequence"
	"dimos/internal/tui"
)

var checkStrict bool

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [SEQUENCE]",
		Short: "Report which dependencies of a sequence are present",
		Long: `Run detection for every dependency of SEQUENCE (default: the first sequence
that applies to this host). Nothing is installed and nothing is asked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheck,
	}

	cmd.Flags().BoolVar(&checkStrict, "strict", false, "fail when any dependency is missing")

	return cmd
}

type checkResult struct {
	Label  string `json:"label"`
	Status string `json:"status"`
	// Fix holds the manual instructions for a missing dependency.
	Fix string `json:"fix,omitempty"`
}

type checkPayload struct {
	Sequence string            `json:"sequence"`
	Label    string            `json:"label"`
	Host     host.Capabilities `json:"host"`
	Results  []checkResult     `json:"results"`
}

func (p checkPayload) missing() int {
	n := 0
	for _, r := range p.Results {
		if r.Status == string(check.Missing) {
			n++
		}
	}
	return n
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	cfg, err := config.Read(s.paths.ConfigFile)
	if err != nil {
		if !errs.IsCode(err, errs.ConfigCorrupt) {
			return err
		}
		log.Warn().Err(err).Msg("ignoring corrupt config for detection")
		cfg = config.Default()
	}

	seqs, err := s.sequences()
	if err != nil {
		return err
	}
	var name string
	if len(args) > 0 {
		name = args[0]
	}
	seq, err := pickCheckSequence(seqs, s.caps, name)
	if err != nil {
		return err
	}

	payload := checkPayload{Sequence: seq.Name, Label: seq.Label, Host: s.caps}
	out := cmd.OutOrStdout()
	mode := tui.DetectMode(out, outputJSON)
	log.Debug().Str("sequence", seq.Name).Stringer("mode", mode).Msg("checking")

	switch mode {
	case tui.ModeTUI:
		payload.Results, err = detectWithProgress(cmd.Context(), out, seq, cfg)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		printFixes(out, payload)
	case tui.ModeJSON:
		payload.Results = detectAll(cmd.Context(), seq.Checks, cfg, nil)
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		fmt.Fprintln(out, string(data))
	default:
		payload.Results = detectAll(cmd.Context(), seq.Checks, cfg, nil)
		printCheckResult(out, payload)
	}

	if checkStrict {
		if n := payload.missing(); n > 0 {
			return errs.Newf(errs.DependencyMissing, "%d of %d dependencies missing", n, len(payload.Results)).
				WithHint("run `dimos init --sequence %s` to install them", seq.Name)
		}
	}
	return nil
}

// pickCheckSequence returns the named sequence, or the first one available
// on caps when name is empty.
func pickCheckSequence(seqs []sequence.Sequence, caps host.Capabilities, name string) (sequence.Sequence, error) {
	if name != "" {
		seq, ok := deps.Find(seqs, name)
		if !ok {
			return sequence.Sequence{}, errs.Newf(errs.InvalidInput, "unknown sequence %q", name).
				WithHint("known sequences: %s", strings.Join(sequenceNames(seqs), ", "))
		}
		return seq, nil
	}
	candidates := selector.Candidates(caps, seqs)
	if len(candidates) == 0 {
		return sequence.Sequence{}, errs.Newf(errs.InvalidInput, "no sequence applies to %s/%s", caps.OS, caps.Arch).
			WithHint("name one explicitly: %s", strings.Join(sequenceNames(seqs), ", "))
	}
	return candidates[0], nil
}

// detectAll runs Detect for every check in order. onResult, when set, is
// called before (with an empty status) and after each detection.
func detectAll(ctx context.Context, checks []check.Check, cfg config.Config, onResult func(i int, r checkResult)) []checkResult {
	results := make([]checkResult, 0, len(checks))
	for i, c := range checks {
		if onResult != nil {
			onResult(i, checkResult{Label: c.Label})
		}
		r := checkResult{Label: c.Label, Status: string(check.Found)}
		if !c.Detected(ctx, cfg) {
			r.Status = string(check.Missing)
			if c.Instructions != nil {
				r.Fix = strings.TrimSpace(c.Instructions(cfg))
			}
		}
		log.Debug().Str("dependency", c.Label).Str("status", r.Status).Msg("detected")
		results = append(results, r)
		if onResult != nil {
			onResult(i, r)
		}
	}
	return results
}

func detectWithProgress(ctx context.Context, out io.Writer, seq sequence.Sequence, cfg config.Config) ([]checkResult, error) {
	table := tui.NewCheckTable("dimos check — "+seq.Label, 48)
	for i, c := range seq.Checks {
		table.Add(strconv.Itoa(i), c.Label)
	}

	var results []checkResult
	err := tui.RunTable(out, table, func(rows *tui.RowReporter) {
		results = detectAll(ctx, seq.Checks, cfg, func(i int, r checkResult) {
			key := strconv.Itoa(i)
			if r.Status == "" {
				rows.Start(key)
				return
			}
			rows.Finish(key, r.Status, tui.NonEmptyOrDash(firstLine(r.Fix)))
		})
	})
	if err != nil {
		return nil, fmt.Errorf("render progress: %w", err)
	}
	return results, nil
}

var (
	boldStyle  = lipgloss.NewStyle().Bold(true)
	greenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	redStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	faintStyle = lipgloss.NewStyle().Faint(true)
)

func printCheckResult(w io.Writer, p checkPayload) {
	fmt.Fprintln(w, boldStyle.Render("Sequence:")+" "+p.Label+faintStyle.Render(" ("+p.Sequence+")"))
	fmt.Fprintln(w)

	for _, r := range p.Results {
		if r.Status == string(check.Found) {
			fmt.Fprintln(w, greenStyle.Render("✓")+" "+boldStyle.Render(r.Label))
		}
	}
	printFixes(w, p)
}

// printFixes lists each missing dependency with its full instructions and
// ends with a one-line summary. After the live table it is all that is
// printed.
func printFixes(w io.Writer, p checkPayload) {
	for _, r := range p.Results {
		if r.Status != string(check.Missing) {
			continue
		}
		fmt.Fprintln(w, redStyle.Render("✗")+" "+boldStyle.Render(r.Label)+redStyle.Render(" (missing)"))
		for _, line := range strings.Split(r.Fix, "\n") {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintln(w, faintStyle.Render("  "+line))
			}
		}
	}

	fmt.Fprintln(w)
	missing := p.missing()
	if missing == 0 {
		fmt.Fprintln(w, greenStyle.Render(fmt.Sprintf("All %d dependencies present.", len(p.Results))))
		return
	}
	fmt.Fprintln(w, redStyle.Render(fmt.Sprintf("%d of %d dependencies missing.", missing, len(p.Results))))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func sequenceNames(seqs []sequence.Sequence) []string {
	names := make([]string, len(seqs))
	for i, s := range seqs {
		names[i] = s.Name
	}
	return names
}
