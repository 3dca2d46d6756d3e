package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"dimos/internal/host"
	"dimos/internal/sequence"
)

func newSequencesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sequences",
		Short: "List install sequences and whether they apply to this host",
		Args:  cobra.NoArgs,
		RunE:  runSequences,
	}
}

type sequenceInfo struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Available   bool     `json:"available"`
	Steps       []string `json:"steps"`
}

func runSequences(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	seqs, err := s.sequences()
	if err != nil {
		return err
	}
	infos := describeSequences(seqs, s.caps)

	if outputJSON {
		data, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	printSequences(cmd.OutOrStdout(), infos, s.caps)
	return nil
}

func describeSequences(seqs []sequence.Sequence, caps host.Capabilities) []sequenceInfo {
	infos := make([]sequenceInfo, 0, len(seqs))
	for _, seq := range seqs {
		info := sequenceInfo{
			Name:        seq.Name,
			Label:       seq.Label,
			Description: seq.Description,
			Available:   seq.Available(caps),
		}
		for _, st := range seq.Preamble {
			info.Steps = append(info.Steps, st.Label)
		}
		for _, c := range seq.Checks {
			info.Steps = append(info.Steps, c.Label)
		}
		infos = append(infos, info)
	}
	return infos
}

func printSequences(w io.Writer, infos []sequenceInfo, caps host.Capabilities) {
	bold := lipgloss.NewStyle().Bold(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	faint := lipgloss.NewStyle().Faint(true)

	managers := strings.Join(caps.ManagerNames(), ", ")
	if managers == "" {
		managers = "none"
	}
	fmt.Fprintln(w, bold.Render("Host:")+fmt.Sprintf(" %s/%s", caps.OS, caps.Arch)+faint.Render(" (package managers: "+managers+")"))
	fmt.Fprintln(w)

	for _, info := range infos {
		mark := faint.Render("–")
		if info.Available {
			mark = green.Render("✓")
		}
		fmt.Fprintln(w, mark+" "+bold.Render(info.Name)+"  "+info.Label)
		fmt.Fprintln(w, faint.Render("  "+info.Description))
		fmt.Fprintln(w, faint.Render("  "+strings.Join(info.Steps, " → ")))
		fmt.Fprintln(w)
	}
}
