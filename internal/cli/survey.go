package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dimos/internal/config"
	"dimos/internal/errs"
	"dimos/internal/questions"
	"dimos/internal/ui"
)

func newSurveyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "survey",
		Short: "Answer the developer personality questions",
		Args:  cobra.NoArgs,
		RunE:  runSurvey,
	}
}

func runSurvey(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if !s.caps.Attended {
		return errs.New(errs.SelectionRequired, "the survey needs an interactive terminal").
			WithHint("run `dimos survey` from a terminal without --non-interactive")
	}

	store, err := config.LoadOrRecover(s.paths.ConfigFile, s.ui, s.caps.Attended)
	if err != nil {
		return err
	}

	s.ui.Log(ui.LevelTitle, "Dimos — developer survey")
	if err := askSurvey(s.ui, store.Config(), questions.Bank()); err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return err
	}
	ui.Logf(s.ui, ui.LevelSuccess, "Answers saved to %s", store.Path())
	return nil
}

// askSurvey asks every question in bank and records the answers on cfg.
// Nothing is recorded when a prompt fails part way.
func askSurvey(u ui.UI, cfg *config.Config, bank []questions.Question) error {
	answers := make(map[questions.Key]string, len(bank))
	for _, q := range bank {
		current, _ := cfg.Answer(q.Key)

		var (
			answer string
			err    error
		)
		switch q.Kind {
		case questions.Choice:
			answer, err = u.Select(q.Prompt, choiceOptions(q, current))
		case questions.Text:
			answer, err = u.Input(q.Prompt, ui.InputOptions{
				Placeholder: q.Placeholder,
				Default:     current,
				Validate:    q.Validate,
			})
		default:
			err = errs.Newf(errs.InvalidInput, "question %s has unknown kind %d", q.Key, q.Kind)
		}
		if err != nil {
			return fmt.Errorf("ask %s: %w", q.Key.Address(), err)
		}
		answers[q.Key] = strings.TrimSpace(answer)
	}

	for k, v := range answers {
		cfg.SetAnswer(k, v)
	}
	return nil
}

func choiceOptions(q questions.Question, current string) []ui.Option {
	opts := make([]ui.Option, 0, len(q.Options))
	for _, o := range q.Options {
		label := o.Label
		if o.Hint != "" {
			label += " (" + o.Hint + ")"
		}
		if o.Value == current {
			label += " ← current"
		}
		opts = append(opts, ui.Option{Label: label, Value: o.Value})
	}
	return opts
}
