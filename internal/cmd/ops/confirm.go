package ops

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/louisbranch/campaignops/internal/services/ops/app"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/dayadvance"
)

// promptConfirmer asks day-advance questions on the terminal.
type promptConfirmer struct {
	out io.Writer
	// ask replaces the terminal form in tests.
	ask func(ctx context.Context, prompt app.Prompt) (dayadvance.Choice, error)
}

func newPromptConfirmer(out io.Writer) *promptConfirmer {
	return &promptConfirmer{out: out, ask: askTerminal}
}

func (c *promptConfirmer) Confirm(ctx context.Context, prompt app.Prompt) (dayadvance.Choice, error) {
	choice, err := c.ask(ctx, prompt)
	if errors.Is(err, huh.ErrUserAborted) {
		return "", ErrRefused
	}
	return choice, err
}

func (c *promptConfirmer) Notify(_ context.Context, text string) {
	fmt.Fprintln(c.out, noticeStyle.Render(text))
}

func askTerminal(ctx context.Context, prompt app.Prompt) (dayadvance.Choice, error) {
	options := make([]huh.Option[string], len(prompt.Choices))
	for i, choice := range prompt.Choices {
		options[i] = huh.NewOption(choiceLabel(choice), string(choice))
	}
	var selected string
	field := huh.NewSelect[string]().
		Title(prompt.Text).
		Options(options...).
		Value(&selected)

	if err := huh.NewForm(huh.NewGroup(field)).RunWithContext(ctx); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return dayadvance.Choice(selected), nil
}

func choiceLabel(choice dayadvance.Choice) string {
	switch choice {
	case dayadvance.ChoiceYes:
		return "Yes, advance the day"
	case dayadvance.ChoiceNo:
		return "No, stay on this day"
	case dayadvance.ChoiceResolve:
		return "Finalize payouts now"
	case dayadvance.ChoiceCancel:
		return "Cancel"
	default:
		return string(choice)
	}
}
