package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/rebalance/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// narrateCmd is a one-shot, non-interactive variant of assist scoped to
// the Narrator expert only: it explains the status, residual and
// diagnostics of the most recent rebalance run without opening a chat.
type narrateCmd struct{}

func (*narrateCmd) Name() string     { return "narrate" }
func (*narrateCmd) Synopsis() string { return "Explain the last rebalance run's diagnostics." }
func (*narrateCmd) Usage() string {
	return `narrate <question>:
  Ask the Narrator expert about the outcome of the last "rebalance" run,
  e.g. "narrate why is fidelity/12345 only partial?".
`
}

func (*narrateCmd) SetFlags(_ *flag.FlagSet) {}

func (c *narrateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if lastResults == nil {
		fmt.Fprintln(os.Stderr, "No rebalance results cached; run \"rebalance\" first.")
		return subcommands.ExitFailure
	}
	question := strings.Join(f.Args(), " ")
	if question == "" {
		fmt.Fprintln(os.Stderr, "Usage: narrate <question>")
		return subcommands.ExitFailure
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	narrator := agent.NewNarrator(lookupResult)
	if err := narrator.Start(ctx, client); err != nil {
		fmt.Fprintln(os.Stderr, "Error starting narrator:", err)
		return subcommands.ExitFailure
	}
	content, err := narrator.Ask(ctx, &genai.Part{Text: question})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Narrator failed:", err)
		return subcommands.ExitFailure
	}
	fmt.Println(content.Parts[0].Text)
	return subcommands.ExitSuccess
}
