package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	portfolio "github.com/etnz/rebalance"
	"github.com/etnz/rebalance/date"
	"github.com/etnz/rebalance/rebalance"
	"github.com/etnz/rebalance/renderer"
	"github.com/google/subcommands"
	"github.com/robfig/cron/v3"
)

// scheduleCmd re-runs the engine over the currently loaded portfolios on
// a cron schedule, printing each run's report, until interrupted. It is
// meant for long-lived use (e.g. a daily re-balance check) rather than
// the one-shot "rebalance" command.
type scheduleCmd struct {
	spec string
}

func (*scheduleCmd) Name() string     { return "schedule" }
func (*scheduleCmd) Synopsis() string { return "Periodically rebalance the loaded portfolios." }
func (*scheduleCmd) Usage() string {
	return `schedule [-cron spec]:
  Run the rebalance engine on a cron schedule (default: once a day at
  06:00) until interrupted with Ctrl+C.
`
}

func (c *scheduleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.spec, "cron", "0 6 * * *", "Cron schedule on which to re-run the engine")
}

func (c *scheduleCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if len(loadedPortfolios) == 0 {
		fmt.Fprintln(os.Stderr, "No portfolios loaded; run \"ingest\" first.")
		return subcommands.ExitFailure
	}

	sched := cron.New()
	_, err := sched.AddFunc(c.spec, runScheduledRebalance)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error parsing cron spec:", err)
		return subcommands.ExitFailure
	}

	sched.Start()
	defer sched.Stop()

	fmt.Printf("Scheduled rebalance on %q. Press Ctrl+C to stop.\n", c.spec)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	<-runCtx.Done()
	return subcommands.ExitSuccess
}

func runScheduledRebalance() {
	cfg := portfolio.LoadConfig()
	engine := rebalance.NewEngine(loadedTickers, cfg, date.Today())

	var all []rebalance.AccountResult
	for _, p := range loadedPortfolios {
		all = append(all, engine.RunPortfolio(p)...)
	}
	cacheResults(all)

	fmt.Printf("[%s] rebalance run\n", time.Now().Format(time.RFC3339))
	fmt.Println(renderer.ReportMarkdown(all))
}
