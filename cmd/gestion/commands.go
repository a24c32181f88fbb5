package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/diewo77/gestion/internal/amqp"
	"github.com/diewo77/gestion/internal/app"
	"github.com/diewo77/gestion/internal/config"
	"github.com/diewo77/gestion/internal/events"
	"github.com/diewo77/gestion/internal/log"
	"github.com/diewo77/gestion/internal/models"
	"github.com/diewo77/gestion/internal/money"
	"github.com/diewo77/gestion/internal/words"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "gestion",
		Usage: "operate the document and reporting engine",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "warn", EnvVars: []string{"CLI_LOG_LEVEL"}, Usage: "debug, info, warn or error"},
		},
		Commands: []*cli.Command{
			wordsCommand(),
			reportCommand(),
			printCommand(),
			allocateCommand(),
			markOverdueCommand(),
			eventsCommand(),
		},
	}
}

func cliLogger(c *cli.Context) *log.Logger {
	return log.New(log.Config{Level: log.ParseLevel(c.String("log-level")), Component: log.ComponentCLI})
}

// withServices loads the configuration, opens the services and hands them
// to fn.
func withServices(c *cli.Context, fn func(*app.Services) error) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	svc, err := app.Open(c.Context, cfg, cliLogger(c))
	if err != nil {
		return err
	}
	defer svc.Close()
	return fn(svc)
}

func wordsCommand() *cli.Command {
	return &cli.Command{
		Name:      "words",
		Usage:     "transcribe an amount in French words",
		ArgsUsage: "<amount>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "lower", Usage: "do not capitalise the first letter"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected exactly one amount", 2)
			}
			amount, err := decimal.NewFromString(strings.ReplaceAll(c.Args().First(), ",", "."))
			if err != nil {
				return cli.Exit(fmt.Sprintf("invalid amount %q", c.Args().First()), 2)
			}
			out := words.Amount(amount)
			if c.Bool("lower") {
				out = words.Words(amount)
			}
			_, err = fmt.Fprintln(c.App.Writer, out)
			return err
		},
	}
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "print the monthly and yearly summary of a year",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "year", Aliases: []string{"y"}, Usage: "defaults to the current year"},
			&cli.BoolFlag{Name: "json", Usage: "print the summaries as JSON"},
		},
		Action: func(c *cli.Context) error {
			year := c.Int("year")
			if year == 0 {
				year = time.Now().Year()
			}
			return withServices(c, func(svc *app.Services) error {
				months, err := svc.Reports.MonthlySummary(c.Context, year)
				if err != nil {
					return err
				}
				summary, err := svc.Reports.YearlySummary(c.Context, year)
				if err != nil {
					return err
				}
				if c.Bool("json") {
					return writeJSON(c.App.Writer, map[string]any{"monthly": months, "yearly": summary})
				}

				tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', tabwriter.AlignRight)
				fmt.Fprintln(tw, "Mois\tRecettes\tDépenses\t")
				for _, m := range months {
					fmt.Fprintf(tw, "%02d\t%s\t%s\t\n", m.Month, money.FormatFR(m.Revenue), money.FormatFR(m.Expenses))
				}
				fmt.Fprintf(tw, "Total\t%s\t%s\t\n", money.FormatFR(summary.Revenue), money.FormatFR(summary.Expenses))
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "Bénéfice: %s (marge %d %%)\n", money.FormatFR(summary.Profit), summary.ProfitMarginPercent)
				fmt.Fprintf(c.App.Writer, "TVA collectée: %s, déductible: %s, à payer: %s\n",
					money.FormatFR(summary.VATCollected), money.FormatFR(summary.VATDeductible), money.FormatFR(summary.VATDue))
				fmt.Fprintf(c.App.Writer, "Impayés: %s\n", money.FormatFR(summary.Outstanding))
				for _, sk := range summary.Skipped {
					fmt.Fprintf(c.App.Writer, "ignoré: %s %s (%s)\n", sk.Entity, sk.Reference, sk.Reason)
				}
				return nil
			})
		},
	}
}

func printCommand() *cli.Command {
	return &cli.Command{
		Name:      "print",
		Usage:     "print the payload of a quote or invoice",
		ArgsUsage: "<document id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print the payload as JSON"},
		},
		Action: func(c *cli.Context) error {
			var id uint
			if _, err := fmt.Sscan(c.Args().First(), &id); err != nil || id == 0 {
				return cli.Exit("expected a document id", 2)
			}
			return withServices(c, func(svc *app.Services) error {
				p, err := svc.Print.Build(c.Context, id)
				if err != nil {
					return err
				}
				if c.Bool("json") {
					return writeJSON(c.App.Writer, p)
				}
				tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
				for _, f := range p.Fields() {
					fmt.Fprintf(tw, "%s\t%s\n", f.Label, f.Value)
				}
				return tw.Flush()
			})
		},
	}
}

func allocateCommand() *cli.Command {
	return &cli.Command{
		Name:  "allocate",
		Usage: "reserve the next number of a sequence for the current year",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "kind", Value: string(models.KindImportProcedure), Usage: "quote, invoice or import_procedure"},
		},
		Action: func(c *cli.Context) error {
			kind := models.DocumentKind(c.String("kind"))
			if !kind.Valid() {
				return cli.Exit(fmt.Sprintf("unknown kind %q", kind), 2)
			}
			return withServices(c, func(svc *app.Services) error {
				number, err := svc.Numbers.Allocate(c.Context, kind)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(c.App.Writer, number)
				return err
			})
		},
	}
}

func markOverdueCommand() *cli.Command {
	return &cli.Command{
		Name:  "mark-overdue",
		Usage: "flag open declarations past their due date as LATE",
		Action: func(c *cli.Context) error {
			return withServices(c, func(svc *app.Services) error {
				n, err := svc.Ledger.MarkOverdue(c.Context, time.Now())
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(c.App.Writer, "%d declaration(s) marked late\n", n)
				return err
			})
		},
	}
}

func eventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "tail the events queue",
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			if !cfg.AMQP.Enabled() {
				return cli.Exit("AMQP_URL is not set", 2)
			}
			client, err := amqp.Dial(c.Context, cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue, cliLogger(c))
			if err != nil {
				return err
			}
			defer client.Close()

			err = client.Consume(c.Context, func(_ context.Context, e events.Event) error {
				_, err := fmt.Fprintf(c.App.Writer, "%s %-28s %-12s %s %s\n",
					e.OccurredAt.Format(time.RFC3339), e.Type, e.Entity, e.Reference, e.Status)
				return err
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
