package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/attrcare/attrcare"
	"github.com/attrcare/attrcare/config"
	"github.com/attrcare/attrcare/duplicates"
	"github.com/attrcare/attrcare/schema"
	"github.com/attrcare/attrcare/setmigration"
	"github.com/attrcare/attrcare/util"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

var app *attrcare.Application

func printJSON(v interface{}) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(encoded))

	return nil
}

func main() {
	cfg := config.LoadConfig(".")

	if !cfg.Enabled {
		logrus.Fatal("module is disabled by configuration")
	}

	app = attrcare.NewApplication(cfg)
	defer util.Close(app)

	entityTypeFlag := &cli.StringFlag{
		Name:  "entity-type",
		Value: cfg.DefaultEntityType,
	}

	cmd := &cli.Command{
		Name:  "attrcare",
		Usage: "catalog attribute curation toolbox",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "apply database migrations",
				Action: func(_ context.Context, _ *cli.Command) error {
					return app.Migrate()
				},
			},
			{
				Name:  "fill-rate",
				Usage: "attribute fill-rate report, worst first",
				Flags: []cli.Flag{
					entityTypeFlag,
					&cli.IntFlag{Name: "set"},
					&cli.BoolFlag{Name: "summary"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					analyzer, err := app.Container().FillRateAnalyzer()
					if err != nil {
						return err
					}

					if cmd.Bool("summary") {
						summary, err := analyzer.SummaryStatistics(ctx, cmd.String("entity-type"))
						if err != nil {
							return err
						}

						return printJSON(summary)
					}

					rates, err := analyzer.AttributeFillRates(ctx, cmd.String("entity-type"), int64(cmd.Int("set")))
					if err != nil {
						return err
					}

					return printJSON(rates)
				},
			},
			{
				Name:  "duplicates",
				Usage: "duplicate attribute groups",
				Flags: []cli.Flag{
					entityTypeFlag,
					&cli.IntFlag{Name: "threshold", Usage: "similarity threshold, percent"},
					&cli.StringSliceFlag{
						Name:  "strategy",
						Value: []string{"code", "label", "values"},
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					detector, err := app.Container().DuplicatesDetector()
					if err != nil {
						return err
					}

					strategies := make([]duplicates.Strategy, 0)
					for _, name := range cmd.StringSlice("strategy") {
						strategies = append(strategies, duplicates.Strategy(name))
					}

					groups, err := detector.FindDuplicates(
						ctx, cmd.String("entity-type"), cmd.Int("threshold"), strategies,
					)
					if err != nil {
						return err
					}

					return printJSON(groups)
				},
			},
			{
				Name:  "chaos",
				Usage: "format chaos report for one attribute",
				Flags: []cli.Flag{
					entityTypeFlag,
					&cli.StringFlag{Name: "code", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					analyzer, err := app.Container().ChaosAnalyzer()
					if err != nil {
						return err
					}

					report, err := analyzer.AnalyzeAttribute(ctx, cmd.String("code"), cmd.String("entity-type"))
					if err != nil {
						return err
					}

					return printJSON(report)
				},
			},
			{
				Name:  "similar",
				Usage: "attributes similar to one attribute",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "id", Required: true},
					&cli.IntFlag{Name: "threshold"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					detector, err := app.Container().DuplicatesDetector()
					if err != nil {
						return err
					}

					similar, err := detector.FindSimilarTo(ctx, int64(cmd.Int("id")), cmd.Int("threshold"))
					if err != nil {
						return err
					}

					return printJSON(similar)
				},
			},
			{
				Name:  "compare",
				Usage: "side-by-side comparison of two attributes",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "first", Required: true},
					&cli.IntFlag{Name: "second", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					detector, err := app.Container().DuplicatesDetector()
					if err != nil {
						return err
					}

					comparison, err := detector.CompareTwoAttributes(
						ctx, int64(cmd.Int("first")), int64(cmd.Int("second")),
					)
					if err != nil {
						return err
					}

					return printJSON(comparison)
				},
			},
			{
				Name:  "candidates",
				Usage: "entities recommended for another attribute set",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "target-set", Required: true},
					&cli.IntFlag{Name: "source-set"},
					&cli.IntFlag{Name: "limit"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					migrator, err := app.Container().SetMigrator()
					if err != nil {
						return err
					}

					candidates, err := migrator.FindMigrationCandidates(
						ctx, int64(cmd.Int("source-set")), int64(cmd.Int("target-set")),
						setmigration.Criteria{Limit: cmd.Int("limit")},
					)
					if err != nil {
						return err
					}

					return printJSON(candidates)
				},
			},
			{
				Name:  "rollback",
				Usage: "restore target values from a merge operation's log",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "operation", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					merger, err := app.Container().Merger()
					if err != nil {
						return err
					}

					result, err := merger.Rollback(ctx, cmd.String("operation"))
					if err != nil {
						return err
					}

					return printJSON(result)
				},
			},
			{
				Name:  "distribution",
				Usage: "entity counts per attribute set",
				Flags: []cli.Flag{entityTypeFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					migrator, err := app.Container().SetMigrator()
					if err != nil {
						return err
					}

					distribution, err := migrator.Distribution(ctx, cmd.String("entity-type"))
					if err != nil {
						return err
					}

					return printJSON(distribution)
				},
			},
			{
				Name:  "misassigned",
				Usage: "products in the default set that score high elsewhere",
				Action: func(ctx context.Context, _ *cli.Command) error {
					migrator, err := app.Container().SetMigrator()
					if err != nil {
						return err
					}

					candidates, err := migrator.FindMisassignedProducts(ctx)
					if err != nil {
						return err
					}

					return printJSON(candidates)
				},
			},
			proposalsCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func proposalsCommand() *cli.Command {
	actorFlag := &cli.StringFlag{Name: "actor", Required: true}
	idFlag := &cli.IntFlag{Name: "id", Required: true}

	return &cli.Command{
		Name:  "proposals",
		Usage: "approval workflow",
		Commands: []*cli.Command{
			{
				Name: "list",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					manager, err := app.Container().ApprovalManager()
					if err != nil {
						return err
					}

					rows, err := manager.Proposals(ctx, schema.ProposalStatus(cmd.String("status")))
					if err != nil {
						return err
					}

					return printJSON(rows)
				},
			},
			{
				Name:  "approve",
				Flags: []cli.Flag{idFlag, actorFlag, &cli.StringFlag{Name: "comment"}},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					manager, err := app.Container().ApprovalManager()
					if err != nil {
						return err
					}

					approved, err := manager.ApproveProposal(
						ctx, int64(cmd.Int("id")), cmd.String("actor"), cmd.String("comment"),
					)
					if err != nil {
						return err
					}

					if !approved {
						return fmt.Errorf("proposal %d is not pending", cmd.Int("id"))
					}

					return nil
				},
			},
			{
				Name:  "reject",
				Flags: []cli.Flag{idFlag, actorFlag, &cli.StringFlag{Name: "comment"}},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					manager, err := app.Container().ApprovalManager()
					if err != nil {
						return err
					}

					rejected, err := manager.RejectProposal(
						ctx, int64(cmd.Int("id")), cmd.String("actor"), cmd.String("comment"),
					)
					if err != nil {
						return err
					}

					if !rejected {
						return fmt.Errorf("proposal %d is not pending", cmd.Int("id"))
					}

					return nil
				},
			},
			{
				Name:  "execute",
				Flags: []cli.Flag{idFlag, actorFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					manager, err := app.Container().ApprovalManager()
					if err != nil {
						return err
					}

					result, err := manager.ExecuteProposal(ctx, int64(cmd.Int("id")), cmd.String("actor"))
					if err != nil {
						return err
					}

					return printJSON(result)
				},
			},
			{
				Name:  "history",
				Flags: []cli.Flag{idFlag, &cli.UintFlag{Name: "page", Value: 1}},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					manager, err := app.Container().ApprovalManager()
					if err != nil {
						return err
					}

					events, _, err := manager.History(ctx, int64(cmd.Int("id")), uint32(cmd.Uint("page")))
					if err != nil {
						return err
					}

					return printJSON(events)
				},
			},
			{
				Name:  "delete",
				Flags: []cli.Flag{idFlag, actorFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					manager, err := app.Container().ApprovalManager()
					if err != nil {
						return err
					}

					deleted, err := manager.DeleteProposal(ctx, int64(cmd.Int("id")), cmd.String("actor"))
					if err != nil {
						return err
					}

					if !deleted {
						return fmt.Errorf("proposal %d not found", cmd.Int("id"))
					}

					return nil
				},
			},
		},
	}
}
