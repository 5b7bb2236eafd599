package cli

import (
	"context"
	"encoding/json"
	"os"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/queuewatch/pkg/cli/config"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
	"github.com/secmon-lab/queuewatch/pkg/usecase"
	"github.com/secmon-lab/queuewatch/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdPoll() *cli.Command {
	var modeStr string
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var crmCfg config.CRM
	var sheetCfg config.Sheet

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "mode",
			Usage:       "Queue mode to poll (signature or premier); empty uses the stored preference",
			Sources:     cli.EnvVars("QUEUEWATCH_MODE"),
			Destination: &modeStr,
		},
	}

	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, crmCfg.Flags()...)
	flags = append(flags, sheetCfg.Flags()...)

	return &cli.Command{
		Name:  "poll",
		Usage: "Run a single poll cycle and print the result as JSON",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			triageCfg, err := appCfg.Configure(c)
			if err != nil {
				return goerr.Wrap(err, "failed to load triage configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			crmClient, err := crmCfg.Configure(triageCfg.Queries)
			if err != nil {
				return goerr.Wrap(err, "failed to configure CRM client")
			}

			ucOpts := []usecase.Option{
				usecase.WithTriageConfig(triageCfg),
			}

			logbook, err := sheetCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure spreadsheet logbook")
			}
			if logbook != nil {
				ucOpts = append(ucOpts, usecase.WithLogbook(logbook))
			}

			uc := usecase.New(repo, crmClient, ucOpts...)

			var mode types.Mode
			if modeStr != "" {
				mode, err = types.ParseMode(modeStr)
				if err != nil {
					return err
				}
				if err := uc.SwitchMode(ctx, mode); err != nil {
					return goerr.Wrap(err, "failed to switch mode")
				}
			} else {
				mode, err = uc.ActiveMode(ctx)
				if err != nil {
					return goerr.Wrap(err, "failed to read active mode")
				}
			}

			result, err := uc.RunPollCycle(ctx, mode)
			if err != nil {
				return goerr.Wrap(err, "poll cycle failed")
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}
