package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/queuewatch/pkg/service/sheet"
	"github.com/secmon-lab/queuewatch/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Sheet holds CLI flags for the spreadsheet logbook
type Sheet struct {
	spreadsheetID   string
	credentialsFile string
}

func (x *Sheet) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sheet-spreadsheet-id",
			Usage:       "Spreadsheet ID of the triage logbook",
			Category:    "Logbook",
			Sources:     cli.EnvVars("QUEUEWATCH_SHEET_SPREADSHEET_ID"),
			Destination: &x.spreadsheetID,
		},
		&cli.StringFlag{
			Name:        "sheet-credentials",
			Usage:       "Path to the Google service account credentials JSON",
			Category:    "Logbook",
			Sources:     cli.EnvVars("QUEUEWATCH_SHEET_CREDENTIALS"),
			Destination: &x.credentialsFile,
		},
	}
}

// IsConfigured checks if the logbook configuration is complete
func (x *Sheet) IsConfigured() bool {
	return x.spreadsheetID != ""
}

// Configure creates the spreadsheet logbook client. Returns nil without
// error when no spreadsheet is configured; detection then only marks
// actions without appending rows.
func (x *Sheet) Configure(ctx context.Context) (*sheet.Logbook, error) {
	if !x.IsConfigured() {
		logging.Default().Info("Spreadsheet logbook not configured, log appends disabled")
		return nil, nil
	}

	lb, err := sheet.New(ctx, x.spreadsheetID, x.credentialsFile)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize spreadsheet logbook")
	}
	logging.Default().Info("Spreadsheet logbook enabled", "spreadsheet_id", x.spreadsheetID)
	return lb, nil
}
