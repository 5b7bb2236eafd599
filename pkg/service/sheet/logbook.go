package sheet

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/queuewatch/pkg/domain/interfaces"
	"github.com/secmon-lab/queuewatch/pkg/domain/model"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
	"github.com/secmon-lab/queuewatch/pkg/utils/logging"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var defaultTabs = map[types.Mode]string{
	types.ModeSignature: "Signature",
	types.ModePremier:   "Premier",
}

// Logbook appends triage rows to a spreadsheet, one tab per mode.
type Logbook struct {
	svc           *sheets.Service
	spreadsheetID string
	tabs          map[types.Mode]string
}

var _ interfaces.Logbook = &Logbook{}

type Option func(*Logbook)

// WithTab overrides the sheet tab used for a mode
func WithTab(mode types.Mode, tab string) Option {
	return func(l *Logbook) {
		l.tabs[mode] = tab
	}
}

// New creates a spreadsheet logbook. credentialsFile may be empty, in
// which case application default credentials are used.
func New(ctx context.Context, spreadsheetID, credentialsFile string, opts ...Option) (*Logbook, error) {
	if spreadsheetID == "" {
		return nil, goerr.New("spreadsheet ID is required")
	}

	var clientOpts []option.ClientOption
	if credentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credentialsFile))
	}

	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create sheets service")
	}

	l := &Logbook{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		tabs:          map[types.Mode]string{},
	}
	for mode, tab := range defaultTabs {
		l.tabs[mode] = tab
	}

	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// Append writes one row to the mode's tab. The caller treats this as
// fire-and-forget; a failure here must not undo the dedup mark.
func (l *Logbook) Append(ctx context.Context, mode types.Mode, entry *model.LogEntry) error {
	tab, ok := l.tabs[mode]
	if !ok {
		return goerr.New("no sheet tab configured for mode", goerr.V("mode", mode))
	}

	vr := &sheets.ValueRange{
		Values: [][]interface{}{entry.Row()},
	}

	_, err := l.svc.Spreadsheets.Values.
		Append(l.spreadsheetID, tab+"!A:F", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return goerr.Wrap(err, "failed to append logbook row",
			goerr.V("mode", mode),
			goerr.V("case_number", entry.CaseNumber))
	}

	logging.From(ctx).Info("logbook row appended",
		"mode", mode,
		"case_number", entry.CaseNumber,
		"action_type", entry.ActionType,
	)
	return nil
}
