package config

import (
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
	"github.com/secmon-lab/queuewatch/pkg/service/crm"
	"github.com/urfave/cli/v3"
)

// CRM holds CLI flags for the case management API connection. The
// private key authenticates the JWT bearer grant; the matching public
// key must be registered on the connected app.
type CRM struct {
	baseURL        string
	clientID       string
	username       string
	privateKeyFile string
	apiVersion     string
}

func (x *CRM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "crm-base-url",
			Usage:       "CRM instance base URL (e.g. https://example.my.salesforce.com)",
			Category:    "CRM",
			Sources:     cli.EnvVars("QUEUEWATCH_CRM_BASE_URL"),
			Destination: &x.baseURL,
		},
		&cli.StringFlag{
			Name:        "crm-client-id",
			Usage:       "Connected app consumer key for the JWT bearer grant",
			Category:    "CRM",
			Sources:     cli.EnvVars("QUEUEWATCH_CRM_CLIENT_ID"),
			Destination: &x.clientID,
		},
		&cli.StringFlag{
			Name:        "crm-username",
			Usage:       "Username to authenticate as",
			Category:    "CRM",
			Sources:     cli.EnvVars("QUEUEWATCH_CRM_USERNAME"),
			Destination: &x.username,
		},
		&cli.StringFlag{
			Name:        "crm-private-key",
			Usage:       "Path to the RSA private key PEM for the JWT bearer grant",
			Category:    "CRM",
			Sources:     cli.EnvVars("QUEUEWATCH_CRM_PRIVATE_KEY"),
			Destination: &x.privateKeyFile,
		},
		&cli.StringFlag{
			Name:        "crm-api-version",
			Usage:       "CRM REST API version",
			Category:    "CRM",
			Sources:     cli.EnvVars("QUEUEWATCH_CRM_API_VERSION"),
			Destination: &x.apiVersion,
		},
	}
}

func (x CRM) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("base_url", x.baseURL),
		slog.String("username", x.username),
		slog.Int("client-id.len", len(x.clientID)),
		slog.String("private_key_file", x.privateKeyFile),
	)
}

// Configure creates the CRM client. queries overrides the built-in
// per-mode query filters when non-empty.
func (x *CRM) Configure(queries map[types.Mode]string) (*crm.Client, error) {
	if x.baseURL == "" || x.clientID == "" || x.username == "" || x.privateKeyFile == "" {
		return nil, goerr.New("CRM configuration is incomplete: set --crm-base-url, --crm-client-id, --crm-username and --crm-private-key")
	}

	pem, err := os.ReadFile(x.privateKeyFile)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read CRM private key", goerr.V("path", x.privateKeyFile))
	}

	var opts []crm.Option
	if x.apiVersion != "" {
		opts = append(opts, crm.WithAPIVersion(x.apiVersion))
	}
	if len(queries) > 0 {
		opts = append(opts, crm.WithQueries(queries))
	}

	client, err := crm.New(x.baseURL, x.clientID, x.username, pem, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize CRM client")
	}
	return client, nil
}
