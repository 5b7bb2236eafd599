package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/queuewatch/pkg/domain/interfaces"
	"github.com/secmon-lab/queuewatch/pkg/domain/model"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
	"github.com/secmon-lab/queuewatch/pkg/utils/logging"
	"github.com/secmon-lab/queuewatch/pkg/utils/safe"
)

const defaultAPIVersion = "v59.0"

var defaultQueries = map[types.Mode]string{
	types.ModeSignature: "Support_Level__c = 'Signature'",
	types.ModePremier:   "Support_Level__c = 'Premier Priority'",
}

// Client is the record source client. All queries run against the
// instance URL returned by the token exchange; the token endpoint lives
// on the configured base URL.
type Client struct {
	baseURL    string
	apiVersion string
	clientID   string
	username   string
	signKey    jwk.Key
	queries    map[types.Mode]string
	httpClient *http.Client

	sessionMu sync.Mutex
	sess      *Session
}

var _ interfaces.CRMClient = &Client{}

type Option func(*Client)

// WithHTTPClient overrides the HTTP client, mainly for tests
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithAPIVersion overrides the REST API version
func WithAPIVersion(v string) Option {
	return func(c *Client) {
		c.apiVersion = v
	}
}

// WithQueries overrides the per-mode query filter expressions
func WithQueries(queries map[types.Mode]string) Option {
	return func(c *Client) {
		for mode, q := range queries {
			if q != "" {
				c.queries[mode] = q
			}
		}
	}
}

// WithSession injects a pre-established session, skipping the token
// exchange. Used by tests.
func WithSession(sess *Session) Option {
	return func(c *Client) {
		c.sess = sess
	}
}

// New creates a CRM client. privateKeyPEM is the RS256 signing key for
// the JWT bearer grant.
func New(baseURL, clientID, username string, privateKeyPEM []byte, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, goerr.New("CRM base URL is required")
	}
	if clientID == "" {
		return nil, goerr.New("CRM client ID is required")
	}
	if username == "" {
		return nil, goerr.New("CRM username is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiVersion: defaultAPIVersion,
		clientID:   clientID,
		username:   username,
		httpClient: http.DefaultClient,
		queries:    map[types.Mode]string{},
	}
	for mode, q := range defaultQueries {
		c.queries[mode] = q
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.sess == nil {
		if len(privateKeyPEM) == 0 {
			return nil, goerr.New("CRM private key is required")
		}
		key, err := jwk.ParseKey(privateKeyPEM, jwk.WithPEM(true))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to parse CRM private key")
		}
		c.signKey = key
	}

	return c, nil
}

// CurrentUserID returns the authenticated user's identifier, or an empty
// string before the first successful token exchange.
func (c *Client) CurrentUserID() string {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()

	if c.sess == nil {
		return ""
	}
	return c.sess.UserID
}

// getJSON issues an authenticated GET and decodes the response. A 401
// invalidates the session and the request is retried once with a fresh
// one.
func (c *Client) getJSON(ctx context.Context, apiPath string, query url.Values, out any) error {
	for attempt := 0; attempt < 2; attempt++ {
		sess, err := c.session(ctx)
		if err != nil {
			return err
		}

		instance := sess.InstanceURL
		if instance == "" {
			instance = c.baseURL
		}

		u := instance + apiPath
		if len(query) > 0 {
			u += "?" + query.Encode()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return goerr.Wrap(err, "failed to create request", goerr.V("path", apiPath))
		}
		req.Header.Set("Authorization", "Bearer "+sess.AccessToken)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return goerr.Wrap(err, "failed to send request", goerr.V("path", apiPath))
		}

		if resp.StatusCode == http.StatusUnauthorized {
			safe.Close(ctx, resp.Body)
			c.invalidateSession(sess)
			logging.From(ctx).Warn("CRM session rejected, re-authenticating",
				"session_id", sess.ID)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			safe.Close(ctx, resp.Body)
			return goerr.New("unexpected response from CRM",
				goerr.V("status", resp.StatusCode),
				goerr.V("path", apiPath),
				goerr.V("body", string(body)))
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		safe.Close(ctx, resp.Body)
		if err != nil {
			return goerr.Wrap(err, "failed to decode CRM response", goerr.V("path", apiPath))
		}
		return nil
	}

	return goerr.New("CRM authentication failed after retry", goerr.V("path", apiPath))
}

func (c *Client) queryPath() string {
	return fmt.Sprintf("/services/data/%s/query", c.apiVersion)
}

func (c *Client) runQuery(ctx context.Context, soql string, out any) error {
	q := url.Values{"q": {soql}}
	return c.getJSON(ctx, c.queryPath(), q, out)
}

// Query fetches the case batch for the given mode, ordered by creation
// time descending by the backend.
func (c *Client) Query(ctx context.Context, mode types.Mode) ([]*model.CaseRecord, error) {
	filter, ok := c.queries[mode]
	if !ok {
		return nil, goerr.New("no query configured for mode", goerr.V("mode", mode))
	}

	soql := "SELECT Id, CaseNumber, Subject, Severity__c, Status, Owner.Name, " +
		"Case_Routing_Taxonomy__r.Name, CreatedDate " +
		"FROM Case WHERE IsClosed = false AND " + filter + " " +
		"ORDER BY CreatedDate DESC"

	var resp queryResponse[caseRecordBody]
	if err := c.runQuery(ctx, soql, &resp); err != nil {
		return nil, goerr.Wrap(err, "case query failed", goerr.V("mode", mode))
	}

	records := make([]*model.CaseRecord, 0, len(resp.Records))
	for _, body := range resp.Records {
		rec, err := body.toModel()
		if err != nil {
			return nil, goerr.Wrap(err, "malformed case record", goerr.V("id", body.ID))
		}
		records = append(records, rec)
	}
	return records, nil
}

func quoteIDList(ids []types.CaseID) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = "'" + id.String() + "'"
	}
	return strings.Join(quoted, ", ")
}

// QueryHistory fetches ownership and routing-status changes on the cases
// made by the given user.
func (c *Client) QueryHistory(ctx context.Context, caseIDs []types.CaseID, userID string) ([]*model.HistoryEvent, error) {
	if len(caseIDs) == 0 {
		return nil, nil
	}

	soql := "SELECT CaseId, Field, OldValue, NewValue, CreatedById, CreatedDate " +
		"FROM CaseHistory WHERE CaseId IN (" + quoteIDList(caseIDs) + ") " +
		"AND CreatedById = '" + userID + "' " +
		"AND Field IN ('Owner', 'Status') " +
		"ORDER BY CreatedDate DESC"

	var resp queryResponse[historyEventBody]
	if err := c.runQuery(ctx, soql, &resp); err != nil {
		return nil, goerr.Wrap(err, "history query failed")
	}

	events := make([]*model.HistoryEvent, 0, len(resp.Records))
	for _, body := range resp.Records {
		ev, err := body.toModel()
		if err != nil {
			return nil, goerr.Wrap(err, "malformed history event", goerr.V("case_id", body.CaseID))
		}
		events = append(events, ev)
	}
	return events, nil
}

// QueryComments fetches discussion feed entries on the cases.
func (c *Client) QueryComments(ctx context.Context, caseIDs []types.CaseID) ([]*model.CommentEvent, error) {
	if len(caseIDs) == 0 {
		return nil, nil
	}

	soql := "SELECT ParentId, CommentBody, CreatedById, CreatedDate " +
		"FROM CaseComment WHERE ParentId IN (" + quoteIDList(caseIDs) + ") " +
		"ORDER BY CreatedDate DESC"

	var resp queryResponse[commentEventBody]
	if err := c.runQuery(ctx, soql, &resp); err != nil {
		return nil, goerr.Wrap(err, "comment query failed")
	}

	comments := make([]*model.CommentEvent, 0, len(resp.Records))
	for _, body := range resp.Records {
		ev, err := body.toModel()
		if err != nil {
			return nil, goerr.Wrap(err, "malformed comment event", goerr.V("case_id", body.ParentID))
		}
		comments = append(comments, ev)
	}
	return comments, nil
}

func (c *Client) getName(ctx context.Context, object string, ref types.RecordRef) (string, error) {
	apiPath := fmt.Sprintf("/services/data/%s/sobjects/%s/%s", c.apiVersion, object, ref)

	var body nameBody
	if err := c.getJSON(ctx, apiPath, nil, &body); err != nil {
		return "", goerr.Wrap(err, "name lookup failed",
			goerr.V("object", object),
			goerr.V("ref", ref))
	}
	return body.Name, nil
}

// GetUserName resolves a user identifier to a display name.
func (c *Client) GetUserName(ctx context.Context, ref types.RecordRef) (string, error) {
	return c.getName(ctx, "User", ref)
}

// GetGroupName resolves a group identifier to a display name.
func (c *Client) GetGroupName(ctx context.Context, ref types.RecordRef) (string, error) {
	return c.getName(ctx, "Group", ref)
}
