package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/queuewatch/pkg/utils/logging"
	"github.com/secmon-lab/queuewatch/pkg/utils/safe"
)

// Session is the authenticated CRM session. It replaces ambient session
// state: one is minted per token exchange and invalidated on auth
// failure, never shared as a global.
type Session struct {
	ID          string
	AccessToken string `masq:"secret"`
	InstanceURL string
	UserID      string
	IssuedAt    time.Time
}

const assertionLifetime = 3 * time.Minute

// buildAssertion creates the signed JWT for the bearer token grant.
func (c *Client) buildAssertion(now time.Time) ([]byte, error) {
	tok, err := jwt.NewBuilder().
		Issuer(c.clientID).
		Subject(c.username).
		Audience([]string{c.baseURL}).
		IssuedAt(now).
		Expiration(now.Add(assertionLifetime)).
		Build()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build JWT assertion")
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256, c.signKey))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to sign JWT assertion")
	}
	return signed, nil
}

// authenticate exchanges a signed assertion for a new session.
func (c *Client) authenticate(ctx context.Context) (*Session, error) {
	assertion, err := c.buildAssertion(time.Now())
	if err != nil {
		return nil, err
	}

	form := url.Values{
		"grant_type": {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"assertion":  {string(assertion)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/services/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to request token")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("token request rejected", goerr.V("status", resp.StatusCode))
	}

	var body struct {
		AccessToken string `json:"access_token"`
		InstanceURL string `json:"instance_url"`
		Identity    string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, goerr.Wrap(err, "failed to decode token response")
	}

	// The identity claim is a URL whose last path segment is the user ID.
	userID := path.Base(body.Identity)

	sess := &Session{
		ID:          uuid.NewString(),
		AccessToken: body.AccessToken,
		InstanceURL: body.InstanceURL,
		UserID:      userID,
		IssuedAt:    time.Now().UTC(),
	}

	logging.From(ctx).Info("CRM session established",
		"session_id", sess.ID,
		"user_id", sess.UserID,
	)
	return sess, nil
}

// session returns the current session, minting one if absent.
func (c *Client) session(ctx context.Context) (*Session, error) {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()

	if c.sess != nil {
		return c.sess, nil
	}

	sess, err := c.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	c.sess = sess
	return sess, nil
}

// invalidateSession drops the session if it still matches the one that
// failed. A concurrent flow may already have replaced it; state must be
// re-checked after any suspension point.
func (c *Client) invalidateSession(failed *Session) {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()

	if c.sess != nil && c.sess.ID == failed.ID {
		c.sess = nil
	}
}
