package crm_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
	"github.com/secmon-lab/queuewatch/pkg/service/crm"
)

func testSession(baseURL string) *crm.Session {
	return &crm.Session{
		ID:          "test-session",
		AccessToken: "test-token",
		InstanceURL: baseURL,
		UserID:      "005000000000009AAA",
		IssuedAt:    time.Now(),
	}
}

func newClient(t *testing.T, baseURL string) *crm.Client {
	t.Helper()
	c, err := crm.New(baseURL, "client-id", "watcher@example.com", nil,
		crm.WithSession(testSession(baseURL)))
	gt.NoError(t, err).Required()
	return c
}

func TestNew(t *testing.T) {
	t.Run("requires base URL", func(t *testing.T) {
		_, err := crm.New("", "client-id", "user", nil)
		gt.Error(t, err)
	})

	t.Run("requires private key without session", func(t *testing.T) {
		_, err := crm.New("https://example.test", "client-id", "user", nil)
		gt.Error(t, err)
	})

	t.Run("session skips the key requirement", func(t *testing.T) {
		c, err := crm.New("https://example.test", "client-id", "user", nil,
			crm.WithSession(testSession("https://example.test")))
		gt.NoError(t, err).Required()
		gt.Value(t, c.CurrentUserID()).Equal("005000000000009AAA")
	})
}

func TestQuery(t *testing.T) {
	var gotSOQL atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Header.Get("Authorization")).Equal("Bearer test-token")
		gotSOQL.Store(r.URL.Query().Get("q"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"totalSize": 1,
			"done":      true,
			"records": []map[string]any{
				{
					"Id":          "500000000000001AAA",
					"CaseNumber":  "00112233",
					"Subject":     "API timeouts",
					"Severity__c": "Level 1 - Critical",
					"Status":      "New",
					"Owner": map[string]any{
						"Name": "Signature Queue",
					},
					"Case_Routing_Taxonomy__r": map[string]any{
						"Name": "Sales-API",
					},
					"CreatedDate": "2025-03-05T10:30:00.000+0530",
				},
			},
		})
	}))
	defer ts.Close()

	c := newClient(t, ts.URL)

	records, err := c.Query(context.Background(), types.ModeSignature)
	gt.NoError(t, err).Required()
	gt.Array(t, records).Length(1)

	rec := records[0]
	gt.Value(t, rec.ID).Equal(types.CaseID("500000000000001AAA"))
	gt.Value(t, rec.CaseNumber).Equal("00112233")
	gt.Value(t, rec.SeverityRaw).Equal("Level 1 - Critical")
	gt.Value(t, rec.Taxonomy).Equal("Sales-API")
	gt.Value(t, rec.OwnerName).Equal("Signature Queue")
	gt.Bool(t, rec.CreatedAt.IsZero()).False()

	soql := gotSOQL.Load().(string)
	gt.Bool(t, len(soql) > 0).True()
	gt.Value(t, soql).Equal("SELECT Id, CaseNumber, Subject, Severity__c, Status, Owner.Name, " +
		"Case_Routing_Taxonomy__r.Name, CreatedDate " +
		"FROM Case WHERE IsClosed = false AND Support_Level__c = 'Signature' " +
		"ORDER BY CreatedDate DESC")
}

func TestQueryCommentsAndHistory(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		soql := r.URL.Query().Get("q")
		switch {
		case strings.Contains(soql, "CaseComment"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"records": []map[string]any{
					{
						"ParentId":    "500000000000001AAA",
						"CommentBody": "#gho handed off",
						"CreatedById": "005000000000009AAA",
						"CreatedDate": "2025-03-05T10:30:00.000+0530",
					},
				},
			})
		case strings.Contains(soql, "CaseHistory"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"records": []map[string]any{
					{
						"CaseId":      "500000000000001AAA",
						"Field":       "Owner",
						"OldValue":    "00G000000000001AAA",
						"NewValue":    "005000000000003AAA",
						"CreatedById": "005000000000009AAA",
						"CreatedDate": "2025-03-05T10:31:00.000+0530",
					},
				},
			})
		default:
			http.Error(w, "unexpected query: "+soql, http.StatusBadRequest)
		}
	}))
	defer ts.Close()

	c := newClient(t, ts.URL)
	ctx := context.Background()
	ids := []types.CaseID{"500000000000001AAA"}

	comments, err := c.QueryComments(ctx, ids)
	gt.NoError(t, err).Required()
	gt.Array(t, comments).Length(1)
	gt.Value(t, comments[0].Body).Equal("#gho handed off")
	gt.Value(t, comments[0].CreatedBy).Equal("005000000000009AAA")

	events, err := c.QueryHistory(ctx, ids, "005000000000009AAA")
	gt.NoError(t, err).Required()
	gt.Array(t, events).Length(1)
	gt.Value(t, events[0].Field).Equal("Owner")
	gt.Value(t, events[0].NewValue).Equal(types.RecordRef("005000000000003AAA"))

	t.Run("empty ID list short-circuits", func(t *testing.T) {
		comments, err := c.QueryComments(ctx, nil)
		gt.NoError(t, err).Required()
		gt.Array(t, comments).Length(0)

		events, err := c.QueryHistory(ctx, nil, "005000000000009AAA")
		gt.NoError(t, err).Required()
		gt.Array(t, events).Length(0)
	})
}

func TestGetName(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/services/data/v59.0/sobjects/User/005000000000003AAA":
			_ = json.NewEncoder(w).Encode(map[string]any{"Name": "Jordan Smith"})
		case "/services/data/v59.0/sobjects/Group/00G000000000001AAA":
			_ = json.NewEncoder(w).Encode(map[string]any{"Name": "Signature Queue"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	c := newClient(t, ts.URL)
	ctx := context.Background()

	name, err := c.GetUserName(ctx, "005000000000003AAA")
	gt.NoError(t, err).Required()
	gt.Value(t, name).Equal("Jordan Smith")

	name, err = c.GetGroupName(ctx, "00G000000000001AAA")
	gt.NoError(t, err).Required()
	gt.Value(t, name).Equal("Signature Queue")

	_, err = c.GetUserName(ctx, "005000000000404AAA")
	gt.Error(t, err)
}

func TestReauthOnUnauthorized(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	gt.NoError(t, err).Required()
	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	gt.NoError(t, err).Required()
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})

	var tokenCalls, queryCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/services/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		gt.NoError(t, r.ParseForm()).Required()
		gt.Value(t, r.Form.Get("grant_type")).Equal("urn:ietf:params:oauth:grant-type:jwt-bearer")
		gt.Bool(t, r.Form.Get("assertion") != "").True()

		base := "http://" + r.Host
		n := tokenCalls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": fmt.Sprintf("token-%d", n),
			"instance_url": base,
			"id":           base + "/id/00D000000000001AAA/005000000000009AAA",
		})
	})
	mux.HandleFunc("/services/data/v59.0/query", func(w http.ResponseWriter, r *http.Request) {
		queryCalls.Add(1)
		// The first token is rejected to force a re-auth.
		if r.Header.Get("Authorization") == "Bearer token-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"records": []any{}})
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, err := crm.New(ts.URL, "client-id", "watcher@example.com", keyPEM)
	gt.NoError(t, err).Required()

	gt.Value(t, c.CurrentUserID()).Equal("")

	records, err := c.Query(context.Background(), types.ModeSignature)
	gt.NoError(t, err).Required()
	gt.Array(t, records).Length(0)

	gt.Value(t, tokenCalls.Load()).Equal(int32(2))
	gt.Value(t, queryCalls.Load()).Equal(int32(2))
	gt.Value(t, c.CurrentUserID()).Equal("005000000000009AAA")
}

func TestServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := newClient(t, ts.URL)

	_, err := c.Query(context.Background(), types.ModeSignature)
	gt.Error(t, err)
}
