package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/secmon-lab/queuewatch/pkg/controller/http"
	"github.com/secmon-lab/queuewatch/pkg/domain/model"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
	"github.com/secmon-lab/queuewatch/pkg/usecase"
)

type fakeUseCase struct {
	mode        types.Mode
	pollResult  *model.PollResult
	pollErr     error
	snoozed     map[types.CaseID]int
	actionTaken map[types.CaseID]bool
	confirmed   map[types.CaseID]types.ActionType
	reprocessed string
}

func newFakeUseCase() *fakeUseCase {
	return &fakeUseCase{
		mode:        types.ModeSignature,
		snoozed:     map[types.CaseID]int{},
		actionTaken: map[types.CaseID]bool{},
		confirmed:   map[types.CaseID]types.ActionType{},
	}
}

func (f *fakeUseCase) RunPollCycle(ctx context.Context, mode types.Mode) (*model.PollResult, error) {
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	if f.pollResult != nil {
		return f.pollResult, nil
	}
	return &model.PollResult{Mode: mode, Views: []*model.CaseView{}, PolledAt: time.Now()}, nil
}

func (f *fakeUseCase) ActiveMode(ctx context.Context) (types.Mode, error) {
	return f.mode, nil
}

func (f *fakeUseCase) SwitchMode(ctx context.Context, mode types.Mode) error {
	f.mode = mode
	return nil
}

func (f *fakeUseCase) SnoozeCase(ctx context.Context, caseID types.CaseID, minutes int) error {
	if minutes <= 0 {
		return usecase.ErrCaseNotFound // any error will do for the handler
	}
	f.snoozed[caseID] = minutes
	return nil
}

func (f *fakeUseCase) WakeCase(ctx context.Context, caseID types.CaseID) error {
	delete(f.snoozed, caseID)
	return nil
}

func (f *fakeUseCase) ToggleActionTaken(ctx context.Context, caseID types.CaseID, taken bool) error {
	f.actionTaken[caseID] = taken
	return nil
}

func (f *fakeUseCase) ConfirmAction(ctx context.Context, caseID types.CaseID, actionType types.ActionType, rec *model.CaseRecord) error {
	f.confirmed[caseID] = actionType
	return nil
}

func (f *fakeUseCase) ForceReprocess(ctx context.Context, caseRef string) (*usecase.ReprocessResult, error) {
	if caseRef == "missing" {
		return nil, usecase.ErrCaseNotFound
	}
	f.reprocessed = caseRef
	return &usecase.ReprocessResult{CaseID: types.CaseID(caseRef)}, nil
}

func newTestServer(t *testing.T, uc *fakeUseCase) *httptest.Server {
	t.Helper()
	srv, err := httpctrl.New(uc)
	gt.NoError(t, err).Required()
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, newFakeUseCase())

	resp, err := http.Get(ts.URL + "/health")
	gt.NoError(t, err).Required()
	defer resp.Body.Close()
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
}

func TestPollEndpoint(t *testing.T) {
	t.Run("returns the poll result", func(t *testing.T) {
		uc := newFakeUseCase()
		uc.pollResult = &model.PollResult{
			Mode:           types.ModeSignature,
			Views:          []*model.CaseView{{ID: "500000000000001AAA", CaseNumber: "00112233"}},
			DisplayedCount: 1,
			Foreground:     true,
		}
		ts := newTestServer(t, uc)

		resp, err := http.Get(ts.URL + "/api/poll")
		gt.NoError(t, err).Required()
		defer resp.Body.Close()
		gt.Value(t, resp.StatusCode).Equal(http.StatusOK)

		var result model.PollResult
		gt.NoError(t, json.NewDecoder(resp.Body).Decode(&result)).Required()
		gt.Value(t, result.DisplayedCount).Equal(1)
		gt.Value(t, result.Foreground).Equal(true)
		gt.Array(t, result.Views).Length(1)
	})

	t.Run("stale cycle maps to conflict", func(t *testing.T) {
		uc := newFakeUseCase()
		uc.pollErr = usecase.ErrStaleCycle
		ts := newTestServer(t, uc)

		resp, err := http.Get(ts.URL + "/api/poll")
		gt.NoError(t, err).Required()
		defer resp.Body.Close()
		gt.Value(t, resp.StatusCode).Equal(http.StatusConflict)
	})

	t.Run("fetch failure maps to bad gateway", func(t *testing.T) {
		uc := newFakeUseCase()
		uc.pollErr = usecase.ErrFetchFailed
		ts := newTestServer(t, uc)

		resp, err := http.Get(ts.URL + "/api/poll")
		gt.NoError(t, err).Required()
		defer resp.Body.Close()
		gt.Value(t, resp.StatusCode).Equal(http.StatusBadGateway)
	})
}

func TestModeEndpoints(t *testing.T) {
	uc := newFakeUseCase()
	ts := newTestServer(t, uc)

	resp, err := http.Get(ts.URL + "/api/mode")
	gt.NoError(t, err).Required()
	defer resp.Body.Close()
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)

	var body map[string]string
	gt.NoError(t, json.NewDecoder(resp.Body).Decode(&body)).Required()
	gt.Value(t, body["mode"]).Equal("signature")

	req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/mode", strings.NewReader(`{"mode":"premier"}`))
	gt.NoError(t, err).Required()
	resp2, err := http.DefaultClient.Do(req)
	gt.NoError(t, err).Required()
	defer resp2.Body.Close()
	gt.Value(t, resp2.StatusCode).Equal(http.StatusOK)
	gt.Value(t, uc.mode).Equal(types.ModePremier)

	req, err = http.NewRequest(http.MethodPut, ts.URL+"/api/mode", strings.NewReader(`{"mode":"gold"}`))
	gt.NoError(t, err).Required()
	resp3, err := http.DefaultClient.Do(req)
	gt.NoError(t, err).Required()
	defer resp3.Body.Close()
	gt.Value(t, resp3.StatusCode).Equal(http.StatusBadRequest)
}

func TestCaseEndpoints(t *testing.T) {
	const caseID = types.CaseID("500000000000001AAA")

	t.Run("snooze", func(t *testing.T) {
		uc := newFakeUseCase()
		ts := newTestServer(t, uc)

		resp, err := http.Post(ts.URL+"/api/cases/"+caseID.String()+"/snooze",
			"application/json", strings.NewReader(`{"minutes":30}`))
		gt.NoError(t, err).Required()
		defer resp.Body.Close()
		gt.Value(t, resp.StatusCode).Equal(http.StatusNoContent)
		gt.Value(t, uc.snoozed[caseID]).Equal(30)
	})

	t.Run("snooze rejects bad duration", func(t *testing.T) {
		uc := newFakeUseCase()
		ts := newTestServer(t, uc)

		resp, err := http.Post(ts.URL+"/api/cases/"+caseID.String()+"/snooze",
			"application/json", strings.NewReader(`{"minutes":0}`))
		gt.NoError(t, err).Required()
		defer resp.Body.Close()
		gt.Value(t, resp.StatusCode).Equal(http.StatusBadRequest)
	})

	t.Run("wake", func(t *testing.T) {
		uc := newFakeUseCase()
		uc.snoozed[caseID] = 30
		ts := newTestServer(t, uc)

		req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/cases/"+caseID.String()+"/snooze", nil)
		gt.NoError(t, err).Required()
		resp, err := http.DefaultClient.Do(req)
		gt.NoError(t, err).Required()
		defer resp.Body.Close()
		gt.Value(t, resp.StatusCode).Equal(http.StatusNoContent)
		gt.Value(t, len(uc.snoozed)).Equal(0)
	})

	t.Run("action toggle", func(t *testing.T) {
		uc := newFakeUseCase()
		ts := newTestServer(t, uc)

		resp, err := http.Post(ts.URL+"/api/cases/"+caseID.String()+"/action",
			"application/json", strings.NewReader(`{"taken":true}`))
		gt.NoError(t, err).Required()
		defer resp.Body.Close()
		gt.Value(t, resp.StatusCode).Equal(http.StatusNoContent)
		gt.Value(t, uc.actionTaken[caseID]).Equal(true)
	})

	t.Run("confirm", func(t *testing.T) {
		uc := newFakeUseCase()
		ts := newTestServer(t, uc)

		resp, err := http.Post(ts.URL+"/api/cases/"+caseID.String()+"/confirm",
			"application/json", strings.NewReader(`{"action_type":"gho"}`))
		gt.NoError(t, err).Required()
		defer resp.Body.Close()
		gt.Value(t, resp.StatusCode).Equal(http.StatusNoContent)
		gt.Value(t, uc.confirmed[caseID]).Equal(types.ActionTypeGHO)
	})

	t.Run("confirm rejects unknown action type", func(t *testing.T) {
		uc := newFakeUseCase()
		ts := newTestServer(t, uc)

		resp, err := http.Post(ts.URL+"/api/cases/"+caseID.String()+"/confirm",
			"application/json", strings.NewReader(`{"action_type":"escalate"}`))
		gt.NoError(t, err).Required()
		defer resp.Body.Close()
		gt.Value(t, resp.StatusCode).Equal(http.StatusBadRequest)
	})
}

func TestReprocessEndpoint(t *testing.T) {
	t.Run("reprocesses by reference", func(t *testing.T) {
		uc := newFakeUseCase()
		ts := newTestServer(t, uc)

		resp, err := http.Post(ts.URL+"/api/reprocess",
			"application/json", strings.NewReader(`{"case_ref":"00112233"}`))
		gt.NoError(t, err).Required()
		defer resp.Body.Close()
		gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
		gt.Value(t, uc.reprocessed).Equal("00112233")
	})

	t.Run("unknown case maps to not found", func(t *testing.T) {
		uc := newFakeUseCase()
		ts := newTestServer(t, uc)

		resp, err := http.Post(ts.URL+"/api/reprocess",
			"application/json", strings.NewReader(`{"case_ref":"missing"}`))
		gt.NoError(t, err).Required()
		defer resp.Body.Close()
		gt.Value(t, resp.StatusCode).Equal(http.StatusNotFound)
	})
}
