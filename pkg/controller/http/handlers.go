package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/queuewatch/pkg/domain/types"
	"github.com/secmon-lab/queuewatch/pkg/usecase"
	"github.com/secmon-lab/queuewatch/pkg/utils/errutil"
)

func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		errutil.Handle(r.Context(), err, "failed to encode response")
	}
}

func pollHandler(uc TriageUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		mode, err := uc.ActiveMode(ctx)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, "failed to read active mode", http.StatusInternalServerError)
			return
		}

		result, err := uc.RunPollCycle(ctx, mode)
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrStaleCycle):
				errutil.HandleHTTP(ctx, w, err, "mode changed during poll, retry", http.StatusConflict)
			case errors.Is(err, usecase.ErrFetchFailed):
				errutil.HandleHTTP(ctx, w, err, "upstream fetch failed", http.StatusBadGateway)
			default:
				errutil.HandleHTTP(ctx, w, err, "poll cycle failed", http.StatusInternalServerError)
			}
			return
		}

		respondJSON(w, r, http.StatusOK, result)
	}
}

func getModeHandler(uc TriageUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		mode, err := uc.ActiveMode(ctx)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, "failed to read active mode", http.StatusInternalServerError)
			return
		}

		respondJSON(w, r, http.StatusOK, map[string]string{"mode": mode.String()})
	}
}

func putModeHandler(uc TriageUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req struct {
			Mode string `json:"mode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(ctx, w, err, "invalid request body", http.StatusBadRequest)
			return
		}

		mode, err := types.ParseMode(req.Mode)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, "invalid mode", http.StatusBadRequest)
			return
		}

		if err := uc.SwitchMode(ctx, mode); err != nil {
			errutil.HandleHTTP(ctx, w, err, "failed to switch mode", http.StatusInternalServerError)
			return
		}

		respondJSON(w, r, http.StatusOK, map[string]string{"mode": mode.String()})
	}
}

func snoozeHandler(uc TriageUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caseID := types.CaseID(chi.URLParam(r, "caseID"))

		var req struct {
			Minutes int `json:"minutes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(ctx, w, err, "invalid request body", http.StatusBadRequest)
			return
		}

		if err := uc.SnoozeCase(ctx, caseID, req.Minutes); err != nil {
			errutil.HandleHTTP(ctx, w, err, "failed to snooze case", http.StatusBadRequest)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func wakeHandler(uc TriageUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caseID := types.CaseID(chi.URLParam(r, "caseID"))

		if err := uc.WakeCase(ctx, caseID); err != nil {
			errutil.HandleHTTP(ctx, w, err, "failed to wake case", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func actionHandler(uc TriageUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caseID := types.CaseID(chi.URLParam(r, "caseID"))

		var req struct {
			Taken bool `json:"taken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(ctx, w, err, "invalid request body", http.StatusBadRequest)
			return
		}

		if err := uc.ToggleActionTaken(ctx, caseID, req.Taken); err != nil {
			errutil.HandleHTTP(ctx, w, err, "failed to update action state", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func confirmHandler(uc TriageUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caseID := types.CaseID(chi.URLParam(r, "caseID"))

		var req struct {
			ActionType string `json:"action_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(ctx, w, err, "invalid request body", http.StatusBadRequest)
			return
		}

		actionType := types.ActionType(req.ActionType)
		if !actionType.IsValid() {
			errutil.HandleHTTP(ctx, w, goerr.New("invalid action type"), "invalid action type", http.StatusBadRequest)
			return
		}

		if err := uc.ConfirmAction(ctx, caseID, actionType, nil); err != nil {
			errutil.HandleHTTP(ctx, w, err, "failed to confirm action", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func reprocessHandler(uc TriageUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req struct {
			CaseRef string `json:"case_ref"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(ctx, w, err, "invalid request body", http.StatusBadRequest)
			return
		}

		result, err := uc.ForceReprocess(ctx, req.CaseRef)
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrCaseNotFound):
				errutil.HandleHTTP(ctx, w, err, "case not found in current batch", http.StatusNotFound)
			case errors.Is(err, usecase.ErrFetchFailed):
				errutil.HandleHTTP(ctx, w, err, "upstream fetch failed", http.StatusBadGateway)
			default:
				errutil.HandleHTTP(ctx, w, err, "reprocess failed", http.StatusInternalServerError)
			}
			return
		}

		respondJSON(w, r, http.StatusOK, result)
	}
}
