package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"adstudio/internal/domain"
	"adstudio/internal/domain/jsoncfg"
	"adstudio/internal/wizard"
)

type actionAccepted struct {
	Action wizard.Action `json:"action"`
	State  stateView     `json:"state"`
}

// StartAction dispatches a generation trigger. The call outlives the
// request; clients poll the wizard state. With ?wait=true the handler
// blocks until the call settles and answers with the final state.
func (a *App) StartAction(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	action, ok := wizard.ParseAction(chi.URLParam(r, "action"))
	if !ok {
		a.error(w, http.StatusNotFound, "unknown_action", fmt.Sprintf("unknown action %q", chi.URLParam(r, "action")))
		return
	}
	done, err := sess.Orchestrator.Start(context.WithoutCancel(r.Context()), action)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
		select {
		case err := <-done:
			if err != nil {
				a.fail(w, r, err)
				return
			}
			a.json(w, http.StatusOK, newStateView(sess))
		case <-r.Context().Done():
		}
		return
	}
	a.json(w, http.StatusAccepted, actionAccepted{Action: action, State: newStateView(sess)})
}

type selectAngleRequest struct {
	AngleID string `json:"angle_id"`
}

func (a *App) SelectAngle(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	var req selectAngleRequest
	if err := decodeJSON(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	id, ok := domain.ParseAngleID(req.AngleID)
	if !ok {
		a.fail(w, r, fmt.Errorf("%w: %q", domain.ErrUnknownAngle, req.AngleID))
		return
	}
	if err := sess.Orchestrator.SelectAngle(id); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, newStateView(sess))
}

func (a *App) EditCopy(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	var patch jsoncfg.CopyPatch
	if err := decodeJSON(r, &patch); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := sess.Orchestrator.EditCopy(patch.ApplyTo); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, newStateView(sess))
}

func (a *App) ChangeAngle(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := sess.Orchestrator.ChangeAngle(); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, newStateView(sess))
}

func (a *App) BackToCopy(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := sess.Orchestrator.BackToCopy(); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, newStateView(sess))
}

// Reset starts the wizard over. Calls still in flight finish but their
// results are dropped.
func (a *App) Reset(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	sess.Orchestrator.StartOver()
	a.json(w, http.StatusOK, newStateView(sess))
}
