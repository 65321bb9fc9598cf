package sync

import (
	"fmt"
	"strings"
)

// GateDecision is the Submission Gate's verdict.
type GateDecision struct {
	Admitted  bool
	Rejection GateRejection
	// FellBack is set when a target form was configured but its name could not be read.
	FellBack bool
}

func admit(fellBack bool) GateDecision {
	return GateDecision{Admitted: true, FellBack: fellBack}
}

func reject(format string, args ...interface{}) GateDecision {
	return GateDecision{Rejection: GateRejection{Reason: fmt.Sprintf(format, args...)}}
}

// SubmissionGate decides whether a submission is meant for this bridge at all.
type SubmissionGate struct {
	Config Config
}

// Admit checks the required form action (if configured), then the form name
// when a target form is configured and the trigger can report it, else that
// every required field is present.
func (g SubmissionGate) Admit(trigger Trigger, fields FieldMapping) GateDecision {
	if g.Config.RequiredAction != "" {
		if d := g.checkAction(trigger); !d.Admitted {
			return d
		}
	}

	if g.Config.TargetFormName == "" {
		return g.checkRequiredFields(fields, false)
	}

	name, err := probeFormName(trigger)
	if err != nil {
		// the form name cannot be read on every host, fall back to the shape of the payload
		return g.checkRequiredFields(fields, true)
	}
	if name != g.Config.TargetFormName {
		return reject("form %q does not match target form %q", name, g.Config.TargetFormName)
	}
	return admit(false)
}

func (g SubmissionGate) checkRequiredFields(fields FieldMapping, fellBack bool) GateDecision {
	if missing := fields.Missing(g.Config.RequiredFields); len(missing) > 0 {
		messages := make([]string, len(missing))
		for i, k := range missing {
			messages[i] = requiredMessage(k)
		}
		d := reject("%s", strings.Join(messages, ", "))
		d.FellBack = fellBack
		return d
	}
	return admit(fellBack)
}

func (g SubmissionGate) checkAction(trigger Trigger) GateDecision {
	ap, ok := trigger.(ActionsProvider)
	if !ok {
		return reject("form actions unavailable, %q action required", g.Config.RequiredAction)
	}
	actions, err := ap.Actions()
	if err != nil {
		return reject("form actions unavailable, %q action required: %v", g.Config.RequiredAction, err)
	}
	for _, a := range actions {
		if a == g.Config.RequiredAction {
			return admit(false)
		}
	}
	return reject("form has no %q action", g.Config.RequiredAction)
}

// probeFormName reads the form name, treating a panic in the trigger as unavailable.
func probeFormName(trigger Trigger) (name string, err error) {
	defer func() {
		if r := recover(); r != nil {
			name = ""
			err = fmt.Errorf("%w: %v", ErrFormNameUnavailable, r)
		}
	}()
	return trigger.FormName()
}

// requiredMessage turns a field key into a log message, e.g. "company name required".
func requiredMessage(key string) string {
	return strings.ReplaceAll(key, "_", " ") + " required"
}
