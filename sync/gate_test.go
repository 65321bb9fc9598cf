package sync

import (
	"errors"
	"strings"
	"testing"
)

var completeFields = FieldMapping{
	"company_name":  "Acme",
	"job_title":     "Engineer",
	"contact_email": "a@acme.com",
}

func testGate(targetForm, requiredAction string) SubmissionGate {
	return SubmissionGate{Config: Config{
		TargetFormName: targetForm,
		RequiredAction: requiredAction,
		RequiredFields: []string{"company_name", "job_title", "contact_email"},
	}}
}

func TestSubmissionGate_RequiredFields(t *testing.T) {
	gate := testGate("", "")
	if d := gate.Admit(testTrigger{}, completeFields); !d.Admitted {
		t.Errorf("Expected complete fields to be admitted but have: %v", d.Rejection)
	}

	partial := FieldMapping{"company_name": "Acme", "job_title": ""}
	d := gate.Admit(testTrigger{}, partial)
	if d.Admitted {
		t.Fatalf("Expected missing fields to be rejected")
	}
	if d.Rejection.String() != "job title required, contact email required" {
		t.Errorf("Expected both missing fields named but have: %s", d.Rejection)
	}
}

func TestSubmissionGate_TargetForm(t *testing.T) {
	gate := testGate("Job Request", "")

	if d := gate.Admit(testTrigger{formName: "Job Request"}, FieldMapping{}); !d.Admitted || d.FellBack {
		t.Errorf("Expected matching form to be admitted without fallback but have: %+v", d)
	}
	// exact match only
	for _, name := range []string{"job request", "Job Request ", "Newsletter"} {
		if d := gate.Admit(testTrigger{formName: name}, completeFields); d.Admitted {
			t.Errorf("Expected form %q to be rejected", name)
		}
	}
}

func TestSubmissionGate_FallsBackWhenFormNameUnavailable(t *testing.T) {
	gate := testGate("Job Request", "")
	triggers := map[string]testTrigger{
		"error": {formErr: ErrFormNameUnavailable},
		"panic": {panics: true},
	}
	for name, trigger := range triggers {
		d := gate.Admit(trigger, completeFields)
		if !d.Admitted || !d.FellBack {
			t.Errorf("%s: Expected admission by fallback but have: %+v", name, d)
		}
		d = gate.Admit(trigger, FieldMapping{"job_title": "Engineer", "contact_email": "a@acme.com"})
		if d.Admitted || !d.FellBack {
			t.Errorf("%s: Expected rejection by fallback but have: %+v", name, d)
		}
		if !strings.Contains(d.Rejection.Reason, "company name required") {
			t.Errorf("%s: Expected company name required but have: %s", name, d.Rejection)
		}
	}
}

type actionsTrigger struct {
	testTrigger
	actions []string
	err     error
}

func (t actionsTrigger) Actions() ([]string, error) {
	return t.actions, t.err
}

func TestSubmissionGate_RequiredAction(t *testing.T) {
	gate := testGate("", "recruitcrm")

	if d := gate.Admit(actionsTrigger{actions: []string{"email", "recruitcrm"}}, completeFields); !d.Admitted {
		t.Errorf("Expected form with the action to be admitted but have: %s", d.Rejection)
	}
	if d := gate.Admit(actionsTrigger{actions: []string{"email"}}, completeFields); d.Admitted {
		t.Errorf("Expected form without the action to be rejected")
	}
	if d := gate.Admit(actionsTrigger{err: errors.New("boom")}, completeFields); d.Admitted {
		t.Errorf("Expected form with unreadable actions to be rejected")
	}
	if d := gate.Admit(testTrigger{}, completeFields); d.Admitted {
		t.Errorf("Expected trigger without actions to be rejected")
	}
	// the action check comes before the field check
	if d := gate.Admit(actionsTrigger{actions: []string{"recruitcrm"}}, FieldMapping{}); d.Admitted {
		t.Errorf("Expected missing fields to be rejected after the action check")
	}
}
