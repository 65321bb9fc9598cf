package sync

import (
	"errors"

	"github.com/tidwall/gjson"
)

// ErrFormNameUnavailable is returned by triggers that cannot tell which form was submitted.
var ErrFormNameUnavailable = errors.New("form name unavailable")

// ErrActionsUnavailable is returned by triggers that cannot list the form's actions.
var ErrActionsUnavailable = errors.New("form actions unavailable")

// Trigger is a form submission event delivered by the form host.
type Trigger interface {
	// Fields returns the submitted fields in form order.
	Fields() []RawField
	// FormName returns the submitted form's declared name. It may fail, or
	// even panic, on hosts that do not expose it.
	FormName() (string, error)
}

// ActionsProvider is implemented by triggers that expose the form's configured after-submit actions.
type ActionsProvider interface {
	Actions() ([]string, error)
}

// WebhookTrigger is a Trigger read from a JSON webhook body. Both of these shapes are accepted:
//
//	{"form": {"name": "Jobs"}, "fields": {"form-field-company_name": {"value": "Acme"}}}
//	{"form_name": "Jobs", "fields": [{"id": "company_name", "value": "Acme"}]}
type WebhookTrigger struct {
	body gjson.Result
}

// ParseWebhookTrigger parses a webhook body.
func ParseWebhookTrigger(body []byte) (*WebhookTrigger, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("invalid json body")
	}
	result := gjson.ParseBytes(body)
	if !result.IsObject() {
		return nil, errors.New("json body must be an object")
	}
	return &WebhookTrigger{body: result}, nil
}

func (t *WebhookTrigger) Fields() []RawField {
	var result []RawField
	fields := t.body.Get("fields")
	switch {
	case fields.IsObject():
		fields.ForEach(func(key, value gjson.Result) bool {
			f := RawField{ID: key.String()}
			if value.IsObject() {
				f.Value = value.Get("value").String()
			} else {
				f.Value = value.String()
			}
			result = append(result, f)
			return true
		})
	case fields.IsArray():
		for _, v := range fields.Array() {
			result = append(result, RawField{
				ID:    v.Get("id").String(),
				Value: v.Get("value").String(),
			})
		}
	}
	return result
}

func (t *WebhookTrigger) FormName() (string, error) {
	for _, p := range []string{"form.name", "form_name"} {
		if v := t.body.Get(p); v.Type == gjson.String {
			return v.String(), nil
		}
	}
	return "", ErrFormNameUnavailable
}

func (t *WebhookTrigger) Actions() ([]string, error) {
	for _, p := range []string{"form.actions", "actions"} {
		if v := t.body.Get(p); v.IsArray() {
			var result []string
			for _, a := range v.Array() {
				result = append(result, a.String())
			}
			return result, nil
		}
	}
	return nil, ErrActionsUnavailable
}
