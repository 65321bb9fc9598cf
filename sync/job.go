package sync

import (
	"context"
	"errors"
	"net/http"
)

// CustomField is one entry of a job's custom_fields list.
type CustomField struct {
	FieldName  string `json:"field_name"`
	FieldValue string `json:"field_value"`
}

// JobComposer builds and creates the job for a submission.
type JobComposer struct {
	Config  Config
	Gateway Gateway
	Log     Logger
}

// CustomFields walks the configured custom field table in order and emits an
// entry for every non-empty value. Date fields are normalised first and left
// out when they cannot be parsed.
func (c JobComposer) CustomFields(fields FieldMapping) []CustomField {
	var result []CustomField
	for _, f := range c.Config.Job.CustomFields {
		value := fields.Get(f.Key)
		if c.Config.Job.IsDateField(f.Key) {
			var err error
			value, err = NormalizeDate(value)
			var dateErr *DateParseError
			if errors.As(err, &dateErr) {
				c.Log.Logf("Warning: %s: %v, field left out", f.Key, err)
			}
		}
		if value == "" {
			continue
		}
		result = append(result, CustomField{FieldName: f.Label, FieldValue: value})
	}
	return result
}

// Payload assembles the job create request. The company must already be resolved.
func (c JobComposer) Payload(sc *SubmissionContext) *Payload {
	p := NewPayload()
	title := sc.Fields.Get("job_title")
	if title == "" {
		title = c.Config.Job.DefaultTitle
	}
	p.SetField("name", title)
	p.SetField("job_description", "")
	openings := c.Config.Job.NumberOfOpenings
	if openings < 1 {
		openings = 1
	}
	p.SetField("number_of_openings", openings)
	if c.Config.Job.CurrencyID > 0 {
		p.SetField("currency_id", c.Config.Job.CurrencyID)
	}
	MapFields(c.Config.Job.FieldMappings, sc.Source, p)
	p.SetRef("company", sc.Company, c.Config.API.Identifier)
	if sc.Contact != nil {
		p.SetRef("contact", *sc.Contact, c.Config.API.Identifier)
	}
	if cf := c.CustomFields(sc.Fields); len(cf) > 0 {
		p.SetField("custom_fields", cf)
	}
	return p
}

// Create posts the job. A missing identifier in a successful response is only logged.
// Nothing created earlier in the submission is rolled back on failure.
func (c JobComposer) Create(ctx context.Context, sc *SubmissionContext) (RemoteRef, error) {
	if !sc.Company.Resolved() {
		return RemoteRef{}, errors.New("job requires a resolved company")
	}
	path := c.Config.Job.CreatePath
	resp, err := c.Gateway.Request(ctx, path, http.MethodPost, c.Payload(sc))
	if err != nil {
		return RemoteRef{}, err
	}
	if err = resp.Err(http.MethodPost, path); err != nil {
		return RemoteRef{}, err
	}
	ref := ExtractRemoteRef(resp.Body)
	if ref.Resolved() {
		c.Log.Logf("Created job (%s)", ref)
	} else {
		c.Log.Logf("Warning: job created but %v", &IdentifierExtractionError{Entity: "job", Body: resp.RawBody})
	}
	return ref, nil
}
