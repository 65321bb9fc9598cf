package sync

import (
	"context"
	"errors"
)

// Result summarises one handled submission.
type Result struct {
	SubmissionID    string
	Admitted        bool
	Rejection       GateRejection
	Company         RemoteRef
	CompanyExisting bool
	Contact         *RemoteRef
	ContactExisting bool
	Job             RemoteRef
	JobCreated      bool
	Lines           []string
}

// Bridge maps form submissions onto Recruit CRM companies, contacts and jobs.
type Bridge struct {
	Config  Config
	Gateway RecruitCRMGateway
	Store   LogStore
}

// NewBridge returns a Bridge for config, logging to store.
func NewBridge(config Config, store LogStore) *Bridge {
	Init()
	return &Bridge{
		Config:  config,
		Gateway: RecruitCRMGateway{Config: config},
		Store:   store,
	}
}

// HandleSubmission runs one submission to completion: gate, company, contact, job.
// Rejected submissions return a nil error. Any other early stop returns the
// cause so the host can log it, the debug log holds the details either way.
func (b *Bridge) HandleSubmission(ctx context.Context, trigger Trigger) (result Result, err error) {
	sc := NewSubmissionContext(ctx, b.Store, b.Config.DebugMode)
	result.SubmissionID = sc.ID
	defer func() { result.Lines = sc.Lines }()

	sc.SetFields(NormalizeFields(trigger.Fields()))
	sc.Debugf("Submission fields: %s", sc.Source.data.Raw)

	decision := SubmissionGate{Config: b.Config}.Admit(trigger, sc.Fields)
	if decision.FellBack {
		sc.Logf("Form name unavailable, checked required fields instead")
	}
	if !decision.Admitted {
		sc.Logf("Submission skipped: %s", decision.Rejection)
		result.Rejection = decision.Rejection
		return result, nil
	}
	result.Admitted = true

	if !sc.Fields.Has(b.Config.Company.KeyField) {
		sc.Logf("ERROR: %s", requiredMessage(b.Config.Company.KeyField))
		return result, nil
	}
	if b.Config.API.Token == "" {
		sc.Logf("ERROR: Recruit CRM API token missing")
		return result, &ConfigurationError{Msg: "missing token"}
	}

	gateway := b.Gateway.WithLogger(sc)
	resolver := Resolver{Gateway: gateway, Log: sc}

	company, err := resolver.Resolve(ctx, CompanyUpsert(b.Config, sc))
	if err != nil {
		sc.Logf("ERROR: company resolution failed, stopping: %v", err)
		return result, err
	}
	sc.Company = company.Ref
	result.Company = company.Ref
	result.CompanyExisting = company.Existing

	if sc.Fields.Has(b.Config.Contact.KeyField) {
		contact, err := resolver.Resolve(ctx, ContactUpsert(b.Config, sc))
		if err != nil {
			sc.Logf("Warning: contact resolution failed, job will have no contact: %v", err)
		} else {
			sc.Contact = &contact.Ref
			result.Contact = &contact.Ref
			result.ContactExisting = contact.Existing
		}
	} else {
		sc.Logf("No %s submitted, job will have no contact", b.Config.Contact.KeyField)
	}

	job, err := JobComposer{Config: b.Config, Gateway: gateway, Log: sc}.Create(ctx, sc)
	if err != nil {
		sc.Logf("ERROR: job creation failed: %v", err)
		return result, err
	}
	sc.Job = job
	result.Job = job
	result.JobCreated = true
	sc.Logf("Submission complete: company %s, job %s", sc.Company, job)
	return result, nil
}

// IsConfigurationError reports whether err stopped a submission before any request was made.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
