package sync

import (
	"context"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Upsert describes one search-then-create against a Recruit CRM collection.
// Existing records are never updated.
type Upsert struct {
	Entity     string
	Settings   EntitySettings
	NaturalKey string
	Payload    func() *Payload
}

// Resolution is the outcome of a successful Upsert.
type Resolution struct {
	Ref      RemoteRef
	Existing bool
}

// Resolver runs Upserts through a Gateway.
type Resolver struct {
	Gateway Gateway
	Log     Logger
}

// Resolve searches for a record whose match field equals the natural key
// (ignoring case) and creates one if none is found. A failed search is
// logged and treated as not found.
func (r Resolver) Resolve(ctx context.Context, u Upsert) (Resolution, error) {
	if u.Settings.SearchPath != "" {
		ref, found, err := r.search(ctx, u)
		if err != nil {
			r.Log.Logf("Warning: %s search for %q failed, creating instead: %v", u.Entity, u.NaturalKey, err)
		} else if found {
			r.Log.Logf("Found existing %s %q (%s)", u.Entity, u.NaturalKey, ref)
			return Resolution{Ref: ref, Existing: true}, nil
		}
	}
	return r.create(ctx, u)
}

func (r Resolver) search(ctx context.Context, u Upsert) (RemoteRef, bool, error) {
	var params map[string]string
	if u.Settings.SearchParam != "" {
		params = map[string]string{u.Settings.SearchParam: u.NaturalKey}
	}
	resp, err := r.Gateway.Request(ctx, u.Settings.SearchPath, http.MethodGet, params)
	if err != nil {
		return RemoteRef{}, false, err
	}
	if err = resp.Err(http.MethodGet, u.Settings.SearchPath); err != nil {
		return RemoteRef{}, false, err
	}
	// the remote search is fuzzy, only an exact match on the match field counts
	for _, record := range searchResults(resp.Body) {
		if !strings.EqualFold(record.Get(u.Settings.MatchField).String(), u.NaturalKey) {
			continue
		}
		ref := ExtractRemoteRef(record)
		if ref.Resolved() {
			return ref, true, nil
		}
		r.Log.Logf("Warning: %s %q matched a search result without an identifier", u.Entity, u.NaturalKey)
	}
	return RemoteRef{}, false, nil
}

func (r Resolver) create(ctx context.Context, u Upsert) (Resolution, error) {
	var payload *Payload
	if u.Payload != nil {
		payload = u.Payload()
	}
	resp, err := r.Gateway.Request(ctx, u.Settings.CreatePath, http.MethodPost, payload)
	if err != nil {
		return Resolution{}, err
	}
	if err = resp.Err(http.MethodPost, u.Settings.CreatePath); err != nil {
		return Resolution{}, err
	}
	ref := ExtractRemoteRef(resp.Body)
	if !ref.Resolved() {
		return Resolution{}, &IdentifierExtractionError{Entity: u.Entity, Body: resp.RawBody}
	}
	r.Log.Logf("Created %s %q (%s)", u.Entity, u.NaturalKey, ref)
	return Resolution{Ref: ref}, nil
}

// searchResults returns the records of a search response, which is either
// a bare array or an object with a "data" array.
func searchResults(body gjson.Result) []gjson.Result {
	if body.IsArray() {
		return body.Array()
	}
	if data := body.Get("data"); data.IsArray() {
		return data.Array()
	}
	return nil
}

// CompanyUpsert finds or creates the submission's company.
func CompanyUpsert(config Config, sc *SubmissionContext) Upsert {
	return Upsert{
		Entity:     "company",
		Settings:   config.Company,
		NaturalKey: sc.Fields.Get(config.Company.KeyField),
		Payload: func() *Payload {
			p := NewPayload()
			MapFields(config.Company.FieldMappings, sc.Source, p)
			return p
		},
	}
}

// ContactUpsert finds or creates the submission's contact, linked to the resolved company.
func ContactUpsert(config Config, sc *SubmissionContext) Upsert {
	return Upsert{
		Entity:     "contact",
		Settings:   config.Contact,
		NaturalKey: sc.Fields.Get(config.Contact.KeyField),
		Payload: func() *Payload {
			p := NewPayload()
			MapFields(config.Contact.FieldMappings, sc.Source, p)
			p.SetRef("company", sc.Company, config.API.Identifier)
			return p
		},
	}
}
