package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/carlmjohnson/requests"
	"github.com/tidwall/gjson"
)

// Response is the outcome of a request that reached Recruit CRM, whatever its status.
type Response struct {
	StatusCode int
	Header     http.Header
	RawBody    string
	// Body is the parsed RawBody, or a non-existent result when RawBody is not JSON.
	Body gjson.Result
}

// OK reports a 2xx status.
func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Err returns a *RemoteError for a non-2xx response and nil otherwise.
func (r Response) Err(method, endpoint string) error {
	if r.OK() {
		return nil
	}
	return &RemoteError{Method: method, Endpoint: endpoint, StatusCode: r.StatusCode, Body: r.RawBody}
}

// Gateway issues a single call against the Recruit CRM API.
type Gateway interface {
	Request(ctx context.Context, endpoint, method string, data interface{}) (Response, error)
}

// RecruitCRMGateway is the Gateway used in production. It is safe to share
// between submissions, WithLogger returns a copy bound to one submission.
type RecruitCRMGateway struct {
	Config Config
	Client *http.Client
	Log    Logger
}

// WithLogger returns a copy of the gateway writing its log lines to l.
func (g RecruitCRMGateway) WithLogger(l Logger) *RecruitCRMGateway {
	g.Log = l
	return &g
}

// RecruitCRMAPIBuilder returns a new requests.Builder for the given URL.
// When api.recordRequests is set, request/response pairs are recorded below that directory.
func (g RecruitCRMGateway) RecruitCRMAPIBuilder(u string) *requests.Builder {
	cl := g.Client
	if cl == nil {
		cl = &http.Client{Timeout: HTTPRequestTimeout}
	}
	result := requests.
		URL(u).
		Client(cl)
	if g.Config.API.RecordRequests != "" {
		result = result.Transport(requests.Record(nil, g.Config.API.RecordRequests))
	}
	return result
}

// Request calls endpoint (relative to api.endpoint) with method.
// GET data is sent as query parameters, POST/PUT/PATCH data as a JSON body and DELETE sends none.
// Non-2xx responses are returned without error, use Response.Err to turn them into one.
func (g RecruitCRMGateway) Request(ctx context.Context, endpoint, method string, data interface{}) (Response, error) {
	var result Response
	if g.Config.API.Token == "" {
		g.logf("Recruit CRM API token missing")
		return result, &ConfigurationError{Msg: "missing token"}
	}

	method = strings.ToUpper(method)
	query, body, err := encodeRequestData(method, data)
	if err != nil {
		g.logf("ERROR: failed to encode %s %s request: %v", method, endpoint, err)
		return result, fmt.Errorf("failed to encode %s %s request %w", method, endpoint, err)
	}

	u := g.Config.API.Endpoint + endpoint
	fullURL := u
	if len(query) > 0 {
		fullURL = fullURL + "?" + query.Encode()
	}
	g.debugf("Request: %s %s", method, fullURL)
	if body != nil {
		g.debugf("Request payload: %s", body)
	}

	builder := g.RecruitCRMAPIBuilder(u).
		Method(method).
		Bearer(g.Config.API.Token).
		Accept("application/json").
		ContentType("application/json").
		AddValidator(func(*http.Response) error { return nil }).
		Handle(func(res *http.Response) error {
			b, err := io.ReadAll(res.Body)
			if err != nil {
				return err
			}
			result.StatusCode = res.StatusCode
			result.Header = res.Header
			result.RawBody = string(b)
			if gjson.ValidBytes(b) {
				result.Body = gjson.ParseBytes(b)
			}
			return nil
		})
	for k, v := range query {
		builder = builder.Param(k, v...)
	}
	if body != nil {
		builder = builder.BodyBytes(body)
	}

	if err = builder.Fetch(ctx); err != nil {
		g.logf("ERROR: %s %s failed: %v", method, fullURL, err)
		return result, &TransportError{Method: method, URL: fullURL, Err: err}
	}

	g.debugf("Response: %d %s", result.StatusCode, result.RawBody)
	if !result.OK() {
		g.logf("ERROR: %s %s returned %d: %s", method, fullURL, result.StatusCode, result.RawBody)
	}
	return result, nil
}

func (g RecruitCRMGateway) logf(format string, args ...interface{}) {
	if g.Log != nil {
		g.Log.Logf(format, args...)
	}
}

func (g RecruitCRMGateway) debugf(format string, args ...interface{}) {
	if g.Log != nil {
		g.Log.Debugf(format, args...)
	}
}

func encodeRequestData(method string, data interface{}) (url.Values, []byte, error) {
	switch method {
	case http.MethodGet:
		q, err := encodeQuery(data)
		return q, nil, err
	case http.MethodDelete:
		return nil, nil, nil
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		b, err := encodeBody(data)
		return nil, b, err
	}
	return nil, nil, fmt.Errorf("unsupported method %s", method)
}

func encodeQuery(data interface{}) (url.Values, error) {
	result := url.Values{}
	switch v := data.(type) {
	case nil:
	case url.Values:
		result = v
	case map[string]string:
		for k, s := range v {
			result.Set(k, s)
		}
	case map[string]interface{}:
		for k, s := range v {
			result.Set(k, fmt.Sprint(s))
		}
	default:
		return nil, fmt.Errorf("unsupported query data %T", data)
	}
	return result, nil
}

func encodeBody(data interface{}) ([]byte, error) {
	var result []byte
	var err error
	switch v := data.(type) {
	case nil:
		return nil, nil
	case []byte:
		result = v
	case json.RawMessage:
		result = v
	case string:
		result = []byte(v)
	case *Payload:
		if v == nil {
			return nil, nil
		}
		result, err = v.JSON()
	default:
		result, err = json.Marshal(v)
	}
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}
	return result, nil
}
