package sync

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	gosync "sync"
	"testing"

	"github.com/tidwall/gjson"
)

// fakeRecruitCRM is an in-memory stand-in for the Recruit CRM API. Searches
// return every stored record, like a fuzzy remote search would.
type fakeRecruitCRM struct {
	mu                gosync.Mutex
	calls             []string
	bodies            map[string][]string
	companies         []map[string]interface{}
	contacts          []map[string]interface{}
	nextID            int
	failContactCreate bool
	failContactSearch bool
	// answer creates with a 2xx but no id or slug
	anonymousCompany  bool
	anonymousContact  bool
	anonymousJob      bool
	server            *httptest.Server
}

func newFakeRecruitCRM(t *testing.T) *fakeRecruitCRM {
	f := &fakeRecruitCRM{bodies: make(map[string][]string), nextID: 100}
	f.server = httptest.NewServer(http.HandlerFunc(f.serveHTTP))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeRecruitCRM) endpoint() string {
	return f.server.URL + "/v1"
}

func (f *fakeRecruitCRM) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeRecruitCRM) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRecruitCRM) lastBody(call string) gjson.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.bodies[call]
	if len(b) == 0 {
		return gjson.Result{}
	}
	return gjson.Parse(b[len(b)-1])
}

func (f *fakeRecruitCRM) serveHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := r.Method + " " + r.URL.Path
	f.calls = append(f.calls, call)
	body, _ := io.ReadAll(r.Body)
	f.bodies[call] = append(f.bodies[call], string(body))

	if r.Header.Get("Authorization") != "Bearer test-token" {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"Unauthenticated."}`)
		return
	}

	switch call {
	case "GET /v1/companies/search":
		writeTestJSON(w, http.StatusOK, map[string]interface{}{"data": f.companies})
	case "POST /v1/companies":
		if f.anonymousCompany {
			writeTestJSON(w, http.StatusCreated, map[string]string{"message": "created"})
			return
		}
		f.nextID++
		record := map[string]interface{}{}
		json.Unmarshal(body, &record)
		record["id"] = f.nextID
		record["slug"] = fmt.Sprintf("company-%d", f.nextID)
		f.companies = append(f.companies, record)
		// companies answer with the record at the top level
		writeTestJSON(w, http.StatusCreated, record)
	case "GET /v1/contacts/search":
		if f.failContactSearch {
			writeTestJSON(w, http.StatusInternalServerError, map[string]string{"message": "search unavailable"})
			return
		}
		// contacts answer with a bare array
		writeTestJSON(w, http.StatusOK, f.contacts)
	case "POST /v1/contacts":
		if f.failContactCreate {
			writeTestJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "email is invalid"})
			return
		}
		if f.anonymousContact {
			writeTestJSON(w, http.StatusCreated, map[string]interface{}{"data": map[string]interface{}{}})
			return
		}
		f.nextID++
		record := map[string]interface{}{}
		json.Unmarshal(body, &record)
		record["id"] = f.nextID
		record["slug"] = fmt.Sprintf("contact-%d", f.nextID)
		f.contacts = append(f.contacts, record)
		// contacts answer with the record nested under data
		writeTestJSON(w, http.StatusCreated, map[string]interface{}{"data": record})
	case "POST /v1/jobs":
		if f.anonymousJob {
			writeTestJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
			return
		}
		f.nextID++
		writeTestJSON(w, http.StatusCreated, map[string]interface{}{"id": f.nextID, "slug": fmt.Sprintf("job-%d", f.nextID)})
	default:
		writeTestJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
	}
}

func writeTestJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func testConfig(t *testing.T, endpoint string, env map[string]string, overrides ...string) Config {
	t.Helper()
	vars := MapEnvVar{
		"RECRUITCRM_API_TOKEN":    "test-token",
		"RECRUITCRM_API_ENDPOINT": endpoint,
	}
	for k, v := range env {
		vars[k] = v
	}
	opts := []ConfigOption{ConfigWithEnvLookup(vars)}
	for i, o := range overrides {
		opts = append(opts, ConfigWithMappingFile(MappingFileFromString(fmt.Sprintf("override-%d.yaml", i), o)))
	}
	config, err := LoadConfig(DefaultMappings, opts...)
	if err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}
	return config
}

type testTrigger struct {
	fields   []RawField
	formName string
	formErr  error
	panics   bool
}

func (t testTrigger) Fields() []RawField {
	return t.fields
}

func (t testTrigger) FormName() (string, error) {
	if t.panics {
		panic("get_form_settings() expects exactly 1 argument, 0 given")
	}
	return t.formName, t.formErr
}

func newTestTrigger(values map[string]string) testTrigger {
	var result testTrigger
	for k, v := range values {
		result.fields = append(result.fields, RawField{ID: FieldPrefix + k, Value: v})
	}
	return result
}

// recordingLogger collects lines without a store.
type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Logf(format string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Debugf(format string, args ...interface{}) {
	l.Logf(format, args...)
}

func containsLine(lines []string, substr string) bool {
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}
