package sync

import (
	"os"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig(DefaultMappings, ConfigWithEnvLookup(MapEnvVar{}))
	if err != nil {
		t.Fatalf("Expected no error but have: %v", err)
	}
	if config.API.Endpoint != "https://api.recruitcrm.io/v1" {
		t.Errorf("Expected default endpoint but have: %s", config.API.Endpoint)
	}
	if config.API.Token != "" || config.TargetFormName != "" || config.DebugMode {
		t.Errorf("Expected no token, no target form and no debug mode but have: %+v", config)
	}
	if config.API.Identifier != IdentifierSlug {
		t.Errorf("Expected slug identifier but have: %s", config.API.Identifier)
	}
	if len(config.RequiredFields) != 3 || config.RequiredFields[0] != "company_name" {
		t.Errorf("Expected default required fields but have: %v", config.RequiredFields)
	}
	if config.Job.NumberOfOpenings != 1 || config.Job.CurrencyID != 1 || config.Job.DefaultTitle != "New Position" {
		t.Errorf("Unexpected job defaults: %+v", config.Job)
	}
	if len(config.Job.CustomFields) != 14 {
		t.Errorf("Expected 14 custom fields but have: %d", len(config.Job.CustomFields))
	}
	if config.Job.CustomFields[0].Key != "job_department" || config.Job.CustomFields[0].Label != "Department / Team" {
		t.Errorf("Expected job_department first but have: %+v", config.Job.CustomFields[0])
	}
	if !config.Job.IsDateField("application_deadline") || config.Job.IsDateField("job_department") {
		t.Errorf("Unexpected date fields: %v", config.Job.DateFields)
	}
	if config.Company.SearchPath != "/companies/search" || config.Contact.SearchParam != "email" {
		t.Errorf("Unexpected search settings: %+v %+v", config.Company, config.Contact)
	}
	if config.Contact.FieldMappings.Strings["contact_number"] != "contact_phone|@phone:1" {
		t.Errorf("Unexpected contact_number mapping: %s", config.Contact.FieldMappings.Strings["contact_number"])
	}
	if config.Log.Store != LogStoreMemory || config.Log.MaxEntries != DefaultMaxLogEntries {
		t.Errorf("Unexpected log settings: %+v", config.Log)
	}
	if config.Server.Addr != ":8080" || config.Server.AdminToken != "" {
		t.Errorf("Unexpected server settings: %+v", config.Server)
	}
}

func TestLoadConfig_EnvironmentAndOverrides(t *testing.T) {
	env := MapEnvVar{
		"RECRUITCRM_API_TOKEN":      " abc123 ",
		"RECRUITCRM_API_ENDPOINT":   "https://example.test/v1/",
		"RECRUITCRM_IDENTIFIER":     "id",
		"RECRUITCRM_CURRENCY_ID":    "3",
		"RECRUITBRIDGE_DEBUG":       "true",
		"RECRUITBRIDGE_TARGET_FORM": "Job Request",
	}
	override := MappingFileFromString("override.yaml", `
job:
  defaultTitle: Open Role
  customFields:
    - key: remote_option
    - key: team_size
      label: Team Size
`)
	config, err := LoadConfig(DefaultMappings, ConfigWithEnvLookup(env), ConfigWithMappingFile(override))
	if err != nil {
		t.Fatalf("Expected no error but have: %v", err)
	}
	if config.API.Token != "abc123" {
		t.Errorf("Expected trimmed token but have: %q", config.API.Token)
	}
	if config.API.Endpoint != "https://example.test/v1" {
		t.Errorf("Expected endpoint without trailing slash but have: %s", config.API.Endpoint)
	}
	if config.API.Identifier != IdentifierID || config.Job.CurrencyID != 3 || !config.DebugMode {
		t.Errorf("Expected environment values to apply but have: %+v", config)
	}
	if config.TargetFormName != "Job Request" {
		t.Errorf("Expected target form Job Request but have: %q", config.TargetFormName)
	}
	if config.Job.DefaultTitle != "Open Role" {
		t.Errorf("Expected overridden default title but have: %s", config.Job.DefaultTitle)
	}
	if len(config.Job.CustomFields) != 2 {
		t.Fatalf("Expected the override to replace the custom field table but have: %+v", config.Job.CustomFields)
	}
	if config.Job.CustomFields[0].Label != "Remote Option" || config.Job.CustomFields[1].Label != "Team Size" {
		t.Errorf("Expected derived and explicit labels but have: %+v", config.Job.CustomFields)
	}
	if config.Job.CreatePath != "/jobs" {
		t.Errorf("Expected defaults kept for keys the override leaves out but have: %s", config.Job.CreatePath)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	for name, env := range map[string]MapEnvVar{
		"identifier": {"RECRUITCRM_IDENTIFIER": "uuid"},
		"log store":  {"RECRUITBRIDGE_LOG_STORE": "file"},
	} {
		if _, err := LoadConfig(DefaultMappings, ConfigWithEnvLookup(env)); err == nil {
			t.Errorf("%s: Expected a validation error", name)
		}
	}
}

func TestJSONCompositeEnvVar(t *testing.T) {
	t.Setenv("RECRUITBRIDGE_TEST_COMPOSITE", `{"RECRUITCRM_API_TOKEN":"from-json"}`)
	t.Setenv("RECRUITBRIDGE_TEST_PLAIN", "from-env")
	os.Unsetenv("RECRUITBRIDGE_TEST_MISSING")
	env := JSONCompositeEnvVar{Parent: "RECRUITBRIDGE_TEST_COMPOSITE"}

	if v, ok := env.LookupEnv("RECRUITCRM_API_TOKEN"); !ok || v != "from-json" {
		t.Errorf("Expected from-json but have: %q, %v", v, ok)
	}
	if v, ok := env.LookupEnv("RECRUITBRIDGE_TEST_PLAIN"); !ok || v != "from-env" {
		t.Errorf("Expected from-env but have: %q, %v", v, ok)
	}
	if _, ok := env.LookupEnv("RECRUITBRIDGE_TEST_MISSING"); ok {
		t.Errorf("Expected missing variable to be reported missing")
	}
}

func TestDefaultLabel(t *testing.T) {
	tests := map[string]string{
		"job_department": "Job Department",
		"remote_option":  "Remote Option",
		"teamSize":       "Team Size",
	}
	for in, expected := range tests {
		if have := DefaultLabel(in); have != expected {
			t.Errorf("Expected DefaultLabel(%q) to be %q but have: %q", in, expected, have)
		}
	}
}
