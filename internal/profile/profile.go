// Package profile loads the applicant profile handed to the apply agent.
package profile

import (
	"encoding/json"
	"reflect"
	"strings"
)

// ApplyInfo holds the applicant details used to answer Easy Apply questions.
// Scalar fields default to the empty string; structured fields may be a list or an object.
type ApplyInfo struct {
	LinkedInPassword    string `json:"LINKEDIN_PASSWORD"`
	FirstName           string `json:"FIRST_NAME"`
	LastName            string `json:"LAST_NAME"`
	PreferredName       string `json:"PREFERRED_NAME"`
	Email               string `json:"EMAIL"`
	DateOfBirth         string `json:"DATE_OF_BIRTH"`
	Phone               string `json:"PHONE"`
	PhoneArea           string `json:"PHONE_AREA"`
	Location            string `json:"LOCATION"`
	AddressLine1        string `json:"ADDRESS_LINE1"`
	AddressLine2        string `json:"ADDRESS_LINE2"`
	AddressLine3        string `json:"ADDRESS_LINE3"`
	PostalCode          string `json:"POSTAL_CODE"`
	Ethnicity           string `json:"ETHNICITY"`
	WorkAuthUS          string `json:"WORK_AUTH_US"`
	WorkAuthCanada      string `json:"WORK_AUTH_CANADA"`
	WorkAuthUK          string `json:"WORK_AUTH_UK"`
	NeedVisaSponsorship string `json:"NEED_VISA_SPONSORSHIP"`
	HasDisability       string `json:"HAS_DISABILITY"`
	IdentifiesLGBTQ     string `json:"IDENTIFIES_LGBTQ"`
	Gender              string `json:"GENDER"`
	Veteran             string `json:"VETERAN"`

	WorkExperience json.RawMessage `json:"WORK_EXPERIENCE,omitempty"`
	Education      json.RawMessage `json:"EDUCATION,omitempty"`
	Projects       json.RawMessage `json:"PROJECTS,omitempty"`
	Links          json.RawMessage `json:"LINKS,omitempty"`
	Skills         json.RawMessage `json:"SKILLS,omitempty"`
	Languages      json.RawMessage `json:"LANGUAGES,omitempty"`
}

// PasswordKey is the profile key whose value is never logged.
const PasswordKey = "LINKEDIN_PASSWORD"

// Field is one profile entry in declaration order.
type Field struct {
	Key        string
	Text       string          // scalar value
	Structured json.RawMessage // set for list/object fields
}

// Fields returns the profile entries in declaration order.
// Structured fields that are absent or null are omitted; empty scalars are kept.
func (a *ApplyInfo) Fields() []Field {
	v := reflect.ValueOf(a).Elem()
	t := v.Type()

	fields := make([]Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		key := jsonKey(t.Field(i))
		switch val := v.Field(i).Interface().(type) {
		case string:
			fields = append(fields, Field{Key: key, Text: val})
		case json.RawMessage:
			if isNull(val) {
				continue
			}
			fields = append(fields, Field{Key: key, Structured: val})
		}
	}
	return fields
}

// Redacted returns a copy with the LinkedIn password masked.
func (a ApplyInfo) Redacted() ApplyInfo {
	if a.LinkedInPassword != "" {
		a.LinkedInPassword = "********"
	}
	return a
}

// FullName joins preferred (or first) and last name.
func (a *ApplyInfo) FullName() string {
	first := a.PreferredName
	if first == "" {
		first = a.FirstName
	}
	switch {
	case first == "":
		return a.LastName
	case a.LastName == "":
		return first
	default:
		return first + " " + a.LastName
	}
}

func jsonKey(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	return name
}

func isNull(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return true
	}
	return string(raw) == "null"
}
