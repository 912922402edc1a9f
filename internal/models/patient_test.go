package models

import (
	"testing"
	"time"
)

func TestPatientNormalize(t *testing.T) {
	p := Patient{
		HospitalNumber: " abc1234567 ",
		FirstName:      "  mARY ",
		LastName:       " o'connor ",
		Sex:            "f",
	}
	p.Normalize()

	if p.HospitalNumber != "ABC1234567" {
		t.Errorf("HospitalNumber = %q", p.HospitalNumber)
	}
	if p.FirstName != "Mary" {
		t.Errorf("FirstName = %q, want Mary", p.FirstName)
	}
	if p.LastName != "O'CONNOR" {
		t.Errorf("LastName = %q, want O'CONNOR", p.LastName)
	}
	if p.Sex != "F" {
		t.Errorf("Sex = %q, want F", p.Sex)
	}
}

func TestPatientDisplayName(t *testing.T) {
	p := Patient{FirstName: "Mary", LastName: "SMITH"}
	if got := p.DisplayName(); got != "SMITH, Mary" {
		t.Errorf("DisplayName = %q", got)
	}
}

func TestPatientAge(t *testing.T) {
	dob := time.Date(1980, time.June, 15, 0, 0, 0, 0, time.UTC)
	p := Patient{DateOfBirth: dob}

	tests := []struct {
		name string
		at   time.Time
		want int
	}{
		{"day before birthday", time.Date(2020, time.June, 14, 0, 0, 0, 0, time.UTC), 39},
		{"on birthday", time.Date(2020, time.June, 15, 0, 0, 0, 0, time.UTC), 40},
		{"day after birthday", time.Date(2020, time.June, 16, 0, 0, 0, 0, time.UTC), 40},
		{"end of year", time.Date(2020, time.December, 31, 0, 0, 0, 0, time.UTC), 40},
	}
	for _, tt := range tests {
		if got := p.Age(tt.at); got != tt.want {
			t.Errorf("%s: Age = %d, want %d", tt.name, got, tt.want)
		}
	}
}
