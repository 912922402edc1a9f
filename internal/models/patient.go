package models

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Patient is identified by a unique hospital number. A second identity
// constraint guards against duplicate entry of the same person: no two
// patients may share first name, last name and date of birth.
type Patient struct {
	BaseModel
	HospitalNumber string    `gorm:"uniqueIndex;size:20;not null" json:"hospitalNumber"`
	FirstName      string    `gorm:"size:255;not null;uniqueIndex:idx_patient_identity" json:"firstName"`
	LastName       string    `gorm:"size:255;not null;uniqueIndex:idx_patient_identity" json:"lastName"`
	DateOfBirth    time.Time `gorm:"type:date;not null;uniqueIndex:idx_patient_identity" json:"dateOfBirth"`
	Sex            string    `gorm:"size:1" json:"sex"`
}

// Normalize applies the canonical formatting used throughout the app:
// hospital numbers and last names are upper-cased, first names are
// title-cased, whitespace is trimmed.
func (p *Patient) Normalize() {
	p.HospitalNumber = strings.ToUpper(strings.TrimSpace(p.HospitalNumber))
	p.FirstName = titleCase(strings.TrimSpace(p.FirstName))
	p.LastName = strings.ToUpper(strings.TrimSpace(p.LastName))
	p.Sex = strings.ToUpper(strings.TrimSpace(p.Sex))
}

// DisplayName renders the patient as "LASTNAME, Firstname".
func (p *Patient) DisplayName() string {
	return fmt.Sprintf("%s, %s", strings.ToUpper(p.LastName), p.FirstName)
}

// Age returns the patient's age in whole years at the given date.
func (p *Patient) Age(at time.Time) int {
	years := at.Year() - p.DateOfBirth.Year()
	anniversary := p.DateOfBirth.AddDate(years, 0, 0)
	if anniversary.After(at) {
		years--
	}
	return years
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
