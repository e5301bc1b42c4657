package registration

import (
	"strings"
	"time"
)

// Accepted values for PersonalInfo enums
const (
	SexMale   = "MALE"
	SexFemale = "FEMALE"

	MaritalSingle   = "SINGLE"
	MaritalMarried  = "MARRIED"
	MaritalDivorced = "DIVORCED"
	MaritalWidowed  = "WIDOWED"
)

// PersonalInfo holds identity, contact and next-of-kin details of an applicant
type PersonalInfo struct {
	RegistrationID          string    `json:"-"`
	Title                   string    `json:"title" validate:"required,max=10"`
	Surname                 string    `json:"surname" validate:"required,max=100"`
	FirstName               string    `json:"first_name" validate:"required,max=100"`
	OtherNames              string    `json:"other_names" validate:"max=100"`
	PhoneNumber             string    `json:"phone_number" validate:"required,min=11,max=20,digits"`
	Email                   string    `json:"email" validate:"required,email,max=100"`
	DateOfBirth             string    `json:"date_of_birth" validate:"required,ippis_date"`
	Sex                     string    `json:"sex" validate:"required,oneof=MALE FEMALE"`
	MaritalStatus           string    `json:"marital_status" validate:"omitempty,oneof=SINGLE MARRIED DIVORCED WIDOWED"`
	StateOfOrigin           string    `json:"state_of_origin" validate:"required,max=50"`
	LGA                     string    `json:"lga" validate:"required,max=100"`
	StateOfResidence        string    `json:"state_of_residence" validate:"required,max=50"`
	AddressStateOfResidence string    `json:"address_state_of_residence" validate:"required,max=300"`
	NextOfKinName           string    `json:"next_of_kin_name" validate:"required,max=200"`
	NextOfKinRelationship   string    `json:"next_of_kin_relationship" validate:"required,max=50"`
	NextOfKinPhoneNumber    string    `json:"next_of_kin_phone_number" validate:"required,min=11,max=20,digits"`
	NextOfKinAddress        string    `json:"next_of_kin_address" validate:"required,max=300"`
	CreatedAt               time.Time `json:"-"`
	UpdatedAt               time.Time `json:"-"`
}

// Normalize trims every field, upper-cases enums and rewrites the birth date as YYYY-MM-DD
func (p *PersonalInfo) Normalize() {
	trimFields(&p.Title, &p.Surname, &p.FirstName, &p.OtherNames, &p.PhoneNumber, &p.Email,
		&p.DateOfBirth, &p.Sex, &p.MaritalStatus, &p.StateOfOrigin, &p.LGA, &p.StateOfResidence,
		&p.AddressStateOfResidence, &p.NextOfKinName, &p.NextOfKinRelationship,
		&p.NextOfKinPhoneNumber, &p.NextOfKinAddress)
	p.Sex = strings.ToUpper(p.Sex)
	p.MaritalStatus = strings.ToUpper(p.MaritalStatus)
	p.Email = strings.ToLower(p.Email)
	if d, ok := NormalizeDate(p.DateOfBirth); ok {
		p.DateOfBirth = d
	}
}

// Validate normalizes and checks all fields, returning a validation error listing every bad field
func (p *PersonalInfo) Validate() error {
	p.Normalize()
	return validateStruct(p)
}

// FullName returns "title first surname", skipping empty parts
func (p *PersonalInfo) FullName() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Title, p.FirstName, p.Surname} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
