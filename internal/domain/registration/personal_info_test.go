package registration

import (
	"strings"
	"testing"

	"github.com/ippis/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPersonalInfo() PersonalInfo {
	return PersonalInfo{
		Title:                   "Mr",
		Surname:                 "Okafor",
		FirstName:               "Chinedu",
		OtherNames:              "Emeka",
		PhoneNumber:             "08031234567",
		Email:                   "chinedu.okafor@example.com",
		DateOfBirth:             "1990-05-15",
		Sex:                     "MALE",
		MaritalStatus:           "MARRIED",
		StateOfOrigin:           "Anambra",
		LGA:                     "Awka South",
		StateOfResidence:        "FCT",
		AddressStateOfResidence: "12 Garki Road, Abuja",
		NextOfKinName:           "Ngozi Okafor",
		NextOfKinRelationship:   "Spouse",
		NextOfKinPhoneNumber:    "08037654321",
		NextOfKinAddress:        "12 Garki Road, Abuja",
	}
}

func validEmploymentInfo() EmploymentInfo {
	return EmploymentInfo{
		EmploymentIDNo:         "EMPNO-001",
		ServiceNo:              "SVC-42",
		FileNo:                 "F-9",
		RankPosition:           "Senior Officer",
		Department:             "Finance",
		Organization:           "Federal Ministry of Finance",
		EmploymentType:         "Permanent",
		WorkLocation:           "Abuja",
		DateOfFirstAppointment: "2015-01-05",
		GL:                     "08",
		Step:                   "3",
		SalaryStructure:        "CONPSS",
		Cadre:                  "Administrative",
		NameOfBank:             "First Bank",
		AccountNumber:          "0123456789",
		PFAName:                "ARM Pensions",
		RSAPIN:                 "PEN100200300400",
	}
}

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	fields := make([]string, 0, len(de.Details))
	for _, d := range de.Details {
		fields = append(fields, d.Field)
	}
	return fields
}

func TestPersonalInfo_Validate(t *testing.T) {
	t.Run("valid input passes", func(t *testing.T) {
		p := validPersonalInfo()
		assert.NoError(t, p.Validate())
	})

	t.Run("normalizes case and dates", func(t *testing.T) {
		p := validPersonalInfo()
		p.Sex = "female"
		p.MaritalStatus = " single "
		p.Email = "Chinedu.Okafor@Example.com"
		p.DateOfBirth = "15-05-1990"
		require.NoError(t, p.Validate())

		assert.Equal(t, SexFemale, p.Sex)
		assert.Equal(t, MaritalSingle, p.MaritalStatus)
		assert.Equal(t, "chinedu.okafor@example.com", p.Email)
		assert.Equal(t, "1990-05-15", p.DateOfBirth)
	})

	t.Run("marital status may be absent", func(t *testing.T) {
		p := validPersonalInfo()
		p.MaritalStatus = ""
		assert.NoError(t, p.Validate())
	})

	tests := []struct {
		name   string
		mutate func(*PersonalInfo)
		field  string
	}{
		{"blank surname", func(p *PersonalInfo) { p.Surname = "   " }, "surname"},
		{"missing title", func(p *PersonalInfo) { p.Title = "" }, "title"},
		{"title too long", func(p *PersonalInfo) { p.Title = strings.Repeat("x", 11) }, "title"},
		{"short phone", func(p *PersonalInfo) { p.PhoneNumber = "0803123" }, "phone_number"},
		{"phone with letters", func(p *PersonalInfo) { p.PhoneNumber = "0803123456a" }, "phone_number"},
		{"phone too long", func(p *PersonalInfo) { p.PhoneNumber = strings.Repeat("1", 21) }, "phone_number"},
		{"next of kin phone", func(p *PersonalInfo) { p.NextOfKinPhoneNumber = "+2348031234567" }, "next_of_kin_phone_number"},
		{"bad email", func(p *PersonalInfo) { p.Email = "not-an-email" }, "email"},
		{"email too long", func(p *PersonalInfo) { p.Email = strings.Repeat("a", 95) + "@x.com" }, "email"},
		{"bad date", func(p *PersonalInfo) { p.DateOfBirth = "someday" }, "date_of_birth"},
		{"bad sex", func(p *PersonalInfo) { p.Sex = "OTHER" }, "sex"},
		{"bad marital status", func(p *PersonalInfo) { p.MaritalStatus = "ENGAGED" }, "marital_status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPersonalInfo()
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, shared.ErrValidation)
			assert.Contains(t, fieldsOf(t, err), tt.field)
		})
	}

	t.Run("reports every bad field", func(t *testing.T) {
		p := validPersonalInfo()
		p.Surname = ""
		p.Email = "bad"
		err := p.Validate()
		fields := fieldsOf(t, err)
		assert.ElementsMatch(t, []string{"surname", "email"}, fields)
	})
}

func TestPersonalInfo_FullName(t *testing.T) {
	p := validPersonalInfo()
	assert.Equal(t, "Mr Chinedu Okafor", p.FullName())

	p.Title = ""
	assert.Equal(t, "Chinedu Okafor", p.FullName())
}

func TestEmploymentInfo_Validate(t *testing.T) {
	t.Run("valid input passes", func(t *testing.T) {
		e := validEmploymentInfo()
		assert.NoError(t, e.Validate())
	})

	t.Run("optional fields may be empty", func(t *testing.T) {
		e := validEmploymentInfo()
		e.ProbationPeriod = ""
		e.EducationalBackground = ""
		e.Certifications = ""
		assert.NoError(t, e.Validate())
	})

	t.Run("account number must be ten digits", func(t *testing.T) {
		e := validEmploymentInfo()
		e.AccountNumber = "12345"
		assert.Contains(t, fieldsOf(t, e.Validate()), "account_number")
	})

	t.Run("missing department", func(t *testing.T) {
		e := validEmploymentInfo()
		e.Department = ""
		assert.Contains(t, fieldsOf(t, e.Validate()), "department")
	})
}

func TestIsValidNIN(t *testing.T) {
	assert.True(t, IsValidNIN("12345678901"))
	assert.True(t, IsValidNIN(" 12345678901 "))
	assert.False(t, IsValidNIN("1234567890"))
	assert.False(t, IsValidNIN("123456789012"))
	assert.False(t, IsValidNIN("1234567890a"))
	assert.False(t, IsValidNIN(""))
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1991-08-31", "1991-08-31", true},
		{"31-08-1991", "1991-08-31", true},
		{"31/08/1991", "1991-08-31", true},
		{"1991-08-31T00:00:00Z", "1991-08-31", true},
		{"", "", false},
		{"31.08.1991", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeDate(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
