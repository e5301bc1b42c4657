package registration

import "time"

// EmploymentInfo holds job, bank and pension details of an applicant
type EmploymentInfo struct {
	RegistrationID         string    `json:"-"`
	EmploymentIDNo         string    `json:"employment_id_no" validate:"required,max=50"`
	ServiceNo              string    `json:"service_no" validate:"required,max=50"`
	FileNo                 string    `json:"file_no" validate:"required,max=50"`
	RankPosition           string    `json:"rank_position" validate:"required,max=100"`
	Department             string    `json:"department" validate:"required,max=100"`
	Organization           string    `json:"organization" validate:"required,max=200"`
	EmploymentType         string    `json:"employment_type" validate:"required,max=50"`
	ProbationPeriod        string    `json:"probation_period" validate:"max=50"`
	WorkLocation           string    `json:"work_location" validate:"required,max=200"`
	DateOfFirstAppointment string    `json:"date_of_first_appointment" validate:"required,ippis_date"`
	GL                     string    `json:"gl" validate:"required,max=10"`
	Step                   string    `json:"step" validate:"required,max=10"`
	SalaryStructure        string    `json:"salary_structure" validate:"required,max=50"`
	Cadre                  string    `json:"cadre" validate:"required,max=100"`
	NameOfBank             string    `json:"name_of_bank" validate:"required,max=100"`
	AccountNumber          string    `json:"account_number" validate:"required,len=10,digits"`
	PFAName                string    `json:"pfa_name" validate:"required,max=100"`
	RSAPIN                 string    `json:"rsapin" validate:"required,max=50"`
	EducationalBackground  string    `json:"educational_background" validate:"max=1000"`
	Certifications         string    `json:"certifications" validate:"max=1000"`
	CreatedAt              time.Time `json:"-"`
	UpdatedAt              time.Time `json:"-"`
}

// Normalize trims every field and rewrites the appointment date as YYYY-MM-DD
func (e *EmploymentInfo) Normalize() {
	trimFields(&e.EmploymentIDNo, &e.ServiceNo, &e.FileNo, &e.RankPosition, &e.Department,
		&e.Organization, &e.EmploymentType, &e.ProbationPeriod, &e.WorkLocation,
		&e.DateOfFirstAppointment, &e.GL, &e.Step, &e.SalaryStructure, &e.Cadre, &e.NameOfBank,
		&e.AccountNumber, &e.PFAName, &e.RSAPIN, &e.EducationalBackground, &e.Certifications)
	if d, ok := NormalizeDate(e.DateOfFirstAppointment); ok {
		e.DateOfFirstAppointment = d
	}
}

// Validate normalizes and checks all fields
func (e *EmploymentInfo) Validate() error {
	e.Normalize()
	return validateStruct(e)
}
