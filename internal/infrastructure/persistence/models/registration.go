package models

import (
	"time"

	"github.com/ippis/backend/internal/domain/registration"
)

// RegistrationModel is the persistence model for the registrations table
type RegistrationModel struct {
	ID             uint64     `gorm:"primaryKey;autoIncrement"`
	RegistrationID string     `gorm:"type:varchar(32);not null;uniqueIndex"`
	Status         string     `gorm:"type:varchar(32);not null;index"`
	SubStatus      string     `gorm:"type:varchar(32);not null;default:''"`
	CurrentStep    string     `gorm:"type:varchar(32);not null"`
	Source         string     `gorm:"type:varchar(16);not null"`
	Declaration    bool       `gorm:"not null;default:false"`
	Metadata       string     `gorm:"type:text;not null;default:'{}'"`
	CreatedAt      time.Time  `gorm:"not null;index"`
	UpdatedAt      time.Time  `gorm:"not null"`
	SubmittedAt    *time.Time `gorm:""`
	ApprovedAt     *time.Time `gorm:""`
	RejectedAt     *time.Time `gorm:""`
}

// TableName returns the table name for GORM
func (RegistrationModel) TableName() string {
	return "registrations"
}

// ToDomain converts the persistence model to a domain Registration
func (m *RegistrationModel) ToDomain() *registration.Registration {
	return &registration.Registration{
		RegistrationID: m.RegistrationID,
		Status:         registration.Status(m.Status),
		SubStatus:      registration.SubStatus(m.SubStatus),
		CurrentStep:    registration.Step(m.CurrentStep),
		Source:         registration.Source(m.Source),
		Declaration:    m.Declaration,
		Metadata:       m.Metadata,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		SubmittedAt:    m.SubmittedAt,
		ApprovedAt:     m.ApprovedAt,
		RejectedAt:     m.RejectedAt,
	}
}

// RegistrationModelFromDomain creates a persistence model from a domain Registration
func RegistrationModelFromDomain(r *registration.Registration) *RegistrationModel {
	metadata := r.Metadata
	if metadata == "" {
		metadata = "{}"
	}
	return &RegistrationModel{
		RegistrationID: r.RegistrationID,
		Status:         string(r.Status),
		SubStatus:      string(r.SubStatus),
		CurrentStep:    string(r.CurrentStep),
		Source:         string(r.Source),
		Declaration:    r.Declaration,
		Metadata:       metadata,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		SubmittedAt:    r.SubmittedAt,
		ApprovedAt:     r.ApprovedAt,
		RejectedAt:     r.RejectedAt,
	}
}

// PersonalInfoModel is the persistence model for the personal_info table
type PersonalInfoModel struct {
	ID                      uint64    `gorm:"primaryKey;autoIncrement"`
	RegistrationID          string    `gorm:"type:varchar(32);not null;uniqueIndex"`
	Title                   string    `gorm:"type:varchar(10);not null"`
	Surname                 string    `gorm:"type:varchar(100);not null"`
	FirstName               string    `gorm:"type:varchar(100);not null"`
	OtherNames              string    `gorm:"type:varchar(100)"`
	PhoneNumber             string    `gorm:"type:varchar(20);not null"`
	Email                   string    `gorm:"type:varchar(100);not null;index"`
	DateOfBirth             string    `gorm:"type:varchar(10)"`
	Sex                     string    `gorm:"type:varchar(10)"`
	MaritalStatus           string    `gorm:"type:varchar(10)"`
	StateOfOrigin           string    `gorm:"type:varchar(50)"`
	LGA                     string    `gorm:"column:lga;type:varchar(100)"`
	StateOfResidence        string    `gorm:"type:varchar(50)"`
	AddressStateOfResidence string    `gorm:"type:varchar(300)"`
	NextOfKinName           string    `gorm:"type:varchar(200)"`
	NextOfKinRelationship   string    `gorm:"type:varchar(50)"`
	NextOfKinPhoneNumber    string    `gorm:"type:varchar(20)"`
	NextOfKinAddress        string    `gorm:"type:varchar(300)"`
	CreatedAt               time.Time `gorm:"not null"`
	UpdatedAt               time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PersonalInfoModel) TableName() string {
	return "personal_info"
}

// ToDomain converts the persistence model to domain PersonalInfo
func (m *PersonalInfoModel) ToDomain() *registration.PersonalInfo {
	return &registration.PersonalInfo{
		RegistrationID:          m.RegistrationID,
		Title:                   m.Title,
		Surname:                 m.Surname,
		FirstName:               m.FirstName,
		OtherNames:              m.OtherNames,
		PhoneNumber:             m.PhoneNumber,
		Email:                   m.Email,
		DateOfBirth:             m.DateOfBirth,
		Sex:                     m.Sex,
		MaritalStatus:           m.MaritalStatus,
		StateOfOrigin:           m.StateOfOrigin,
		LGA:                     m.LGA,
		StateOfResidence:        m.StateOfResidence,
		AddressStateOfResidence: m.AddressStateOfResidence,
		NextOfKinName:           m.NextOfKinName,
		NextOfKinRelationship:   m.NextOfKinRelationship,
		NextOfKinPhoneNumber:    m.NextOfKinPhoneNumber,
		NextOfKinAddress:        m.NextOfKinAddress,
		CreatedAt:               m.CreatedAt,
		UpdatedAt:               m.UpdatedAt,
	}
}

// PersonalInfoModelFromDomain creates a persistence model from domain PersonalInfo
func PersonalInfoModelFromDomain(p *registration.PersonalInfo) *PersonalInfoModel {
	return &PersonalInfoModel{
		RegistrationID:          p.RegistrationID,
		Title:                   p.Title,
		Surname:                 p.Surname,
		FirstName:               p.FirstName,
		OtherNames:              p.OtherNames,
		PhoneNumber:             p.PhoneNumber,
		Email:                   p.Email,
		DateOfBirth:             p.DateOfBirth,
		Sex:                     p.Sex,
		MaritalStatus:           p.MaritalStatus,
		StateOfOrigin:           p.StateOfOrigin,
		LGA:                     p.LGA,
		StateOfResidence:        p.StateOfResidence,
		AddressStateOfResidence: p.AddressStateOfResidence,
		NextOfKinName:           p.NextOfKinName,
		NextOfKinRelationship:   p.NextOfKinRelationship,
		NextOfKinPhoneNumber:    p.NextOfKinPhoneNumber,
		NextOfKinAddress:        p.NextOfKinAddress,
		CreatedAt:               p.CreatedAt,
		UpdatedAt:               p.UpdatedAt,
	}
}

// EmploymentInfoModel is the persistence model for the employment_info table
type EmploymentInfoModel struct {
	ID                     uint64    `gorm:"primaryKey;autoIncrement"`
	RegistrationID         string    `gorm:"type:varchar(32);not null;uniqueIndex"`
	EmploymentIDNo         string    `gorm:"column:employment_id_no;type:varchar(50)"`
	ServiceNo              string    `gorm:"type:varchar(50)"`
	FileNo                 string    `gorm:"type:varchar(50)"`
	RankPosition           string    `gorm:"type:varchar(100)"`
	Department             string    `gorm:"type:varchar(100)"`
	Organization           string    `gorm:"type:varchar(200)"`
	EmploymentType         string    `gorm:"type:varchar(50)"`
	ProbationPeriod        string    `gorm:"type:varchar(50)"`
	WorkLocation           string    `gorm:"type:varchar(200)"`
	DateOfFirstAppointment string    `gorm:"type:varchar(10)"`
	GL                     string    `gorm:"column:gl;type:varchar(10)"`
	Step                   string    `gorm:"type:varchar(10)"`
	SalaryStructure        string    `gorm:"type:varchar(50)"`
	Cadre                  string    `gorm:"type:varchar(100)"`
	NameOfBank             string    `gorm:"type:varchar(100)"`
	AccountNumber          string    `gorm:"type:varchar(10)"`
	PFAName                string    `gorm:"column:pfa_name;type:varchar(100)"`
	RSAPIN                 string    `gorm:"column:rsapin;type:varchar(50)"`
	EducationalBackground  string    `gorm:"type:text"`
	Certifications         string    `gorm:"type:text"`
	CreatedAt              time.Time `gorm:"not null"`
	UpdatedAt              time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (EmploymentInfoModel) TableName() string {
	return "employment_info"
}

// ToDomain converts the persistence model to domain EmploymentInfo
func (m *EmploymentInfoModel) ToDomain() *registration.EmploymentInfo {
	return &registration.EmploymentInfo{
		RegistrationID:         m.RegistrationID,
		EmploymentIDNo:         m.EmploymentIDNo,
		ServiceNo:              m.ServiceNo,
		FileNo:                 m.FileNo,
		RankPosition:           m.RankPosition,
		Department:             m.Department,
		Organization:           m.Organization,
		EmploymentType:         m.EmploymentType,
		ProbationPeriod:        m.ProbationPeriod,
		WorkLocation:           m.WorkLocation,
		DateOfFirstAppointment: m.DateOfFirstAppointment,
		GL:                     m.GL,
		Step:                   m.Step,
		SalaryStructure:        m.SalaryStructure,
		Cadre:                  m.Cadre,
		NameOfBank:             m.NameOfBank,
		AccountNumber:          m.AccountNumber,
		PFAName:                m.PFAName,
		RSAPIN:                 m.RSAPIN,
		EducationalBackground:  m.EducationalBackground,
		Certifications:         m.Certifications,
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	}
}

// EmploymentInfoModelFromDomain creates a persistence model from domain EmploymentInfo
func EmploymentInfoModelFromDomain(e *registration.EmploymentInfo) *EmploymentInfoModel {
	return &EmploymentInfoModel{
		RegistrationID:         e.RegistrationID,
		EmploymentIDNo:         e.EmploymentIDNo,
		ServiceNo:              e.ServiceNo,
		FileNo:                 e.FileNo,
		RankPosition:           e.RankPosition,
		Department:             e.Department,
		Organization:           e.Organization,
		EmploymentType:         e.EmploymentType,
		ProbationPeriod:        e.ProbationPeriod,
		WorkLocation:           e.WorkLocation,
		DateOfFirstAppointment: e.DateOfFirstAppointment,
		GL:                     e.GL,
		Step:                   e.Step,
		SalaryStructure:        e.SalaryStructure,
		Cadre:                  e.Cadre,
		NameOfBank:             e.NameOfBank,
		AccountNumber:          e.AccountNumber,
		PFAName:                e.PFAName,
		RSAPIN:                 e.RSAPIN,
		EducationalBackground:  e.EducationalBackground,
		Certifications:         e.Certifications,
		CreatedAt:              e.CreatedAt,
		UpdatedAt:              e.UpdatedAt,
	}
}
