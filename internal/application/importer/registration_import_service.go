package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	regapp "github.com/ippis/backend/internal/application/registration"
	"github.com/ippis/backend/internal/domain/registration"
	"github.com/ippis/backend/internal/domain/shared"
	"github.com/ippis/backend/internal/infrastructure/csvimport"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Canonical column names
const (
	ColSurname                = "surname"
	ColFirstName              = "firstname"
	ColOtherNames             = "othernames"
	ColEmail                  = "email"
	ColPhone                  = "phonenumber"
	ColDepartment             = "department"
	ColPosition               = "position"
	ColDateOfBirth            = "dateofbirth"
	ColDateOfFirstAppointment = "dateoffirstappointment"
	ColSex                    = "sex"
	ColTitle                  = "title"
	ColGradeLevel             = "gradelevel"
	ColStep                   = "step"
)

const placeholder = "N/A"

// HeaderAliases maps accepted CSV headers to canonical column names
var HeaderAliases = map[string]string{
	"surname":                ColSurname,
	"lastname":               ColSurname,
	"familyname":             ColSurname,
	"firstname":              ColFirstName,
	"givenname":              ColFirstName,
	"othernames":             ColOtherNames,
	"middlename":             ColOtherNames,
	"email":                  ColEmail,
	"emailaddress":           ColEmail,
	"phonenumber":            ColPhone,
	"phone":                  ColPhone,
	"department":             ColDepartment,
	"position":               ColPosition,
	"rankposition":           ColPosition,
	"rank":                   ColPosition,
	"dateofbirth":            ColDateOfBirth,
	"dob":                    ColDateOfBirth,
	"dateoffirstappointment": ColDateOfFirstAppointment,
	"sex":                    ColSex,
	"gender":                 ColSex,
	"title":                  ColTitle,
	"gradelevel":             ColGradeLevel,
	"gl":                     ColGradeLevel,
	"step":                   ColStep,
}

var requiredColumns = []string{ColSurname, ColFirstName, ColEmail}

// ImportResult summarizes a validate or import run
type ImportResult struct {
	TotalRows       int                  `json:"total_rows"`
	ValidRows       int                  `json:"valid_rows"`
	Imported        int                  `json:"imported"`
	Skipped         int                  `json:"skipped"`
	Errors          []csvimport.RowError `json:"errors"`
	IsTruncated     bool                 `json:"is_truncated,omitempty"`
	RegistrationIDs []string             `json:"registration_ids,omitempty"`
	// FailedRow is the line whose commit aborted the import; rows before it stay committed.
	FailedRow int `json:"failed_row,omitempty"`
}

// RegistrationImportService bulk-loads pending registrations from CSV
type RegistrationImportService struct {
	repo      registration.Repository
	txScope   regapp.TransactionScope
	metrics   regapp.MetricsRecorder
	logger    *zap.Logger
	maxErrors int
}

// NewRegistrationImportService creates a new RegistrationImportService
func NewRegistrationImportService(
	repo registration.Repository,
	txScope regapp.TransactionScope,
	metrics regapp.MetricsRecorder,
	logger *zap.Logger,
) *RegistrationImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationImportService{
		repo:      repo,
		txScope:   txScope,
		metrics:   metrics,
		logger:    logger,
		maxErrors: 200,
	}
}

// GetValidationRules returns the field rules applied to every row
func (s *RegistrationImportService) GetValidationRules() []csvimport.FieldRule {
	return []csvimport.FieldRule{
		csvimport.Field(ColSurname).Required().MaxLength(100).Build(),
		csvimport.Field(ColFirstName).Required().MaxLength(100).Build(),
		csvimport.Field(ColOtherNames).MaxLength(100).Build(),
		csvimport.Field(ColEmail).Required().Email().MaxLength(100).Unique(true).Build(),
		csvimport.Field(ColPhone).Length(11, 20).Pattern(`^\d+$`, "digits only").Build(),
		csvimport.Field(ColDepartment).MaxLength(100).Build(),
		csvimport.Field(ColPosition).MaxLength(100).Build(),
		csvimport.Field(ColDateOfBirth).Date().Build(),
		csvimport.Field(ColDateOfFirstAppointment).Date().Build(),
		csvimport.Field(ColSex).Custom(validateSex).Build(),
		csvimport.Field(ColTitle).MaxLength(10).Build(),
		csvimport.Field(ColGradeLevel).Int().Range(decimal.NewFromInt(1), decimal.NewFromInt(17)).Build(),
		csvimport.Field(ColStep).Int().Range(decimal.NewFromInt(1), decimal.NewFromInt(15)).Build(),
	}
}

func validateSex(value string) error {
	switch strings.ToUpper(value) {
	case registration.SexMale, registration.SexFemale:
		return nil
	}
	return fmt.Errorf("sex must be MALE or FEMALE")
}

// Validate checks a file without writing anything
func (s *RegistrationImportService) Validate(ctx context.Context, r io.Reader) (*ImportResult, error) {
	return s.run(ctx, r, false)
}

// Import validates a file and creates one pending registration per valid row.
// Each row commits in its own transaction. When a commit fails the partial
// result (committed ids, failing row) is returned together with the error.
func (s *RegistrationImportService) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	return s.run(ctx, r, true)
}

func (s *RegistrationImportService) run(ctx context.Context, r io.Reader, commit bool) (*ImportResult, error) {
	parser, err := csvimport.NewCSVParser(r, csvimport.WithHeaderAliases(HeaderAliases))
	if err != nil {
		return nil, fileError(err)
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, fileError(err)
	}
	if missing := parser.ValidateHeaders(requiredColumns); len(missing) > 0 {
		details := make([]shared.FieldError, 0, len(missing))
		for _, col := range missing {
			details = append(details, shared.FieldError{Field: col, Message: "missing required column " + col})
		}
		return nil, shared.NewValidationError(details...)
	}

	validator := csvimport.NewFieldValidator(s.GetValidationRules(), s.maxErrors)
	rows, err := parser.ReadAllRows(validator.Columns())
	if err != nil {
		return nil, fileError(err)
	}

	errs := validator.Errors()
	existing := csvimport.NewUniquenessValidator(func(_, value string) (bool, error) {
		return s.repo.EmailExists(ctx, value)
	}, errs)

	result := &ImportResult{TotalRows: len(rows)}
	valid := make([]*csvimport.Row, 0, len(rows))
	for _, row := range rows {
		if validator.ValidateRow(row) {
			if _, err := existing.ValidateUnique(row.LineNumber, ColEmail, strings.ToLower(row.Get(ColEmail))); err != nil {
				return nil, err
			}
		}
		switch {
		case !errs.RowHasErrors(row.LineNumber):
			valid = append(valid, row)
		case errs.RowOnly(row.LineNumber, csvimport.ErrCodeImportDuplicateInFile, csvimport.ErrCodeImportDuplicateInDB):
			result.Skipped++
		}
	}
	result.ValidRows = len(valid)

	if commit {
		for _, row := range valid {
			id, err := s.commitRow(ctx, row)
			if err != nil {
				s.logger.Error("Import aborted",
					zap.Int("row", row.LineNumber),
					zap.Int("imported", result.Imported),
					zap.Strings("registration_ids", result.RegistrationIDs),
					zap.Error(err))
				errs.Add(csvimport.RowError{Row: row.LineNumber, Code: csvimport.ErrCodeImportFailed, Message: err.Error()})
				result.FailedRow = row.LineNumber
				result.Errors = errs.Errors()
				result.IsTruncated = errs.IsTruncated()
				return result, err
			}
			result.Imported++
			result.RegistrationIDs = append(result.RegistrationIDs, id)
		}
		s.logger.Info("Registrations imported",
			zap.Int("total_rows", result.TotalRows),
			zap.Int("imported", result.Imported),
			zap.Int("skipped", result.Skipped))
	}

	result.Errors = errs.Errors()
	result.IsTruncated = errs.IsTruncated()
	return result, nil
}

func (s *RegistrationImportService) commitRow(ctx context.Context, row *csvimport.Row) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.importRow(ctx, row)
}

func (s *RegistrationImportService) importRow(ctx context.Context, row *csvimport.Row) (string, error) {
	metadata := "{}"
	if len(row.Extra) > 0 {
		raw, err := json.Marshal(row.Extra)
		if err != nil {
			return "", err
		}
		metadata = string(raw)
	}

	for attempt := 0; attempt < 3; attempt++ {
		id, err := registration.GenerateRegistrationID()
		if err != nil {
			return "", err
		}
		reg, err := registration.NewImportedRegistration(id, metadata)
		if err != nil {
			return "", err
		}
		personal := personalInfoFromRow(id, row)
		employment := employmentInfoFromRow(id, row)

		err = s.txScope.Execute(ctx, func(repos regapp.TransactionalRepositories) error {
			regs := repos.Registrations()
			if err := regs.Create(ctx, reg); err != nil {
				return err
			}
			if err := regs.SavePersonalInfo(ctx, personal); err != nil {
				return err
			}
			if err := regs.SaveEmploymentInfo(ctx, employment); err != nil {
				return err
			}
			if err := regs.AppendHistory(ctx, registration.NewHistoryEntry(id, registration.ActionCreated,
				fmt.Sprintf("Registration imported from CSV row %d", row.LineNumber), registration.PerformerSystem)); err != nil {
				return err
			}
			return regs.AppendHistory(ctx, registration.NewHistoryEntry(id, registration.ActionSubmitted,
				"Registration submitted for approval", registration.PerformerSystem))
		})
		if errors.Is(err, shared.ErrConflict) {
			continue
		}
		if err != nil {
			return "", err
		}
		if s.metrics != nil {
			s.metrics.RecordCreated(ctx, registration.SourceImport)
			s.metrics.RecordSubmitted(ctx)
		}
		return id, nil
	}
	return "", shared.ErrConflict.WithMessage("Could not allocate a unique registration id")
}

func personalInfoFromRow(id string, row *csvimport.Row) *registration.PersonalInfo {
	p := &registration.PersonalInfo{
		RegistrationID:          id,
		Title:                   orPlaceholder(row.Get(ColTitle)),
		Surname:                 row.Get(ColSurname),
		FirstName:               row.Get(ColFirstName),
		OtherNames:              row.Get(ColOtherNames),
		PhoneNumber:             row.Get(ColPhone),
		Email:                   row.Get(ColEmail),
		DateOfBirth:             row.Get(ColDateOfBirth),
		Sex:                     row.Get(ColSex),
		StateOfOrigin:           placeholder,
		LGA:                     placeholder,
		StateOfResidence:        placeholder,
		AddressStateOfResidence: placeholder,
		NextOfKinName:           placeholder,
		NextOfKinRelationship:   placeholder,
		NextOfKinAddress:        placeholder,
	}
	p.Normalize()
	return p
}

func employmentInfoFromRow(id string, row *csvimport.Row) *registration.EmploymentInfo {
	e := &registration.EmploymentInfo{
		RegistrationID:         id,
		Department:             row.Get(ColDepartment),
		RankPosition:           row.Get(ColPosition),
		DateOfFirstAppointment: row.Get(ColDateOfFirstAppointment),
		GL:                     row.Get(ColGradeLevel),
		Step:                   row.Get(ColStep),
	}
	e.Normalize()
	return e
}

func orPlaceholder(v string) string {
	if v == "" {
		return placeholder
	}
	return v
}

func fileError(err error) error {
	return shared.NewValidationError(shared.FieldError{Field: "file", Message: err.Error()})
}
