package csvimport

import (
	"fmt"
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldType represents the expected type of a field
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "int"
	TypeDecimal FieldType = "decimal"
	TypeDate    FieldType = "date"
	TypeEmail   FieldType = "email"
)

// FieldRule defines validation rules for a canonical column
type FieldRule struct {
	Column      string
	Type        FieldType
	Required    bool
	MinLength   int
	MaxLength   int
	MinValue    *decimal.Decimal
	MaxValue    *decimal.Decimal
	Pattern     *regexp.Regexp
	PatternDesc string
	DateFormat  string
	Unique      bool
	Fold        bool
	CustomFunc  func(value string) error
}

// FieldRuleBuilder helps build field rules fluently
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field creates a new field rule builder
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{
		rule: FieldRule{
			Column:     column,
			Type:       TypeString,
			DateFormat: "2006-01-02",
		},
	}
}

// Required marks the field as required
func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

// Int sets the field type to integer
func (b *FieldRuleBuilder) Int() *FieldRuleBuilder {
	b.rule.Type = TypeInt
	return b
}

// Decimal sets the field type to decimal
func (b *FieldRuleBuilder) Decimal() *FieldRuleBuilder {
	b.rule.Type = TypeDecimal
	return b
}

// Date sets the field type to date
func (b *FieldRuleBuilder) Date() *FieldRuleBuilder {
	b.rule.Type = TypeDate
	return b
}

// Email sets the field type to email
func (b *FieldRuleBuilder) Email() *FieldRuleBuilder {
	b.rule.Type = TypeEmail
	return b
}

// MaxLength sets the maximum length
func (b *FieldRuleBuilder) MaxLength(n int) *FieldRuleBuilder {
	b.rule.MaxLength = n
	return b
}

// Length sets both min and max length
func (b *FieldRuleBuilder) Length(min, max int) *FieldRuleBuilder {
	b.rule.MinLength = min
	b.rule.MaxLength = max
	return b
}

// Range sets both min and max numeric values
func (b *FieldRuleBuilder) Range(min, max decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &min
	b.rule.MaxValue = &max
	return b
}

// Pattern sets a regex pattern for validation
func (b *FieldRuleBuilder) Pattern(pattern, description string) *FieldRuleBuilder {
	b.rule.Pattern = regexp.MustCompile(pattern)
	b.rule.PatternDesc = description
	return b
}

// Unique marks the field as unique within the file; fold compares case-insensitively
func (b *FieldRuleBuilder) Unique(fold bool) *FieldRuleBuilder {
	b.rule.Unique = true
	b.rule.Fold = fold
	return b
}

// Custom sets a custom validation function
func (b *FieldRuleBuilder) Custom(fn func(value string) error) *FieldRuleBuilder {
	b.rule.CustomFunc = fn
	return b
}

// Build returns the built field rule
func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// FieldValidator validates rows according to rules
type FieldValidator struct {
	rules       []FieldRule
	uniqueCheck map[string]map[string]int
	errors      *ErrorCollection
}

// NewFieldValidator creates a new field validator; rules are applied in column order
func NewFieldValidator(rules []FieldRule, maxErrors int) *FieldValidator {
	sorted := append([]FieldRule(nil), rules...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Column < sorted[j].Column })
	return &FieldValidator{
		rules:       sorted,
		uniqueCheck: make(map[string]map[string]int),
		errors:      NewErrorCollection(maxErrors),
	}
}

// Columns returns the set of columns covered by the rules
func (v *FieldValidator) Columns() map[string]bool {
	cols := make(map[string]bool, len(v.rules))
	for _, r := range v.rules {
		cols[r.Column] = true
	}
	return cols
}

// ValidateRow validates all ruled fields of a row and reports whether it is clean
func (v *FieldValidator) ValidateRow(row *Row) bool {
	ok := true
	for _, rule := range v.rules {
		if !v.validateField(row, rule) {
			ok = false
		}
	}
	return ok
}

func (v *FieldValidator) validateField(row *Row, rule FieldRule) bool {
	value := row.Get(rule.Column)
	line, column := row.LineNumber, rule.Column

	if value == "" {
		if rule.Required {
			v.errors.AddRequiredError(line, column)
			return false
		}
		return true
	}

	if err := validateType(value, rule); err != nil {
		v.errors.AddTypeError(line, column, string(rule.Type), value)
		return false
	}

	ok := true
	if n := len([]rune(value)); (rule.MaxLength > 0 && n > rule.MaxLength) || (rule.MinLength > 0 && n < rule.MinLength) {
		msg := fmt.Sprintf("length must be between %d and %d", rule.MinLength, rule.MaxLength)
		if rule.MinLength == 0 {
			msg = fmt.Sprintf("length must be at most %d", rule.MaxLength)
		}
		v.errors.Add(RowError{Row: line, Column: column, Code: ErrCodeImportInvalidLength, Message: msg, Value: value})
		ok = false
	}

	if rule.Type == TypeInt || rule.Type == TypeDecimal {
		if err := validateRange(value, rule.MinValue, rule.MaxValue); err != nil {
			v.errors.Add(RowError{Row: line, Column: column, Code: ErrCodeImportInvalidRange, Message: err.Error(), Value: value})
			ok = false
		}
	}

	if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
		v.errors.Add(RowError{Row: line, Column: column, Code: ErrCodeImportPatternMismatch,
			Message: "value must be " + rule.PatternDesc, Value: value})
		ok = false
	}

	if rule.Unique {
		key := value
		if rule.Fold {
			key = strings.ToLower(value)
		}
		if v.uniqueCheck[column] == nil {
			v.uniqueCheck[column] = make(map[string]int)
		}
		if first, seen := v.uniqueCheck[column][key]; seen {
			v.errors.Add(RowError{Row: line, Column: column, Code: ErrCodeImportDuplicateInFile,
				Message: fmt.Sprintf("duplicate value '%s' (first seen in row %d)", value, first), Value: value})
			ok = false
		} else {
			v.uniqueCheck[column][key] = line
		}
	}

	if rule.CustomFunc != nil {
		if err := rule.CustomFunc(value); err != nil {
			v.errors.Add(RowError{Row: line, Column: column, Code: ErrCodeImportValidation, Message: err.Error(), Value: value})
			ok = false
		}
	}
	return ok
}

func validateType(value string, rule FieldRule) error {
	switch rule.Type {
	case TypeInt:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return err
		}
		if !d.IsInteger() {
			return fmt.Errorf("not an integer: %s", value)
		}
	case TypeDecimal:
		_, err := decimal.NewFromString(value)
		return err
	case TypeDate:
		_, err := time.Parse(rule.DateFormat, value)
		return err
	case TypeEmail:
		addr, err := mail.ParseAddress(value)
		if err != nil {
			return err
		}
		if addr.Address != value {
			return fmt.Errorf("not a bare address: %s", value)
		}
	}
	return nil
}

func validateRange(value string, min, max *decimal.Decimal) error {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return err
	}
	if min != nil && d.LessThan(*min) {
		return fmt.Errorf("value must be at least %s", min.String())
	}
	if max != nil && d.GreaterThan(*max) {
		return fmt.Errorf("value must be at most %s", max.String())
	}
	return nil
}

// Errors returns the error collection
func (v *FieldValidator) Errors() *ErrorCollection {
	return v.errors
}

// UniquenessValidator checks values against already persisted records
type UniquenessValidator struct {
	lookupFunc func(column, value string) (bool, error)
	errors     *ErrorCollection
}

// NewUniquenessValidator creates a validator that records errors into errs
func NewUniquenessValidator(lookupFunc func(column, value string) (bool, error), errs *ErrorCollection) *UniquenessValidator {
	return &UniquenessValidator{lookupFunc: lookupFunc, errors: errs}
}

// ValidateUnique reports whether the value is not yet persisted.
// A lookup failure is returned so the caller can abort rather than mis-report a row.
func (v *UniquenessValidator) ValidateUnique(row int, column, value string) (bool, error) {
	if value == "" {
		return true, nil
	}
	exists, err := v.lookupFunc(column, value)
	if err != nil {
		return false, err
	}
	if exists {
		v.errors.AddDuplicateError(row, column, value, true)
		return false, nil
	}
	return true, nil
}
