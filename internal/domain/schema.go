package domain

// FieldKind is the syntactic type of a submitted form field.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldDate
)

// FieldSpec describes one employee form field.
type FieldSpec struct {
	Name     string
	Kind     FieldKind
	Required bool
}

// Form field names.
const (
	FieldTitle       = "title"
	FieldName        = "name"
	FieldDesignation = "designation"
	FieldDOB         = "dob"
	FieldAddress     = "address"
	FieldImage       = "image"
)

// EmployeeSchema lists the employee fields in validation order; the first
// failing entry is the one reported.
var EmployeeSchema = []FieldSpec{
	{Name: FieldTitle, Kind: FieldText, Required: true},
	{Name: FieldName, Kind: FieldText, Required: true},
	{Name: FieldDesignation, Kind: FieldText, Required: true},
	{Name: FieldDOB, Kind: FieldDate, Required: true},
	{Name: FieldAddress, Kind: FieldText, Required: true},
}
