package entity

// Submission is what the public intake form sends. The service turns it into
// an Order: it assigns identifiers, prices and the payment deadline.
type Submission struct {
	CustomerName string              `json:"customerName"    validate:"required,max=100"`
	BrandName    string              `json:"brandName"       validate:"required,max=100"`
	Instagram    string              `json:"instagram"       validate:"required,max=100"`
	Email        string              `json:"email,omitempty" validate:"omitempty,email,max=100"`
	Phone        string              `json:"phone,omitempty" validate:"max=30"`
	Products     []SubmissionProduct `json:"products"        validate:"required,min=1,dive"`
}

type SubmissionProduct struct {
	Description     string    `json:"description"     validate:"required,max=2000"`
	EndorsementType string    `json:"endorsementType" validate:"required,max=50"`
	EndorseMonth    YearMonth `json:"endorseMonth"`
	Photo           string    `json:"photo,omitempty" validate:"max=500"`
}
