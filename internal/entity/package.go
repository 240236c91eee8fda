package entity

// EndorsementPackage is a priced content tier offered on the intake form.
type EndorsementPackage struct {
	Value       string `json:"value"       yaml:"value"       validate:"required"`
	Label       string `json:"label"       yaml:"label"       validate:"required"`
	Price       int64  `json:"price"       yaml:"price"       validate:"gte=0"`
	Description string `json:"description" yaml:"description"`
}

// MonthWindow is the inclusive range of months an endorsement may be booked
// for.
type MonthWindow struct {
	Earliest YearMonth `json:"earliest"`
	Latest   YearMonth `json:"latest"`
}
