package dto

// SetLevelsInput is an absolute stock update guarded by the quantity it was computed from.
type SetLevelsInput struct {
	ProductID        int64
	ExpectedQuantity int
	Quantity         *int
	MinThreshold     *int
	MaxThreshold     *int
	Reason           string
	ReferenceType    string
	ReferenceID      string
}
