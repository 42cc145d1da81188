package errors

var (
	errorSpaces []ErrorSpace
)

// Code is the small set of store error classes the pipeline cares about.
type Code int

const (
	// CodeUnknown is any store error no registered space can classify.
	CodeUnknown Code = iota
	// CodeAlreadyExists means the store rejected a create because the
	// object (table, row) already exists.
	CodeAlreadyExists
)

// ErrorSpace allows implementations to inject database specific error checking
// to the application. A space returns CodeUnknown for errors belonging to a
// different driver.
type ErrorSpace func(error) Code

// RegisterErrorSpace adds an ErrorSpace. A binary that connects to a dialect
// chosen at runtime registers one space per driver it links; classification
// consults every registered space.
func RegisterErrorSpace(f ErrorSpace) {
	errorSpaces = append(errorSpaces, f)
}

// StoreCode classifies a raw store error. The first registered space that
// recognizes the error wins.
func StoreCode(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	for _, space := range errorSpaces {
		if code := space(err); code != CodeUnknown {
			return code
		}
	}
	return CodeUnknown
}

// IsAlreadyExists reports whether err is the store's "object already exists"
// rejection. The idempotent create-if-absent path treats this as success.
func IsAlreadyExists(err error) bool {
	return StoreCode(err) == CodeAlreadyExists
}
