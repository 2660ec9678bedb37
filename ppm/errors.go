package ppm

// A FormatError reports that the input is not a valid P3/P6 image.
type FormatError string

func (e FormatError) Error() string {
	return "ppm: invalid format: " + string(e)
}

// An IOError reports a failed read or write on the underlying stream,
// including a binary body that ends before width*height*3 bytes.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return "ppm: " + e.Op + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error { return e.Err }
