package classify

import "strings"

// Validator checks an upload's filename extension and size before any
// decoding work happens.
type Validator struct {
	allowed  map[string]struct{}
	allowMsg string
	maxBytes int64
	maxMB    int64
}

// NewValidator builds a validator from the configured extension
// allow-list (compared case-insensitively) and size cap in bytes.
func NewValidator(extensions []string, maxBytes int64) *Validator {
	allowed := make(map[string]struct{}, len(extensions))
	lowered := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(ext)
		allowed[ext] = struct{}{}
		lowered = append(lowered, ext)
	}
	return &Validator{
		allowed:  allowed,
		allowMsg: strings.Join(lowered, ", "),
		maxBytes: maxBytes,
		maxMB:    maxBytes / (1024 * 1024),
	}
}

// Validate returns nil if the filename carries an allowed extension and
// size does not exceed the cap. size must be the number of bytes
// actually read, not a client-declared length. A filename without any
// dot is invalid.
func (v *Validator) Validate(filename string, size int64) error {
	dot := strings.LastIndex(filename, ".")
	if dot < 0 {
		return v.invalid()
	}
	ext := strings.ToLower(filename[dot+1:])
	if _, ok := v.allowed[ext]; !ok {
		return v.invalid()
	}
	if size > v.maxBytes {
		return v.invalid()
	}
	return nil
}

func (v *Validator) invalid() error {
	return badInput("Invalid file. Allowed extensions: %s, Max size: %dMB",
		v.allowMsg, v.maxMB)
}
