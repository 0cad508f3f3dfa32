package namespace

import "fmt"

// Category selects the storage area a reference belongs to.
type Category string

const (
	// Common is the area shared by every user.
	Common Category = "common"
	// Personal is the private area of the calling user.
	Personal Category = "personal"
)

// ParseCategory converts the wire form of a category.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case Common, Personal:
		return Category(s), nil
	}
	return "", &Error{
		Kind: KindPathViolation,
		Op:   "parse category",
		Err:  fmt.Errorf("unknown category %q", s),
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c == Common || c == Personal
}

func (c Category) String() string { return string(c) }
