package record

import (
	"fmt"
	"strings"
)

// OtherOption is the option label that opens the free-text fallback
// in category pick lists.
const OtherOption = "其它"

// Category is a category value that is either one of the configured
// options (Known) or free text typed in by the user (Other).
type Category struct {
	Value string
	Other bool
}

// Known returns a Category for a configured option.
func Known(value string) Category {
	return Category{Value: value}
}

// Other returns a Category holding free text.
func Other(text string) Category {
	return Category{Value: text, Other: true}
}

// String returns the stored value for either variant.
func (c Category) String() string {
	return c.Value
}

// IsZero reports whether no value is set.
func (c Category) IsZero() bool {
	return c.Value == ""
}

// ResolveCategory turns a picked option plus optional free text into a
// Category. Picking OtherOption requires text. Text given without picking
// OtherOption is also treated as Other.
func ResolveCategory(choice, text string) (Category, error) {
	choice = strings.TrimSpace(choice)
	text = strings.TrimSpace(text)

	switch {
	case choice == OtherOption && text == "":
		return Category{}, ErrOtherTextMissing
	case choice == OtherOption, choice == "" && text != "":
		return Other(text), nil
	case text != "":
		return Category{}, fmt.Errorf("%w: free text %q given with option %q", ErrInvalidPayload, text, choice)
	default:
		return Known(choice), nil
	}
}

// Classify returns Known(value) when value is one of options, Other(value)
// otherwise. Empty values stay empty.
func Classify(value string, options []string) Category {
	if value == "" {
		return Category{}
	}

	for _, opt := range options {
		if opt == value && opt != OtherOption {
			return Known(value)
		}
	}

	return Other(value)
}
