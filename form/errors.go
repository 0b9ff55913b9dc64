package form

import (
	"strings"

	"github.com/hashicorp/go-multierror"
)

// FieldError is one failed rule on one field; Message is ready to show.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// Invalid collects every failing field of a form. First names the field
// that should receive focus.
type Invalid struct {
	First string
	errs  *multierror.Error
}

func (e *Invalid) Error() string {
	return e.errs.Error()
}

func (e *Invalid) Unwrap() error {
	return e.errs
}

// Fields returns the individual field errors in form order.
func (e *Invalid) Fields() []*FieldError {
	out := make([]*FieldError, 0, len(e.errs.Errors))
	for _, err := range e.errs.Errors {
		if fe, ok := err.(*FieldError); ok {
			out = append(out, fe)
		}
	}
	return out
}

// Of returns the message for a field, or "".
func (e *Invalid) Of(field string) string {
	for _, fe := range e.Fields() {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

func listMessages(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// collector accumulates the first failure of each field.
type collector struct {
	first string
	errs  *multierror.Error
}

func (c *collector) add(err *FieldError) {
	if err == nil {
		return
	}
	if c.errs == nil {
		c.first = err.Field
	}
	c.errs = multierror.Append(c.errs, err)
}

func (c *collector) result() error {
	if c.errs == nil {
		return nil
	}
	c.errs.ErrorFormat = listMessages
	return &Invalid{First: c.first, errs: c.errs}
}
