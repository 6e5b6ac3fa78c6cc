package crawler

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrElementNotFound = errors.New("element not found")
	ErrTimeout         = errors.New("wait timed out")
	ErrSessionClosed   = errors.New("browser session closed")
)

// By selects how a Locator matches elements.
type By int

const (
	// ByLinkText matches anchors whose visible text equals the value.
	ByLinkText By = iota
	// ByName matches elements by their name attribute.
	ByName
)

func (b By) String() string {
	switch b {
	case ByLinkText:
		return "link text"
	case ByName:
		return "name"
	default:
		return fmt.Sprintf("By(%d)", int(b))
	}
}

// Locator identifies an element on the current page.
type Locator struct {
	By    By
	Value string
}

// LinkText locates an anchor by its exact visible text.
func LinkText(text string) Locator { return Locator{By: ByLinkText, Value: text} }

// Name locates a form field by its name attribute.
func Name(name string) Locator { return Locator{By: ByName, Value: name} }

func (l Locator) String() string {
	return fmt.Sprintf("%s %q", l.By, l.Value)
}

// LookupError reports a failed element lookup. A lookup that waited
// carries the bound it waited for and also matches ErrTimeout.
type LookupError struct {
	Locator Locator
	Waited  time.Duration
	Err     error
}

func (e *LookupError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrElementNotFound, e.Locator)
	if e.Waited > 0 {
		msg += fmt.Sprintf(" (waited %s)", e.Waited)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// Is matches ErrElementNotFound always and ErrTimeout for bounded waits.
func (e *LookupError) Is(target error) bool {
	switch target {
	case ErrElementNotFound:
		return true
	case ErrTimeout:
		return e.Waited > 0
	}
	return false
}

// Element is a located element that can be acted on.
type Element interface {
	Click() error
	SendKeys(text string) error
}

// Driver is the browser capability set a crawl consumes.
type Driver interface {
	Navigate(url string) error
	// WaitClickable waits up to timeout for a visible element.
	WaitClickable(loc Locator, timeout time.Duration) (Element, error)
	// WaitPresent waits up to timeout for the element to exist in the DOM.
	WaitPresent(loc Locator, timeout time.Duration) (Element, error)
	// Find looks the element up once, without waiting.
	Find(loc Locator) (Element, error)
	// FindAll returns every match, possibly none.
	FindAll(loc Locator) ([]Element, error)
	CurrentURL() (string, error)
	Title() (string, error)
	Screenshot(path string) error
	Quit() error
}
