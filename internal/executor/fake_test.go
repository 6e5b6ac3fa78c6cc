package executor

import (
	"errors"
	"os"
	"time"

	"github.com/vennelaharish28/testfire-crawler/internal/crawler"
)

// fakeDriver is an in-memory crawler.Driver. Links and fields that
// exist are listed up front; every call is appended to calls.
type fakeDriver struct {
	links  map[string]int  // link text -> number of matching anchors
	fields map[string]bool // name attribute -> present

	navErr   map[string]error
	clickErr map[string]error
	shotErr  error
	quitErr  error

	url    string
	typed  map[string]string
	calls  []string
	shots  []string
	quits  int
	waited []time.Duration
}

func newFakeDriver(links ...string) *fakeDriver {
	d := &fakeDriver{
		links:    map[string]int{},
		fields:   map[string]bool{"uid": true, "passw": true, "btnSubmit": true},
		navErr:   map[string]error{},
		clickErr: map[string]error{},
		typed:    map[string]string{},
	}
	for _, l := range links {
		d.links[l]++
	}
	return d
}

// fullSite has every link the plan looks for.
func fullSite() *fakeDriver {
	return newFakeDriver("Sign In", "View Account Details", "Transfer Funds", "Contact Us", "Sign Off")
}

type fakeElement struct {
	d   *fakeDriver
	loc crawler.Locator
}

func (e *fakeElement) Click() error {
	if err := e.d.clickErr[e.loc.Value]; err != nil {
		return err
	}
	e.d.calls = append(e.d.calls, "click "+e.loc.Value)
	if e.loc.By == crawler.ByLinkText {
		e.d.url = "link:" + e.loc.Value
	}
	return nil
}

func (e *fakeElement) SendKeys(text string) error {
	e.d.calls = append(e.d.calls, "type "+e.loc.Value)
	e.d.typed[e.loc.Value] = text
	return nil
}

func (d *fakeDriver) has(loc crawler.Locator) bool {
	if loc.By == crawler.ByLinkText {
		return d.links[loc.Value] > 0
	}
	return d.fields[loc.Value]
}

func (d *fakeDriver) Navigate(url string) error {
	d.calls = append(d.calls, "navigate "+url)
	if err := d.navErr[url]; err != nil {
		return err
	}
	d.url = url
	return nil
}

func (d *fakeDriver) WaitClickable(loc crawler.Locator, timeout time.Duration) (crawler.Element, error) {
	d.waited = append(d.waited, timeout)
	if !d.has(loc) {
		return nil, &crawler.LookupError{Locator: loc, Waited: timeout}
	}
	return &fakeElement{d: d, loc: loc}, nil
}

func (d *fakeDriver) WaitPresent(loc crawler.Locator, timeout time.Duration) (crawler.Element, error) {
	return d.WaitClickable(loc, timeout)
}

func (d *fakeDriver) Find(loc crawler.Locator) (crawler.Element, error) {
	if !d.has(loc) {
		return nil, &crawler.LookupError{Locator: loc}
	}
	return &fakeElement{d: d, loc: loc}, nil
}

func (d *fakeDriver) FindAll(loc crawler.Locator) ([]crawler.Element, error) {
	var els []crawler.Element
	n := d.links[loc.Value]
	if loc.By == crawler.ByName && d.fields[loc.Value] {
		n = 1
	}
	for i := 0; i < n; i++ {
		els = append(els, &fakeElement{d: d, loc: loc})
	}
	return els, nil
}

func (d *fakeDriver) CurrentURL() (string, error) { return d.url, nil }
func (d *fakeDriver) Title() (string, error)      { return "Altoro Mutual", nil }

func (d *fakeDriver) Screenshot(path string) error {
	if d.shotErr != nil {
		return d.shotErr
	}
	d.shots = append(d.shots, path)
	return os.WriteFile(path, []byte("png"), 0o644)
}

func (d *fakeDriver) Quit() error {
	d.quits++
	return d.quitErr
}

var errNetwork = errors.New("net::ERR_NAME_NOT_RESOLVED")
