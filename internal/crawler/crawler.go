package crawler

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Options configures the launched browser
type Options struct {
	Width      int
	Height     int
	Headless   bool
	Bin        string // Chrome/Chromium binary; looked up when empty
	ProfileDir string // Chrome/Chromium profile directory for authenticated sessions
	Verbose    bool

	// ActionTimeout bounds clicks, typing and the navigation a link
	// click starts. Zero means DefaultActionTimeout.
	ActionTimeout time.Duration
}

// DefaultActionTimeout bounds element actions when Options leaves it unset
const DefaultActionTimeout = 10 * time.Second

// Browser wraps the Rod browser and its single page. It implements Driver.
type Browser struct {
	browser *rod.Browser
	page    *rod.Page
	bound   time.Duration

	mu     sync.Mutex
	closed bool
}

// Launch starts a browser and opens a blank page
func Launch(opts Options) (*Browser, error) {
	bin := opts.Bin
	if bin == "" {
		bin, _ = launcher.LookPath()
	}

	l := launcher.New().Bin(bin).Headless(opts.Headless)
	if opts.ProfileDir != "" {
		l = l.UserDataDir(opts.ProfileDir)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	if opts.Verbose {
		fmt.Printf("  control URL: %s\n", u)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}

	if opts.Width > 0 && opts.Height > 0 {
		err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.Width,
			Height:            opts.Height,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			_ = browser.Close()
			return nil, fmt.Errorf("set viewport: %w", err)
		}
	}

	return &Browser{browser: browser, page: page, bound: opts.ActionTimeout}, nil
}

// Page returns the underlying Rod page
func (b *Browser) Page() *rod.Page {
	return b.page
}

func (b *Browser) live() (*rod.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrSessionClosed
	}
	return b.page, nil
}

// Navigate loads url and waits for the load event
func (b *Browser) Navigate(url string) error {
	page, err := b.live()
	if err != nil {
		return err
	}
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	return nil
}

// WaitClickable waits for the element to exist and become visible
func (b *Browser) WaitClickable(loc Locator, timeout time.Duration) (Element, error) {
	page, err := b.live()
	if err != nil {
		return nil, err
	}
	el, err := waitFor(page.Timeout(timeout), loc)
	if err == nil {
		err = el.WaitVisible()
	}
	if err != nil {
		return nil, &LookupError{Locator: loc, Waited: timeout, Err: err}
	}
	return newElement(el.CancelTimeout(), loc, b.bound), nil
}

// WaitPresent waits for the element to exist in the DOM
func (b *Browser) WaitPresent(loc Locator, timeout time.Duration) (Element, error) {
	page, err := b.live()
	if err != nil {
		return nil, err
	}
	el, err := waitFor(page.Timeout(timeout), loc)
	if err != nil {
		return nil, &LookupError{Locator: loc, Waited: timeout, Err: err}
	}
	return newElement(el.CancelTimeout(), loc, b.bound), nil
}

// Find checks the current DOM once
func (b *Browser) Find(loc Locator) (Element, error) {
	page, err := b.live()
	if err != nil {
		return nil, err
	}
	var (
		has bool
		el  *rod.Element
	)
	switch loc.By {
	case ByLinkText:
		has, el, err = page.HasX(linkXPath(loc.Value))
	default:
		has, el, err = page.Has(cssSelector(loc))
	}
	if err != nil {
		return nil, &LookupError{Locator: loc, Err: err}
	}
	if !has {
		return nil, &LookupError{Locator: loc}
	}
	return newElement(el, loc, b.bound), nil
}

// FindAll returns every current match without waiting
func (b *Browser) FindAll(loc Locator) ([]Element, error) {
	page, err := b.live()
	if err != nil {
		return nil, err
	}
	var els rod.Elements
	switch loc.By {
	case ByLinkText:
		els, err = page.ElementsX(linkXPath(loc.Value))
	default:
		els, err = page.Elements(cssSelector(loc))
	}
	if err != nil {
		return nil, fmt.Errorf("find all %s: %w", loc, err)
	}
	found := make([]Element, 0, len(els))
	for _, el := range els {
		found = append(found, newElement(el, loc, b.bound))
	}
	return found, nil
}

// CurrentURL returns the page URL
func (b *Browser) CurrentURL() (string, error) {
	page, err := b.live()
	if err != nil {
		return "", err
	}
	info, err := page.Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

// Title returns the document title
func (b *Browser) Title() (string, error) {
	page, err := b.live()
	if err != nil {
		return "", err
	}
	info, err := page.Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.Title, nil
}

// Screenshot writes a PNG of the viewport to path
func (b *Browser) Screenshot(path string) error {
	page, err := b.live()
	if err != nil {
		return err
	}
	data, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return fmt.Errorf("capture screenshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write screenshot: %w", err)
	}
	return nil
}

// Quit closes the page and the browser. Later calls return ErrSessionClosed.
func (b *Browser) Quit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrSessionClosed
	}
	b.closed = true

	if b.page != nil {
		_ = b.page.Close()
	}
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			return fmt.Errorf("close browser: %w", err)
		}
	}
	return nil
}

// element adapts a Rod element to Element. Every action on it is
// bounded, so a covered or disabled control fails instead of hanging.
type element struct {
	el        *rod.Element
	bound     time.Duration
	navigates bool // link clicks load a new document
}

func newElement(el *rod.Element, loc Locator, bound time.Duration) *element {
	if bound <= 0 {
		bound = DefaultActionTimeout
	}
	return &element{el: el, bound: bound, navigates: loc.By == ByLinkText}
}

func (e *element) Click() error {
	var wait func()
	if e.navigates {
		// Subscribe before clicking; the old document already reports
		// readyState "complete", so WaitLoad alone would return early.
		page := e.el.Page().Timeout(e.bound)
		defer page.CancelTimeout()
		wait = page.WaitNavigation(proto.PageLifecycleEventNameLoad)
	}

	el := e.el.Timeout(e.bound)
	defer el.CancelTimeout()
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	if wait != nil {
		wait()
	}
	return nil
}

func (e *element) SendKeys(text string) error {
	el := e.el.Timeout(e.bound)
	defer el.CancelTimeout()
	if err := el.Input(text); err != nil {
		return fmt.Errorf("type into element: %w", err)
	}
	return nil
}

// waitFor polls until the locator matches or the page context expires
func waitFor(page *rod.Page, loc Locator) (*rod.Element, error) {
	switch loc.By {
	case ByLinkText:
		return page.ElementX(linkXPath(loc.Value))
	default:
		return page.Element(cssSelector(loc))
	}
}

// linkXPath matches anchors by normalized visible text, like Selenium's LINK_TEXT
func linkXPath(text string) string {
	return fmt.Sprintf("//a[normalize-space(.)=%s]", xpathLiteral(strings.TrimSpace(text)))
}

func cssSelector(loc Locator) string {
	return fmt.Sprintf(`[name="%s"]`, escapeSelector(loc.Value))
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		quoted = append(quoted, `"`+p+`"`)
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

func escapeSelector(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
