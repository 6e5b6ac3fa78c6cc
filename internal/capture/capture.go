package capture

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/vennelaharish28/testfire-crawler/internal/console"
)

// TimestampLayout is the time format embedded in screenshot names
const TimestampLayout = "20060102_150405"

// Screen is the part of the browser a capture reads from
type Screen interface {
	Screenshot(path string) error
	CurrentURL() (string, error)
	Title() (string, error)
}

// Record describes one completed capture. Records are never modified.
type Record struct {
	Seq     int
	Label   string
	Action  string
	URL     string
	Title   string
	Path    string
	TakenAt time.Time
}

// Options configures a Capturer
type Options struct {
	Dir   string        // directory screenshots are written to
	Delay time.Duration // pause after each capture so a watcher can see the page
	Now   func() time.Time
	Sleep func(time.Duration)
}

// Capturer owns the page counter of a run
type Capturer struct {
	screen Screen
	out    *console.Printer
	opts   Options
	count  int
}

// New returns a Capturer with its counter at zero
func New(screen Screen, out *console.Printer, opts Options) *Capturer {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	return &Capturer{screen: screen, out: out, opts: opts}
}

// Count returns the number of captures taken so far
func (c *Capturer) Count() int {
	return c.count
}

// Capture screenshots the current page and prints its metadata. The
// counter only advances once the screenshot file has been written.
func (c *Capturer) Capture(label, action string) (Record, error) {
	seq := c.count + 1
	now := c.opts.Now()
	name := FileName(seq, label, now)
	path := filepath.Join(c.opts.Dir, name)

	if err := c.screen.Screenshot(path); err != nil {
		return Record{}, fmt.Errorf("capture %s: %w", label, err)
	}
	c.count = seq

	// URL and title are informational; a failed read is logged, not fatal.
	url, err := c.screen.CurrentURL()
	if err != nil {
		url = fmt.Sprintf("<unavailable: %v>", err)
	}
	title, err := c.screen.Title()
	if err != nil {
		title = fmt.Sprintf("<unavailable: %v>", err)
	}

	rec := Record{
		Seq:     seq,
		Label:   label,
		Action:  action,
		URL:     url,
		Title:   title,
		Path:    path,
		TakenAt: now,
	}

	c.out.Printf("")
	c.out.Printf("📸 PAGE %d: %s", rec.Seq, rec.Label)
	c.out.Field("Action", rec.Action)
	c.out.Field("URL", rec.URL)
	c.out.Field("Title", rec.Title)
	c.out.Field("Screenshot", name)
	c.out.Rule("-", 60)

	c.opts.Sleep(c.opts.Delay)
	return rec, nil
}

// FileName builds page_<seq>_<label>_<YYYYMMDD_HHMMSS>.png
func FileName(seq int, label string, t time.Time) string {
	return fmt.Sprintf("page_%d_%s_%s.png", seq, label, t.Format(TimestampLayout))
}

var fileNameRE = regexp.MustCompile(`^page_([1-9][0-9]*)_(.+)_([0-9]{8}_[0-9]{6})\.png$`)

// ParseFileName splits a screenshot name produced by FileName
func ParseFileName(name string) (seq int, label string, t time.Time, err error) {
	m := fileNameRE.FindStringSubmatch(name)
	if m == nil {
		return 0, "", time.Time{}, fmt.Errorf("not a capture file name: %q", name)
	}
	seq, err = strconv.Atoi(m[1])
	if err != nil {
		return 0, "", time.Time{}, fmt.Errorf("sequence in %q: %w", name, err)
	}
	t, err = time.ParseInLocation(TimestampLayout, m[3], time.Local)
	if err != nil {
		return 0, "", time.Time{}, fmt.Errorf("timestamp in %q: %w", name, err)
	}
	return seq, m[2], t, nil
}
