package executor

import (
	"fmt"
	"time"

	"github.com/vennelaharish28/testfire-crawler/internal/capture"
	"github.com/vennelaharish28/testfire-crawler/internal/console"
	"github.com/vennelaharish28/testfire-crawler/internal/crawler"
)

// ErrorPageLabel labels the capture taken after an unrecovered error
const ErrorPageLabel = "Error_Page"

// Options configures a Runner
type Options struct {
	Target     string        // shown in the banner and summary
	CloseDelay time.Duration // pause before the browser is closed
	Sleep      func(time.Duration)
}

// Runner executes a plan over one browser session and always closes it
type Runner struct {
	driver   crawler.Driver
	capturer *capture.Capturer
	out      *console.Printer
	opts     Options
}

// New returns a Runner. The capturer must read from the same driver.
func New(driver crawler.Driver, capturer *capture.Capturer, out *console.Printer, opts Options) *Runner {
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	return &Runner{driver: driver, capturer: capturer, out: out, opts: opts}
}

// Run executes steps in order. A step error that no fallback absorbs
// stops the plan, is recorded in Report.Err and gets one error-page
// capture. The driver is quit exactly once on every path; only a
// failure to quit is returned.
func (r *Runner) Run(steps []Step) (report *Report, err error) {
	report = &Report{Target: r.opts.Target}

	r.out.Heading("🔥 Starting crawl of %s", r.opts.Target)
	r.out.Rule("=", 50)

	defer func() {
		if qerr := r.teardown(); qerr != nil {
			err = qerr
		}
	}()

	for _, step := range steps {
		res, serr := r.runStep(step)
		report.Steps = append(report.Steps, res)
		if res.Record != nil {
			report.Records = append(report.Records, *res.Record)
		}
		if serr != nil {
			report.Err = serr
			r.handleFailure(report, serr)
			return report, nil
		}
	}
	return report, nil
}

func (r *Runner) runStep(step Step) (StepResult, error) {
	r.out.Step(step.Icon, "%s", step.Announce)
	res := StepResult{Name: step.Name, Branch: BranchPrimary}

	shot, err := step.Primary(r.driver)
	if err != nil && step.Fallback != nil {
		r.out.Warn("%s", step.FallbackNotice)
		r.out.Verbosef("   primary action failed: %v", err)
		res.Branch = BranchFallback
		shot, err = step.Fallback(r.driver)
	}
	if err != nil {
		if step.BestEffort {
			if step.FailNotice != nil {
				r.out.Warn("%s", step.FailNotice(err))
				r.out.Verbosef("   %v", err)
			} else {
				r.out.Warn("%v", err)
			}
			return res, nil
		}
		return res, fmt.Errorf("%s (%s): %w", step.Name, res.Branch, err)
	}

	if shot.Label == "" || step.BestEffort {
		if step.Done != "" {
			r.out.Success("%s", step.Done)
		}
		return res, nil
	}

	rec, err := r.capturer.Capture(shot.Label, shot.Action)
	if err != nil {
		return res, fmt.Errorf("%s: %w", step.Name, err)
	}
	res.Record = &rec
	return res, nil
}

// handleFailure logs the error and tries one capture of whatever page is showing
func (r *Runner) handleFailure(report *Report, cause error) {
	r.out.Error("Error during crawling: %v", cause)
	rec, err := r.capturer.Capture(ErrorPageLabel, "Error occurred: "+cause.Error())
	if err != nil {
		r.out.Warn("Could not capture error page: %v", err)
		return
	}
	report.Records = append(report.Records, rec)
}

func (r *Runner) teardown() error {
	count := r.capturer.Count()
	r.out.Printf("")
	r.out.Heading("🎯 Crawling Summary:")
	r.out.Field("Total pages recorded", count)
	r.out.Field("Screenshots taken", count)
	r.out.Field("Target website", r.opts.Target)

	r.out.Printf("")
	r.out.Printf("🔄 Closing browser in %d seconds...", int(r.opts.CloseDelay.Seconds()))
	r.opts.Sleep(r.opts.CloseDelay)

	if err := r.driver.Quit(); err != nil {
		r.out.Error("Failed to close browser: %v", err)
		return fmt.Errorf("close browser: %w", err)
	}
	r.out.Success("Browser closed successfully!")
	return nil
}
