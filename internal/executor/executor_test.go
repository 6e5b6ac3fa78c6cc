package executor

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vennelaharish28/testfire-crawler/internal/capture"
	"github.com/vennelaharish28/testfire-crawler/internal/config"
	"github.com/vennelaharish28/testfire-crawler/internal/console"
	"github.com/vennelaharish28/testfire-crawler/internal/crawler"
)

type runOutput struct {
	report *Report
	err    error
	out    string
	sleeps []time.Duration
}

func runPlan(t *testing.T, d *fakeDriver) runOutput {
	t.Helper()
	cfg := config.Default()
	var buf bytes.Buffer
	var sleeps []time.Duration
	sleep := func(dur time.Duration) { sleeps = append(sleeps, dur) }

	printer := console.New(&buf, true)
	capturer := capture.New(d, printer, capture.Options{
		Dir:   t.TempDir(),
		Delay: cfg.Timing.CaptureDelay,
		Sleep: sleep,
	})
	runner := New(d, capturer, printer, Options{
		Target:     cfg.RootURL(),
		CloseDelay: cfg.Timing.CloseDelay,
		Sleep:      sleep,
	})

	report, err := runner.Run(Plan(cfg, sleep))
	return runOutput{report: report, err: err, out: buf.String(), sleeps: sleeps}
}

func labels(recs []capture.Record) []string {
	var out []string
	for _, r := range recs {
		out = append(out, r.Label)
	}
	return out
}

func assertSequential(t *testing.T, recs []capture.Record) {
	t.Helper()
	for i, rec := range recs {
		assert.Equal(t, i+1, rec.Seq)
		seq, label, _, err := capture.ParseFileName(filepath.Base(rec.Path))
		require.NoError(t, err)
		assert.Equal(t, rec.Seq, seq)
		assert.Equal(t, rec.Label, label)
		assert.FileExists(t, rec.Path)
	}
}

func TestRunFullSite(t *testing.T) {
	d := fullSite()
	res := runPlan(t, d)

	require.NoError(t, res.err)
	require.NoError(t, res.report.Err)
	assert.Equal(t, []string{
		LabelHomepage, LabelSignIn, LabelAccountSummary, LabelAccountDetails, LabelTransferFunds,
	}, labels(res.report.Records))
	assertSequential(t, res.report.Records)

	require.Len(t, res.report.Steps, 6)
	for _, s := range res.report.Steps {
		assert.Equal(t, BranchPrimary, s.Branch, s.Name)
	}
	assert.Nil(t, res.report.Steps[5].Record, "logout never captures")

	assert.Equal(t, 1, d.quits)
	assert.Equal(t, map[string]string{"uid": "admin", "passw": "admin"}, d.typed)
	assert.Contains(t, d.calls, "click btnSubmit")
	assert.Contains(t, d.calls, "navigate https://demo.testfire.net/bank/main.jsp")
	assert.Equal(t, "click Sign Off", d.calls[len(d.calls)-1])
	for _, w := range d.waited {
		assert.Equal(t, 10*time.Second, w)
	}

	assert.Contains(t, res.out, "📸 PAGE 5: Transfer_Funds")
	assert.Contains(t, res.out, "✅ Successfully logged out")
	assert.Contains(t, res.out, "Total pages recorded: 5")
	assert.Contains(t, res.out, "🔄 Closing browser in 5 seconds...")
	assert.Contains(t, res.out, "✅ Browser closed successfully!")
	assert.NotContains(t, res.out, "PAGE 6")
}

func TestRunPausesInOrder(t *testing.T) {
	res := runPlan(t, fullSite())
	require.NoError(t, res.err)

	s := time.Second
	assert.Equal(t, []time.Duration{
		2 * s,        // homepage capture
		2 * s,        // sign-in capture
		3 * s, 2 * s, // login settle, capture
		2 * s,        // account details capture
		2 * s, 2 * s, // main page settle, capture
		2 * s,        // logout settle
		5 * s,        // close delay
	}, res.sleeps)
}

func TestRunAccountDetailsFallback(t *testing.T) {
	d := newFakeDriver("Sign In", "Transfer Funds", "Sign Off")
	res := runPlan(t, d)

	require.NoError(t, res.report.Err)
	require.Len(t, res.report.Records, 5)
	assertSequential(t, res.report.Records)

	details := res.report.Steps[3]
	assert.Equal(t, BranchFallback, details.Branch)
	require.NotNil(t, details.Record)
	assert.Equal(t, LabelAccountDetails, details.Record.Label)
	assert.Equal(t, "Navigated to account details page", details.Record.Action)
	assert.Equal(t, "https://demo.testfire.net/bank/account", details.Record.URL)

	assert.Equal(t, BranchPrimary, res.report.Steps[4].Branch)
	assert.Equal(t, LabelTransferFunds, res.report.Records[4].Label)
	assert.Contains(t, res.out, "Account Details link not found, trying alternative...")
	assert.Equal(t, 1, d.quits)
}

func TestRunTransferFallback(t *testing.T) {
	tests := []struct {
		name   string
		links  []string
		label  string
		action string
	}{
		{"contact link present", []string{"Sign In", "View Account Details", "Contact Us", "Contact Us"}, LabelContactPage, "Navigated to Contact Us page"},
		{"nothing to click", []string{"Sign In", "View Account Details"}, LabelCurrentPage, "Captured current page state"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newFakeDriver(tt.links...)
			res := runPlan(t, d)

			require.NoError(t, res.report.Err)
			require.Len(t, res.report.Records, 5)
			assertSequential(t, res.report.Records)

			transfer := res.report.Steps[4]
			assert.Equal(t, BranchFallback, transfer.Branch)
			require.NotNil(t, transfer.Record)
			assert.Equal(t, tt.label, transfer.Record.Label)
			assert.Equal(t, tt.action, transfer.Record.Action)
			assert.Contains(t, res.out, "Transfer Funds not found, accessing Contact page...")
			assert.Contains(t, res.out, "⚠️ Logout link not found")
			assert.Equal(t, 1, d.quits)
		})
	}
}

func TestRunTransferFallbackWhenMainPageFails(t *testing.T) {
	d := fullSite()
	d.navErr["https://demo.testfire.net/bank/main.jsp"] = errNetwork
	res := runPlan(t, d)

	require.NoError(t, res.report.Err)
	assert.Equal(t, BranchFallback, res.report.Steps[4].Branch)
	assert.Equal(t, LabelContactPage, res.report.Records[4].Label)
}

func TestRunLoginFailureCapturesErrorPage(t *testing.T) {
	d := fullSite()
	d.fields["uid"] = false
	res := runPlan(t, d)

	require.NoError(t, res.err)
	require.Error(t, res.report.Err)
	assert.ErrorIs(t, res.report.Err, crawler.ErrElementNotFound)
	assert.ErrorIs(t, res.report.Err, crawler.ErrTimeout)

	assert.Equal(t, []string{LabelHomepage, LabelSignIn, ErrorPageLabel}, labels(res.report.Records))
	assertSequential(t, res.report.Records)
	assert.Contains(t, res.report.Records[2].Action, "Error occurred: login")
	assert.Len(t, res.report.Steps, 3)

	assert.Contains(t, res.out, "❌ Error during crawling: login")
	assert.Contains(t, res.out, "Total pages recorded: 3")
	assert.NotContains(t, d.calls, "click Sign Off")
	assert.Equal(t, 1, d.quits)
}

func TestRunMissingSubmitFailsWithoutWaiting(t *testing.T) {
	d := fullSite()
	d.fields["btnSubmit"] = false
	res := runPlan(t, d)

	require.Error(t, res.report.Err)
	assert.ErrorIs(t, res.report.Err, crawler.ErrElementNotFound)
	assert.NotErrorIs(t, res.report.Err, crawler.ErrTimeout)
	assert.Equal(t, 1, d.quits)
}

func TestRunHomepageFailure(t *testing.T) {
	d := fullSite()
	d.navErr["https://demo.testfire.net/"] = errNetwork
	res := runPlan(t, d)

	require.NoError(t, res.err)
	assert.ErrorIs(t, res.report.Err, errNetwork)
	assert.Equal(t, []string{ErrorPageLabel}, labels(res.report.Records))
	assert.Equal(t, 1, res.report.Records[0].Seq)
	assert.Equal(t, 1, d.quits)
}

func TestRunFallbackFailureIsFatal(t *testing.T) {
	d := newFakeDriver("Sign In")
	d.navErr["https://demo.testfire.net/bank/account"] = errNetwork
	res := runPlan(t, d)

	assert.ErrorIs(t, res.report.Err, errNetwork)
	assert.Contains(t, res.report.Err.Error(), "account-details (fallback)")
	assert.Equal(t, []string{LabelHomepage, LabelSignIn, LabelAccountSummary, ErrorPageLabel}, labels(res.report.Records))
	assert.Equal(t, 1, d.quits)
}

func TestRunScreenshotFailure(t *testing.T) {
	d := fullSite()
	d.shotErr = errors.New("target crashed")
	res := runPlan(t, d)

	require.NoError(t, res.err)
	require.Error(t, res.report.Err)
	assert.Empty(t, res.report.Records)
	assert.Contains(t, res.out, "Could not capture error page")
	assert.Contains(t, res.out, "Total pages recorded: 0")
	assert.Equal(t, 1, d.quits)
}

func TestRunLogoutClickFailureIsOnlyAWarning(t *testing.T) {
	d := fullSite()
	d.clickErr["Sign Off"] = errors.New("detached")
	res := runPlan(t, d)

	require.NoError(t, res.report.Err)
	assert.Len(t, res.report.Records, 5)
	assert.Contains(t, res.out, "⚠️ Logout process failed")
	assert.Contains(t, res.out, "click sign off: detached")
	assert.NotContains(t, res.out, "Successfully logged out")
}

func TestRunReturnsQuitError(t *testing.T) {
	d := fullSite()
	d.quitErr = errors.New("already gone")
	res := runPlan(t, d)

	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "already gone")
	assert.Equal(t, 1, d.quits)
	assert.NotContains(t, res.out, "Browser closed successfully")
}

func TestRunQuitsAfterPanic(t *testing.T) {
	d := fullSite()
	printer := console.New(&bytes.Buffer{}, false)
	capturer := capture.New(d, printer, capture.Options{Dir: t.TempDir(), Sleep: func(time.Duration) {}})
	runner := New(d, capturer, printer, Options{Sleep: func(time.Duration) {}})

	steps := []Step{{
		Name:    "boom",
		Primary: func(crawler.Driver) (Shot, error) { panic("driver bug") },
	}}
	assert.Panics(t, func() { _, _ = runner.Run(steps) })
	assert.Equal(t, 1, d.quits)
}

func TestReportPaths(t *testing.T) {
	r := &Report{Records: []capture.Record{{Path: "a.png"}, {Path: "b.png"}}}
	assert.Equal(t, []string{"a.png", "b.png"}, r.Paths())
	assert.Equal(t, "fallback", BranchFallback.String())
	assert.Equal(t, "primary", BranchPrimary.String())
}
