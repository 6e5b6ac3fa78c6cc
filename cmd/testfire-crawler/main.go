package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vennelaharish28/testfire-crawler/internal/capture"
	"github.com/vennelaharish28/testfire-crawler/internal/config"
	"github.com/vennelaharish28/testfire-crawler/internal/console"
	"github.com/vennelaharish28/testfire-crawler/internal/crawler"
	"github.com/vennelaharish28/testfire-crawler/internal/executor"
	"github.com/vennelaharish28/testfire-crawler/internal/gifgen"
)

var (
	configPath  string
	baseURL     string
	username    string
	password    string
	outputDir   string
	recap       string
	headless    bool
	width       int
	height      int
	profile     string
	waitTimeout time.Duration
	noPauses    bool
	verbose     bool
)

func main() {
	// Load .env file if present (silently ignore if not found)
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "testfire-crawler",
		Short: "Walk the TestFire demo bank and screenshot each page",
		Long: `testfire-crawler drives a browser through the Altoro Mutual demo bank:
homepage, sign in, login, account details, transfer funds and logout.
A screenshot and a summary block are produced after each of the first five steps.

Example:
  testfire-crawler --headless --output-dir shots --recap shots/recap.gif`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         run,
	}

	f := rootCmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "YAML config file")
	f.StringVar(&baseURL, "base-url", "", "Target site root (default https://demo.testfire.net/)")
	f.StringVar(&username, "username", "", "Login username (default admin)")
	f.StringVar(&password, "password", "", "Login password (default admin)")
	f.StringVarP(&outputDir, "output-dir", "o", "", "Directory for screenshots (default .)")
	f.StringVar(&recap, "recap", "", "Also write an animated GIF of all screenshots to this path")
	f.BoolVar(&headless, "headless", false, "Run the browser without a window")
	f.IntVar(&width, "width", 1280, "Viewport width")
	f.IntVar(&height, "height", 720, "Viewport height")
	f.StringVar(&profile, "profile", "", "Chrome/Chromium profile directory (close browser first)")
	f.DurationVar(&waitTimeout, "wait-timeout", 10*time.Second, "How long to wait for links and fields")
	f.BoolVar(&noPauses, "no-pauses", false, "Skip the fixed settle and viewing pauses")
	f.BoolVarP(&verbose, "verbose", "v", false, "Show detailed progress")

	return rootCmd
}

// loadConfig layers defaults, the config file, the environment and
// explicitly set flags, in that order.
func loadConfig(cmd *cobra.Command, lookupEnv func(string) (string, bool)) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(lookupEnv)

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.Site.BaseURL = baseURL
	}
	if flags.Changed("username") {
		cfg.Credentials.Username = username
	}
	if flags.Changed("password") {
		cfg.Credentials.Password = password
	}
	if flags.Changed("output-dir") {
		cfg.Output.Dir = outputDir
	}
	if flags.Changed("recap") {
		cfg.Output.Recap = recap
	}
	if flags.Changed("headless") {
		cfg.Browser.Headless = headless
	}
	if flags.Changed("width") {
		cfg.Browser.Width = width
	}
	if flags.Changed("height") {
		cfg.Browser.Height = height
	}
	if flags.Changed("profile") {
		cfg.Browser.ProfileDir = profile
	}
	if flags.Changed("wait-timeout") {
		cfg.Timing.WaitTimeout = waitTimeout
	}
	if noPauses {
		cfg.Timing.LoginSettle = 0
		cfg.Timing.NavigationSettle = 0
		cfg.Timing.CaptureDelay = 0
		cfg.Timing.LogoutSettle = 0
		cfg.Timing.CloseDelay = 0
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, os.LookupEnv)
	if err != nil {
		return err
	}
	out := console.New(cmd.OutOrStdout(), verbose)

	out.Banner("🔥 TestFire.net Crawler", 50)
	out.Printf("This will visit 5+ pages and take screenshots")
	out.Verbosef("  Target: %s", cfg.RootURL())
	out.Verbosef("  Output: %s", cfg.Output.Dir)
	out.Verbosef("  Headless: %v", cfg.Browser.Headless)

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	out.Step("🚀", "Starting browser...")
	browser, err := crawler.Launch(crawler.Options{
		Width:         cfg.Browser.Width,
		Height:        cfg.Browser.Height,
		Headless:      cfg.Browser.Headless,
		Bin:           cfg.Browser.Bin,
		ProfileDir:    cfg.Browser.ProfileDir,
		Verbose:       verbose,
		ActionTimeout: cfg.Timing.WaitTimeout,
	})
	if err != nil {
		out.Error("Browser failed to start")
		return err
	}
	out.Success("Browser ready!")

	capturer := capture.New(browser, out, capture.Options{
		Dir:   cfg.Output.Dir,
		Delay: cfg.Timing.CaptureDelay,
	})
	runner := executor.New(browser, capturer, out, executor.Options{
		Target:     cfg.RootURL(),
		CloseDelay: cfg.Timing.CloseDelay,
	})

	report, err := runner.Run(executor.Plan(cfg, nil))
	if err != nil {
		return err
	}

	if cfg.Output.Recap != "" && len(report.Records) > 0 {
		out.Printf("→ Generating recap (%d frames)...", len(report.Records))
		size, err := gifgen.Generate(report.Paths(), cfg.Output.Recap, gifgen.Options{
			FrameDelay: 2 * time.Second,
			MaxWidth:   800,
		})
		if err != nil {
			out.Warn("Recap failed: %v", err)
		} else {
			out.Success("Saved recap to %s (%.1f MB)", cfg.Output.Recap, float64(size)/(1024*1024))
		}
	}

	out.Printf("")
	out.Heading("🎉 Crawling completed!")
	out.Printf("Check %s for screenshot files:", cfg.Output.Dir)
	for i, label := range []string{
		executor.LabelHomepage,
		executor.LabelSignIn,
		executor.LabelAccountSummary,
		executor.LabelAccountDetails,
		executor.LabelTransferFunds,
	} {
		out.Printf("- page_%d_%s_*.png", i+1, label)
	}
	return nil
}
