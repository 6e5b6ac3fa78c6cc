package config

import "time"

// Default returns the configuration the crawler runs with when nothing
// is overridden: the public Altoro Mutual demo and its demo login.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			BaseURL:     "https://demo.testfire.net/",
			AccountPath: "/bank/account",
			MainPath:    "/bank/main.jsp",
		},
		Credentials: Credentials{
			Username: "admin",
			Password: "admin",
		},
		Browser: BrowserConfig{
			Headless: false,
			Width:    1280,
			Height:   720,
		},
		Timing: TimingConfig{
			WaitTimeout:      10 * time.Second,
			LoginSettle:      3 * time.Second,
			NavigationSettle: 2 * time.Second,
			CaptureDelay:     2 * time.Second,
			LogoutSettle:     2 * time.Second,
			CloseDelay:       5 * time.Second,
		},
		Output: OutputConfig{
			Dir: ".",
		},
	}
}
