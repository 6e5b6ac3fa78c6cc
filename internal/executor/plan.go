package executor

import (
	"errors"
	"fmt"
	"time"

	"github.com/vennelaharish28/testfire-crawler/internal/config"
	"github.com/vennelaharish28/testfire-crawler/internal/crawler"
)

// Link texts and form field names the demo bank must keep stable.
const (
	LinkSignIn         = "Sign In"
	LinkAccountDetails = "View Account Details"
	LinkTransferFunds  = "Transfer Funds"
	LinkContactUs      = "Contact Us"
	LinkSignOff        = "Sign Off"

	FieldUsername = "uid"
	FieldPassword = "passw"
	FieldSubmit   = "btnSubmit"
)

// Capture labels used by the plan.
const (
	LabelHomepage       = "Homepage"
	LabelSignIn         = "Sign_In_Page"
	LabelAccountSummary = "Account_Summary"
	LabelAccountDetails = "Account_Details"
	LabelTransferFunds  = "Transfer_Funds"
	LabelContactPage    = "Contact_Page"
	LabelCurrentPage    = "Current_Page"
)

var ErrNoLogoutLink = errors.New("logout link not found")

// Plan builds the six-step walk through the demo bank:
// homepage, sign in, login, account details, transfer funds, logout.
// sleep is used for the fixed settle pauses; nil means time.Sleep.
func Plan(cfg *config.Config, sleep func(time.Duration)) []Step {
	if sleep == nil {
		sleep = time.Sleep
	}
	p := &plan{cfg: cfg, sleep: sleep}
	return []Step{
		{
			Name:     "homepage",
			Icon:     "🌐",
			Announce: "Navigating to TestFire homepage...",
			Primary:  p.homepage,
		},
		{
			Name:     "sign-in",
			Icon:     "🔐",
			Announce: "Navigating to Sign In page...",
			Primary:  p.signIn,
		},
		{
			Name:     "login",
			Icon:     "👤",
			Announce: "Performing login...",
			Primary:  p.login,
		},
		{
			Name:           "account-details",
			Icon:           "💰",
			Announce:       "Viewing account details...",
			Primary:        p.accountDetails,
			Fallback:       p.accountDetailsDirect,
			FallbackNotice: "Account Details link not found, trying alternative...",
		},
		{
			Name:           "transfer-funds",
			Icon:           "💸",
			Announce:       "Accessing transfer funds...",
			Primary:        p.transferFunds,
			Fallback:       p.contactPage,
			FallbackNotice: "Transfer Funds not found, accessing Contact page...",
		},
		{
			Name:       "logout",
			Icon:       "🚪",
			Announce:   "Attempting logout...",
			Primary:    p.logout,
			BestEffort: true,
			FailNotice: logoutNotice,
			Done:       "Successfully logged out",
		},
	}
}

type plan struct {
	cfg   *config.Config
	sleep func(time.Duration)
}

func (p *plan) clickWhenReady(d crawler.Driver, text string) error {
	el, err := d.WaitClickable(crawler.LinkText(text), p.cfg.Timing.WaitTimeout)
	if err != nil {
		return err
	}
	return el.Click()
}

func (p *plan) homepage(d crawler.Driver) (Shot, error) {
	if err := d.Navigate(p.cfg.RootURL()); err != nil {
		return Shot{}, err
	}
	return Shot{LabelHomepage, fmt.Sprintf("Loaded %s homepage", p.cfg.Host())}, nil
}

func (p *plan) signIn(d crawler.Driver) (Shot, error) {
	if err := p.clickWhenReady(d, LinkSignIn); err != nil {
		return Shot{}, err
	}
	return Shot{LabelSignIn, "Clicked Sign In link"}, nil
}

func (p *plan) login(d crawler.Driver) (Shot, error) {
	username, err := d.WaitPresent(crawler.Name(FieldUsername), p.cfg.Timing.WaitTimeout)
	if err != nil {
		return Shot{}, err
	}
	password, err := d.Find(crawler.Name(FieldPassword))
	if err != nil {
		return Shot{}, err
	}
	if err := username.SendKeys(p.cfg.Credentials.Username); err != nil {
		return Shot{}, fmt.Errorf("enter username: %w", err)
	}
	if err := password.SendKeys(p.cfg.Credentials.Password); err != nil {
		return Shot{}, fmt.Errorf("enter password: %w", err)
	}

	submit, err := d.Find(crawler.Name(FieldSubmit))
	if err != nil {
		return Shot{}, err
	}
	if err := submit.Click(); err != nil {
		return Shot{}, fmt.Errorf("submit login: %w", err)
	}
	p.sleep(p.cfg.Timing.LoginSettle)

	return Shot{LabelAccountSummary, "Successfully logged in"}, nil
}

func (p *plan) accountDetails(d crawler.Driver) (Shot, error) {
	if err := p.clickWhenReady(d, LinkAccountDetails); err != nil {
		return Shot{}, err
	}
	return Shot{LabelAccountDetails, "Clicked View Account Details"}, nil
}

func (p *plan) accountDetailsDirect(d crawler.Driver) (Shot, error) {
	if err := d.Navigate(p.cfg.AccountURL()); err != nil {
		return Shot{}, err
	}
	return Shot{LabelAccountDetails, "Navigated to account details page"}, nil
}

func (p *plan) transferFunds(d crawler.Driver) (Shot, error) {
	// Start from the account main page, where the transfer link lives.
	if err := d.Navigate(p.cfg.MainURL()); err != nil {
		return Shot{}, err
	}
	p.sleep(p.cfg.Timing.NavigationSettle)

	if err := p.clickWhenReady(d, LinkTransferFunds); err != nil {
		return Shot{}, err
	}
	return Shot{LabelTransferFunds, "Clicked Transfer Funds"}, nil
}

func (p *plan) contactPage(d crawler.Driver) (Shot, error) {
	if err := d.Navigate(p.cfg.RootURL()); err != nil {
		return Shot{}, err
	}
	links, err := d.FindAll(crawler.LinkText(LinkContactUs))
	if err != nil {
		return Shot{}, err
	}
	if len(links) == 0 {
		return Shot{LabelCurrentPage, "Captured current page state"}, nil
	}
	if err := links[0].Click(); err != nil {
		return Shot{}, fmt.Errorf("open contact page: %w", err)
	}
	return Shot{LabelContactPage, "Navigated to Contact Us page"}, nil
}

func (p *plan) logout(d crawler.Driver) (Shot, error) {
	links, err := d.FindAll(crawler.LinkText(LinkSignOff))
	if err != nil {
		return Shot{}, fmt.Errorf("find sign off link: %w", err)
	}
	if len(links) == 0 {
		return Shot{}, ErrNoLogoutLink
	}
	if err := links[0].Click(); err != nil {
		return Shot{}, fmt.Errorf("click sign off: %w", err)
	}
	p.sleep(p.cfg.Timing.LogoutSettle)
	return Shot{}, nil
}

func logoutNotice(err error) string {
	if errors.Is(err, ErrNoLogoutLink) {
		return "Logout link not found"
	}
	return "Logout process failed"
}
