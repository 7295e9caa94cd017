package scraper

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const (
	loginPage    = "login.aspx"
	graphingPage = "graphing.aspx"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// ErrLoginFailed indicates the portal rejected the credentials
var ErrLoginFailed = fmt.Errorf("login failed: credentials rejected")

// formTokenFields is the fixed set of ASP.NET hidden state fields the
// portal requires on every postback
var formTokenFields = []string{
	"__VIEWSTATE",
	"__VIEWSTATEGENERATOR",
	"__EVENTVALIDATION",
	"__EVENTTARGET",
	"__EVENTARGUMENT",
}

// Session owns the authenticated HTTP client state and the most recently
// fetched page body. The portal keeps a per-session "current month"
// cursor on its side, so a Session must never be shared between
// concurrent navigation sequences.
type Session struct {
	client   *resty.Client
	username string
	password string

	currentPage string
}

// NewSession creates an unauthenticated portal session
func NewSession(baseURL, username, password string) (*Session, error) {
	client := resty.New()
	client.SetBaseURL(baseURL)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	client.SetCookieJar(jar)
	client.SetHeader("User-Agent", userAgent)
	client.SetTimeout(30 * time.Second)

	return &Session{
		client:   client,
		username: username,
		password: password,
	}, nil
}

// CurrentPage returns the most recently fetched page body
func (s *Session) CurrentPage() string {
	return s.currentPage
}

// ExtractFormTokens pulls the hidden ASP.NET state fields out of a page
// body. Fields the page doesn't carry are simply absent from the result.
func ExtractFormTokens(html string) map[string]string {
	tokens := make(map[string]string)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return tokens
	}

	for _, field := range formTokenFields {
		sel := doc.Find(fmt.Sprintf("input[name=%s]", field))
		if sel.Length() > 0 {
			tokens[field] = sel.AttrOr("value", "")
		}
	}

	return tokens
}

// Login performs the login handshake: fetch the login page, submit
// credentials merged with its hidden tokens, and check that the redirect
// landed on the graphing page. Returns (false, nil) when the portal
// rejects the credentials; transport failures return an error.
func (s *Session) Login(ctx context.Context) (bool, error) {
	fmt.Println("Logging in...")

	res, err := s.client.R().
		SetContext(ctx).
		Get(loginPage)
	if err != nil {
		return false, fmt.Errorf("fetching login page: %w", err)
	}

	form := ExtractFormTokens(string(res.Body()))
	form["username_txt"] = s.username
	form["password_txt"] = s.password
	form["login_btn"] = "Login"

	res, err = s.client.R().
		SetContext(ctx).
		SetFormData(form).
		Post(loginPage)
	if err != nil {
		return false, fmt.Errorf("submitting login: %w", err)
	}

	// The portal redirects to the graphing page on success and re-renders
	// the login page on bad credentials
	finalURL := res.RawResponse.Request.URL.String()
	if !strings.Contains(finalURL, graphingPage) {
		fmt.Println("✗ Login failed")
		return false, nil
	}

	fmt.Println("✓ Login successful!")
	s.currentPage = string(res.Body())

	s.forwardAlign(ctx)

	return true, nil
}

// postback submits the named navigation control back to the graphing
// page, carrying the current view's hidden tokens with the event
// target/argument fields cleared
func (s *Session) postback(ctx context.Context, button, label string) (*resty.Response, error) {
	form := ExtractFormTokens(s.currentPage)
	form[button] = label
	form["__EVENTTARGET"] = ""
	form["__EVENTARGUMENT"] = ""

	return s.client.R().
		SetContext(ctx).
		SetHeader("Referer", graphingPage).
		SetFormData(form).
		Post(graphingPage)
}
