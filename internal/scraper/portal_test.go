package scraper

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// fakePortal emulates the metering portal: a login form that redirects to
// the graphing page, and a graphing page whose month cursor moves on
// postbacks. months[0] is the most recent month.
type fakePortal struct {
	mu     sync.Mutex
	months []fakeMonth
	idx    int

	username string
	password string

	errorsToServe int
	errorCount    int
	postbacks     int
}

type fakeMonth struct {
	month  string
	year   int
	dates  []string
	values []float64
}

func newFakePortal(months []fakeMonth) *fakePortal {
	return &fakePortal{
		months:   months,
		username: "meter-user",
		password: "meter-pass",
	}
}

func (p *fakePortal) server() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/login.aspx", p.handleLogin)
	mux.HandleFunc("/graphing.aspx", p.handleGraphing)
	return httptest.NewServer(mux)
}

func (p *fakePortal) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		fmt.Fprint(w, loginFormHTML)
		return
	}

	r.ParseForm()
	if r.FormValue("__VIEWSTATE") != "login-vs" || r.FormValue("__EVENTVALIDATION") != "login-ev" {
		http.Error(w, "Invalid postback state", http.StatusInternalServerError)
		return
	}
	if r.FormValue("username_txt") != p.username || r.FormValue("password_txt") != p.password {
		fmt.Fprint(w, loginFormHTML)
		return
	}

	http.Redirect(w, r, "/graphing.aspx", http.StatusFound)
}

func (p *fakePortal) handleGraphing(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if r.Method == http.MethodPost {
		p.postbacks++

		if p.errorsToServe > 0 {
			p.errorsToServe--
			p.errorCount++
			http.Error(w, "Runtime Error", http.StatusInternalServerError)
			return
		}

		r.ParseForm()
		if r.FormValue("__VIEWSTATE") == "" {
			http.Error(w, "Invalid postback state", http.StatusInternalServerError)
			return
		}

		switch {
		case r.Form.Has("prevMonth_btn"):
			if p.idx+1 >= len(p.months) {
				// End of history renders a view with no chart at all
				fmt.Fprint(w, "<html><body>An error occurred processing your request.</body></html>")
				return
			}
			p.idx++
		case r.Form.Has("nextMonth_btn"):
			if p.idx > 0 {
				p.idx--
			}
		}
	}

	fmt.Fprint(w, p.renderMonth())
}

func (p *fakePortal) renderMonth() string {
	m := p.months[p.idx]

	var quoted []string
	for _, d := range m.dates {
		quoted = append(quoted, "'"+d+"'")
	}
	var data []string
	for _, v := range m.values {
		data = append(data, fmt.Sprintf("%g", v))
	}

	nextBtn := `<input type="submit" name="nextMonth_btn" value="Next Month" />`
	if p.idx == 0 {
		nextBtn = `<input type="submit" name="nextMonth_btn" value="Next Month" disabled="disabled" />`
	}

	return fmt.Sprintf(`<html><head><script type="text/javascript">
$(function () {
    $('#chart_container').highcharts({
        title: { text: 'Daily Consumption During %s %d for Main House' },
        subtitle: { text: 'Reading as of Monday, 04 March 2024 is 1523.40 kWh' },
        xAxis: { categories: [%s] },
        series: [{ name: 'Daily Consumption', data: [%s] }]
    });
});
</script></head><body>
<form method="post" action="graphing.aspx">
<input type="hidden" name="__VIEWSTATE" value="graph-vs-%d" />
<input type="hidden" name="__VIEWSTATEGENERATOR" value="graph-vsg" />
<input type="hidden" name="__EVENTVALIDATION" value="graph-ev-%d" />
<input type="hidden" name="__EVENTTARGET" value="" />
<input type="hidden" name="__EVENTARGUMENT" value="" />
<input type="submit" name="prevMonth_btn" value="Prev Month" />
%s
</form></body></html>`,
		m.month, m.year,
		strings.Join(quoted, ", "), strings.Join(data, ", "),
		p.idx, p.idx, nextBtn)
}

const loginFormHTML = `<html><body>
<form method="post" action="login.aspx">
<input type="hidden" name="__VIEWSTATE" value="login-vs" />
<input type="hidden" name="__VIEWSTATEGENERATOR" value="login-vsg" />
<input type="hidden" name="__EVENTVALIDATION" value="login-ev" />
<input type="text" name="username_txt" />
<input type="password" name="password_txt" />
<input type="submit" name="login_btn" value="Login" />
</form></body></html>`

// threeMonths is a newest-first history ending in January
func threeMonths() []fakeMonth {
	return []fakeMonth{
		{month: "March", year: 2024, dates: []string{"01/Mar", "02/Mar"}, values: []float64{12.5, 8.0}},
		{month: "February", year: 2024, dates: []string{"01/Feb", "02/Feb"}, values: []float64{10.0, 11.0}},
		{month: "January", year: 2024, dates: []string{"01/Jan", "02/Jan"}, values: []float64{9.5, 7.25}},
	}
}
