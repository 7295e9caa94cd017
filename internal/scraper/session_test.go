package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFormTokens(t *testing.T) {
	tokens := ExtractFormTokens(loginFormHTML)

	assert.Equal(t, "login-vs", tokens["__VIEWSTATE"])
	assert.Equal(t, "login-vsg", tokens["__VIEWSTATEGENERATOR"])
	assert.Equal(t, "login-ev", tokens["__EVENTVALIDATION"])
	_, ok := tokens["__EVENTTARGET"]
	assert.False(t, ok, "login form carries no event target field")
}

func TestExtractFormTokensEmptyValues(t *testing.T) {
	html := `<form>
	<input type="hidden" name="__EVENTTARGET" value="" />
	<input type="hidden" name="__VIEWSTATE" value="abc123" />
	</form>`

	tokens := ExtractFormTokens(html)

	assert.Equal(t, "abc123", tokens["__VIEWSTATE"])
	val, ok := tokens["__EVENTTARGET"]
	assert.True(t, ok, "present-but-empty fields are still extracted")
	assert.Empty(t, val)
}

func TestLoginSuccess(t *testing.T) {
	portal := newFakePortal(threeMonths())
	ts := portal.server()
	defer ts.Close()

	session, err := NewSession(ts.URL, portal.username, portal.password)
	require.NoError(t, err)

	ok, err := session.Login(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	key, found := session.CurrentMonth()
	require.True(t, found)
	assert.Equal(t, "March", key.Month)
	assert.Equal(t, 2024, key.Year)
}

func TestLoginRejected(t *testing.T) {
	portal := newFakePortal(threeMonths())
	ts := portal.server()
	defer ts.Close()

	session, err := NewSession(ts.URL, portal.username, "wrong-password")
	require.NoError(t, err)

	ok, err := session.Login(context.Background())
	require.NoError(t, err, "a rejected login is not a transport error")
	assert.False(t, ok)
}

func TestLoginTransportError(t *testing.T) {
	portal := newFakePortal(threeMonths())
	ts := portal.server()
	ts.Close()

	session, err := NewSession(ts.URL, portal.username, portal.password)
	require.NoError(t, err)

	_, err = session.Login(context.Background())
	assert.Error(t, err)
}

// A session whose last visit ended on an old month lands there again after
// login; forward alignment walks it back to the most recent month.
func TestLoginForwardAligns(t *testing.T) {
	portal := newFakePortal(threeMonths())
	portal.idx = 2
	ts := portal.server()
	defer ts.Close()

	session, err := NewSession(ts.URL, portal.username, portal.password)
	require.NoError(t, err)

	ok, err := session.Login(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	key, found := session.CurrentMonth()
	require.True(t, found)
	assert.Equal(t, "March", key.Month)
}
