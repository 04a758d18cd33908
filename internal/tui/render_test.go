package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderHTMLNumbersLinks(t *testing.T) {
	fragment := `<h2>Held</h2><p>Following <a href="https://indiankanoon.org/doc/7/">Smith v Jones</a>, the appeal fails.</p>` +
		`<p>See also <a href="mailto:clerk@court.test">the clerk</a> and <a href="#fn1">note 1</a>.</p>` +
		`<script>alert(1)</script>`

	r := RenderHTML(fragment, 0)

	assert.Equal(t, []string{"https://indiankanoon.org/doc/7/", "mailto:clerk@court.test"}, r.Links)
	assert.Contains(t, r.Text, "Smith v Jones[1], the appeal fails.")
	assert.Contains(t, r.Text, "the clerk[2]")
	assert.NotContains(t, r.Text, "alert")
	assert.True(t, strings.HasPrefix(r.Text, "Held\n\nFollowing"), r.Text)
}

func TestRenderHTMLWraps(t *testing.T) {
	r := RenderHTML("<p>"+strings.Repeat("word ", 40)+"</p>", 20)
	for _, line := range strings.Split(r.Text, "\n") {
		assert.LessOrEqual(t, len(line), 20)
	}
	assert.Empty(t, r.Links)
}

func TestRenderHTMLCollapsesWhitespace(t *testing.T) {
	r := RenderHTML("<div>  one\n\n   two </div><div>three</div>", 0)
	assert.Equal(t, "one two\n\nthree", r.Text)
}
