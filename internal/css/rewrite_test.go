package css

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prefix(ref string) string { return "../" + ref }

func TestRewriteURLForms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"unquoted", "body{background:url(img/bg.png)}", "body{background:url(../img/bg.png)}"},
		{"double quoted", `a{b:url("x.png")}`, `a{b:url("../x.png")}`},
		{"single quoted", `a{b:url('x.png')}`, `a{b:url('../x.png')}`},
		{"padded", "a{b:url( x.png )}", "a{b:url( ../x.png )}"},
		{"import string", `@import "base.css";`, `@import "../base.css";`},
		{"import url", `@import url(base.css);`, `@import url(../base.css);`},
		{"other strings untouched", `a::before{content:"x.png"}`, `a::before{content:"x.png"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Rewrite(tc.in, prefix)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRewritePreservesUntouchedText(t *testing.T) {
	src := "/* header */\n.a > .b { color: #fff; margin: 0 1px }\n@media (max-width: 10em) { .c { display: none } }\n"
	got, err := Rewrite(src, func(ref string) string { return ref })
	require.NoError(t, err)
	assert.Equal(t, src, got)
}

func TestRewriteVisitsInOrder(t *testing.T) {
	var refs []string
	_, err := Rewrite(`@import "a.css"; .x{background:url(b.png)} .y{mask:url('c.svg#m')}`, func(ref string) string {
		refs = append(refs, ref)
		return ref
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.css", "b.png", "c.svg#m"}, refs)
}

func TestRewriteEscapesQuotes(t *testing.T) {
	got, err := Rewrite(`a{b:url("x.png")}`, func(string) string { return `we"ird.png` })
	require.NoError(t, err)
	assert.True(t, strings.Contains(got, `url("we\"ird.png")`), got)
}
