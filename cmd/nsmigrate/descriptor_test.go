package main

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/nsmigrate"
)

func TestRewriteDescriptor(t *testing.T) {
	t.Parallel()

	in := []byte(`<module name="javax.json.bind.api"><dependencies><module name="javax.json.api"/></dependencies></module>`)
	res, err := rewriteDescriptor(in, nsmigrate.DefaultModuleMapping())
	require.NoError(t, err)

	assert.Equal(t,
		`<module name="jakarta.json.bind.api"><dependencies><module name="jakarta.json.api"/></dependencies></module>`,
		string(res.Data))
	assert.Equal(t, "jakarta.json.bind.api", res.Name)
}

func TestRewriteDescriptor_UnmappedName(t *testing.T) {
	t.Parallel()

	in := []byte(`<module name="org.acme"><dependencies><module name="javax.json.api"/></dependencies></module>`)
	res, err := rewriteDescriptor(in, nsmigrate.DefaultModuleMapping())
	require.NoError(t, err)
	assert.Equal(t, "org.acme", res.Name)
	assert.Equal(t, map[string]string{"javax.json.api": "jakarta.json.api"}, res.Dependencies)
}

var (
	deletions  = regexp.MustCompile(`\[-(.*?)-\]`)
	insertions = regexp.MustCompile(`\{\+(.*?)\+\}`)
)

func TestRenderDiff_Plain(t *testing.T) {
	t.Parallel()

	from := `<module name="javax.a"/>`
	to := `<module name="jakarta.a"/>`
	got := renderDiff(from, to, false)

	assert.Contains(t, got, "[-")
	assert.Contains(t, got, "{+")
	assert.False(t, strings.Contains(got, "[-<"), "markup stays outside the edits")
	assert.Equal(t, to, insertions.ReplaceAllString(deletions.ReplaceAllString(got, ""), "$1"))
	assert.Equal(t, from, deletions.ReplaceAllString(insertions.ReplaceAllString(got, ""), "$1"))

	assert.Equal(t, "same", renderDiff("same", "same", false))
}

func TestStatus_NoColorForBuffers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	st := newStatus(&buf)
	st.print(true, "%s", "a.jar")
	st.print(false, "%s", "b.jar")
	assert.Equal(t, "rewritten a.jar\nunchanged b.jar\n", buf.String())
}

func TestMainConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := &MainConfig{}
	m, err := cfg.packageMapping()
	require.NoError(t, err)
	assert.Equal(t, nsmigrate.DefaultMapping(), m)
	assert.Equal(t, 0, cfg.workers(0))
	assert.Equal(t, 3, cfg.workers(3))

	tr, err := cfg.transformer()
	require.NoError(t, err)
	assert.NotNil(t, tr)
}
