package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/ssio/internal/depgraph"
)

func TestNewAssignsID(t *testing.T) {
	r := New(Inputs{ProjectRoot: "/p"})
	_, err := uuid.Parse(r.ID)
	require.NoError(t, err)
	assert.NotEqual(t, r.ID, New(Inputs{}).ID)
}

func TestOutcome(t *testing.T) {
	r := New(Inputs{})
	r.Finish()
	assert.Equal(t, OutcomeSuccess, r.Outcome)

	r = New(Inputs{})
	r.AddDiagnostics([]depgraph.Diagnostic{{Severity: depgraph.SeverityWarning, Source: "/a.html", Message: "x"}})
	r.Finish()
	assert.Equal(t, OutcomeWarning, r.Outcome)

	r = New(Inputs{})
	r.AddError(errors.New("boom"))
	r.AddError(nil)
	r.Finish()
	assert.Equal(t, OutcomeFailed, r.Outcome)
	assert.Equal(t, []string{"boom"}, r.Errors)
}

func TestHashIgnoresOrder(t *testing.T) {
	a := New(Inputs{ProjectRoot: "/p", Pages: []string{"a.html", "b.html"}})
	b := New(Inputs{ProjectRoot: "/p", Pages: []string{"b.html", "a.html"}})
	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, ha, hb)

	c := New(Inputs{ProjectRoot: "/q", Pages: []string{"a.html", "b.html"}})
	hc, err := c.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)
}

func TestStageTiming(t *testing.T) {
	r := New(Inputs{})
	r.BeginStage(StagePreprocess)
	r.EndStage(StagePreprocess)
	_, ok := r.StageDurations[StagePreprocess]
	assert.True(t, ok)
	assert.Zero(t, r.EndStage(StageLink), "ending a stage that never began records nothing")
}

func TestPersistAndLoad(t *testing.T) {
	r := New(Inputs{ProjectRoot: "/p", Pages: []string{"index.html"}})
	r.Pages.Total = 1
	r.Pages.Written = 1
	r.Finish()

	path := filepath.Join(t.TempDir(), "reports", "build.json")
	require.NoError(t, r.Persist(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	loaded, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, r.ID, loaded.ID)
	assert.Equal(t, r.Pages, loaded.Pages)
	assert.Equal(t, OutcomeSuccess, loaded.Outcome)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestSummary(t *testing.T) {
	r := New(Inputs{})
	r.Pages = PageCounts{Total: 3, Written: 2, Unchanged: 1}
	r.Finish()
	s := r.Summary()
	assert.True(t, strings.HasPrefix(s, "pages=3 written=2 unchanged=1 failed=0"), s)
	assert.Contains(t, s, "outcome=success")
}
