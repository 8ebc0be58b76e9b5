package prompt_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shpitdev/fdi-ranker/internal/prompt"
	"github.com/shpitdev/fdi-ranker/pkg/pipeline/core"
)

func TestDefault_RendersRecordFields(t *testing.T) {
	rec := core.NewRecord(
		[]string{"Nr", "Firm name", "Country", "Company Summary", "Company Financing Status"},
		[]string{"1", "Acme Hydrogen", "Norway", "Builds fuel cells for ferries.", "VC-backed"},
	)

	out, err := prompt.Default().Build(rec)
	require.NoError(t, err)

	assert.Contains(t, out, "Firm Name: Acme Hydrogen")
	assert.Contains(t, out, "Country: Norway")
	assert.Contains(t, out, "Company Summary: Builds fuel cells for ferries.")
	assert.Contains(t, out, "Company Financing Status: VC-backed")
	assert.Contains(t, out, "| Firm Name | Score  | Score Explanation |")
	assert.NotContains(t, out, "{{")
}

func TestDefault_MissingColumnsRenderEmpty(t *testing.T) {
	out, err := prompt.Default().Build(core.NewRecord([]string{"Firm name"}, []string{"Solo"}))
	require.NoError(t, err)
	assert.Contains(t, out, "Headquarters City: \n")
	assert.Contains(t, out, "Revenue: \n")
}

func TestNew_UnknownFieldFailsAtRender(t *testing.T) {
	b, err := prompt.New("Hello {{.Nope}}")
	require.NoError(t, err)

	_, err = b.Build(core.NewRecord(nil, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render prompt")
}

func TestNew_InvalidTemplate(t *testing.T) {
	_, err := prompt.New("{{.FirmName")
	require.Error(t, err)
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("Rank {{.FirmName}} from {{.HQCity}}"), 0o644))

	b, err := prompt.FromFile(path)
	require.NoError(t, err)

	out, err := b.Build(core.NewRecord([]string{"Firm name", "HQ City"}, []string{"Acme", "Oslo"}))
	require.NoError(t, err)
	assert.Equal(t, "Rank Acme from Oslo", out)

	def, err := prompt.FromFile("")
	require.NoError(t, err)
	out, err = def.Build(core.NewRecord(nil, nil))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "SYSTEM ROLE:"))

	_, err = prompt.FromFile(filepath.Join(t.TempDir(), "missing.tmpl"))
	require.Error(t, err)
}
