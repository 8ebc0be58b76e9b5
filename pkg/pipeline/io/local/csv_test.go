package local_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shpitdev/fdi-ranker/pkg/pipeline/io/local"
)

func TestReadTable(t *testing.T) {
	t.Run("preserves column order", func(t *testing.T) {
		in := "Nr,Firm name,Country\n1,Acme,NL\n2,Beta,DE\n"
		got, err := local.ReadTable(strings.NewReader(in))
		require.NoError(t, err)
		assert.Equal(t, []string{"Nr", "Firm name", "Country"}, got.Header)
		require.Len(t, got.Records, 2)
		assert.Equal(t, []string{"Nr", "Firm name", "Country"}, got.Records[1].Keys())
		assert.Equal(t, "Beta", got.Records[1].Get("Firm name"))
	})

	t.Run("strips utf-8 bom", func(t *testing.T) {
		in := "\ufeffNr,Firm name\n1,Acme\n"
		got, err := local.ReadTable(strings.NewReader(in))
		require.NoError(t, err)
		assert.Equal(t, "Nr", got.Header[0])
		assert.Equal(t, "1", got.Records[0].Get("Nr"))
	})

	t.Run("short rows are padded", func(t *testing.T) {
		got, err := local.ReadTable(strings.NewReader("a,b,c\n1\n"))
		require.NoError(t, err)
		v, ok := got.Records[0].Lookup("c")
		assert.True(t, ok)
		assert.Equal(t, "", v)
	})

	t.Run("fields past the header are dropped", func(t *testing.T) {
		in := "Nr,Firm name,Country\n1,Acme,NL\n2,Beta,DE,\n3,Gamma,BE\n"
		got, err := local.ReadTable(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, got.Records, 3)
		assert.Equal(t, []string{"Nr", "Firm name", "Country"}, got.Records[1].Keys())
		assert.Equal(t, "DE", got.Records[1].Get("Country"))
		assert.Equal(t, "Gamma", got.Records[2].Get("Firm name"))
		assert.Equal(t, []local.Overflow{{Line: 3, Extra: []string{""}, Record: 1}}, got.Overflow)
	})

	t.Run("bad quoting is a format error", func(t *testing.T) {
		_, err := local.ReadTable(strings.NewReader("a,b\n\"1,2\n"))
		assert.ErrorIs(t, err, local.ErrFormat)
	})

	t.Run("empty input", func(t *testing.T) {
		got, err := local.ReadTable(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, got.Records)
	})

	t.Run("tiny input shorter than a bom", func(t *testing.T) {
		got, err := local.ReadTable(strings.NewReader("a\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, got.Header)
	})
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.csv")
	require.NoError(t, os.WriteFile(path, []byte("Nr,Firm name\n7,Acme\n"), 0o644))

	recs, err := local.FileSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "7", recs[0].Get("Nr"))

	_, err = local.FileSource{Path: filepath.Join(dir, "missing.csv")}.Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileSource_ReportsOverflow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte("Nr,Firm name\n1,Acme,x,y\n2,Beta\n"), 0o644))

	var seen []local.Overflow
	recs, err := local.FileSource{Path: path, OnOverflow: func(o local.Overflow) {
		seen = append(seen, o)
	}}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Acme", recs[0].Get("Firm name"))
	assert.Equal(t, 2, recs[0].Len())
	assert.Equal(t, []local.Overflow{{Line: 2, Extra: []string{"x", "y"}, Record: 0}}, seen)
}

func TestTableWriter(t *testing.T) {
	var buf bytes.Buffer
	tw, err := local.NewTableWriter(&buf, []string{"Nr", "Firm name", "Note"})
	require.NoError(t, err)

	require.NoError(t, tw.WriteRow(map[string]string{"Firm name": "Acme, Inc.", "Nr": "1", "Ignored": "x"}))
	require.NoError(t, tw.Flush())

	assert.Equal(t, "Nr,Firm name,Note\n1,\"Acme, Inc.\",\n", buf.String())
	assert.Equal(t, []string{"Nr", "Firm name", "Note"}, tw.Header())
}

func TestHasColumn(t *testing.T) {
	assert.True(t, local.HasColumn([]string{" firm NAME "}, "Firm name"))
	assert.False(t, local.HasColumn([]string{"Nr"}, "Firm name"))
}
