package source

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadVerticalCSV(t *testing.T) {
	sheet := `label,value
identifier, MOF001
reference_data.year,2019
structural_data.cif_data,
identifier,MOF999
,orphan
`
	row, err := ReadVerticalCSV(strings.NewReader(sheet))
	require.NoError(t, err)
	assert.Equal(t, 3, row.Len())

	v, _, ok := row.Lookup("identifier")
	require.True(t, ok)
	assert.Equal(t, "MOF001", v, "first occurrence wins and cells are trimmed")

	v, _, ok = row.Lookup("structural_data.cif_data")
	require.True(t, ok)
	assert.Nil(t, v, "blank cell is null")

	_, missing, ok := row.Lookup("reference_data.doi")
	assert.False(t, ok)
	assert.Equal(t, "reference_data.doi", missing)
}

func TestReadVerticalCSV_Empty(t *testing.T) {
	_, err := ReadVerticalCSV(strings.NewReader("label,value\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedDocument))
}

func TestLoad(t *testing.T) {
	doc, err := Load("x.mofarch.json", []byte(`{"identifier": "MOF001"}`))
	require.NoError(t, err)
	v, _, ok := doc.Lookup("identifier")
	require.True(t, ok)
	assert.Equal(t, "MOF001", v)

	doc, err = Load("x.mofarch.csv", []byte("identifier,MOF002\n"))
	require.NoError(t, err)
	v, _, ok = doc.Lookup("identifier")
	require.True(t, ok)
	assert.Equal(t, "MOF002", v)
}

func TestLoad_MalformedCarriesPath(t *testing.T) {
	_, err := Load("bad.mofarch.json", []byte(`{`))
	require.Error(t, err)

	var me *MalformedError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "bad.mofarch.json", me.Path)
	assert.True(t, errors.Is(err, ErrMalformedDocument))
	assert.Contains(t, err.Error(), "bad.mofarch.json")

	_, err = Load("notes.txt", []byte("hello"))
	assert.True(t, errors.Is(err, ErrMalformedDocument))
}
