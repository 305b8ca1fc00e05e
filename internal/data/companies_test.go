package data

import (
	"testing"

	"field-dash/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCompanies(t *testing.T) {
	list, err := LoadCompanies("testdata/companies.csv")
	require.NoError(t, err)
	require.Len(t, list.Companies, 3)

	assert.Equal(t, model.Company{Symbol: "AAPL", Name: "Apple Inc."}, list.Companies[0])
	assert.Equal(t, "Tesla, Inc.", list.Companies[2].Name, "names are trimmed")
}

func TestCompanyList_Options(t *testing.T) {
	list, err := LoadCompanies("testdata/companies.csv")
	require.NoError(t, err)

	all := list.Options("", 0)
	require.Len(t, all, 3)
	assert.Equal(t, model.Option{Label: "Apple Inc. AAPL", Value: "AAPL"}, all[0])

	micro := list.Options("micro", 0)
	require.Len(t, micro, 1)
	assert.Equal(t, "MSFT", micro[0].Value)

	assert.Len(t, list.Options("", 2), 2)
	assert.Empty(t, list.Options("zzz", 0))
}

func TestCompanyList_Lookup(t *testing.T) {
	list := NewCompanyList([]model.Company{{Symbol: "AAPL", Name: "Apple Inc."}})

	c, ok := list.Lookup(" aapl ")
	assert.True(t, ok)
	assert.Equal(t, "Apple Inc.", c.Name)

	_, ok = list.Lookup("GOOG")
	assert.False(t, ok)

	var nilList *CompanyList
	_, ok = nilList.Lookup("AAPL")
	assert.False(t, ok)
}

func TestLoadCompanies_MissingColumns(t *testing.T) {
	_, err := LoadCompanies("testdata/crops.csv")
	require.Error(t, err)
}
