package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "companies.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeCSV(t, `company_name,main_product,main_customers,category_list
Acme Analytics Inc.,Cloud Data Warehouse,Enterprise analytics teams,"Software, Analytics"
Café Renée Corp.,Specialty coffee roasting,Urban coffee shops,"Food & Beverage"
Globex Ltd,Fleet telematics,Logistics operators,"Transportation, IoT"
`)

	result, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, result.RowsTotal)
	assert.Equal(t, 3, result.RowsKept)
	assert.Zero(t, result.RowsDropped)
	require.Len(t, result.Companies, 3)

	first := result.Companies[0]
	assert.Equal(t, "Acme Analytics Inc.", first.Name)
	assert.Equal(t, "Cloud Data Warehouse", first.Product)
	assert.Equal(t, "cloud data warehouse", first.NormalizedProduct)
	assert.Equal(t, "enterprise analytics teams", first.NormalizedCustomers)
	assert.Equal(t, []string{"Software", "Analytics"}, first.CategoryList)

	second := result.Companies[1]
	assert.Equal(t, "specialty coffee roasting", second.NormalizedProduct)
	assert.Equal(t, []string{"Food & Beverage"}, second.CategoryList)
}

func TestLoadOptionalDescription(t *testing.T) {
	path := writeCSV(t, `company_name,main_product,main_customers,category_list,description
Acme,Widgets,Manufacturers,Hardware,Makes widgets for factories
`)

	result, err := Load(path)
	require.NoError(t, err)
	require.Len(t, result.Companies, 1)
	assert.Equal(t, "Makes widgets for factories", result.Companies[0].Description)
}

func TestLoadReordersAndIgnoresExtraColumns(t *testing.T) {
	path := writeCSV(t, `id,category_list,company_name,main_customers,main_product,region
1,Software,Acme,Developers,API platform,EU
`)

	result, err := Load(path)
	require.NoError(t, err)
	require.Len(t, result.Companies, 1)
	assert.Equal(t, "Acme", result.Companies[0].Name)
	assert.Equal(t, "api platform", result.Companies[0].NormalizedProduct)
	assert.Equal(t, []string{"Software"}, result.Companies[0].CategoryList)
}

func TestLoadHeaderByteOrderMark(t *testing.T) {
	path := writeCSV(t, "\ufeffcompany_name,main_product,main_customers,category_list\nAcme,Widgets,Factories,Hardware\n")

	result, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, result.Companies, 1)
}

func TestLoadMissingColumns(t *testing.T) {
	path := writeCSV(t, `company_name,main_product
Acme,Widgets
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
	assert.Contains(t, err.Error(), "main_customers")
	assert.Contains(t, err.Error(), "category_list")
}

func TestLoadDropsEmptyNormalizedRows(t *testing.T) {
	path := writeCSV(t, `company_name,main_product,main_customers,category_list
Keeper,Cloud backup,IT departments,Software
No Product,,IT departments,Software
No Customers,Cloud backup,,Software
Punct Only,"...",IT departments,Software
`)

	result, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, result.RowsTotal)
	assert.Equal(t, 1, result.RowsKept)
	assert.Equal(t, 3, result.RowsDropped)
	require.Len(t, result.Companies, 1)
	assert.Equal(t, "Keeper", result.Companies[0].Name)
}

func TestLoadAllRowsDropped(t *testing.T) {
	path := writeCSV(t, `company_name,main_product,main_customers,category_list
Empty,,,Software
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable rows")
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeCSV(t, "")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input file is empty")
}

func TestLoadRaggedRow(t *testing.T) {
	path := writeCSV(t, `company_name,main_product,main_customers,category_list
Acme,Widgets,Factories
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open")
}
