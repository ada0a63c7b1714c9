// Package dataset loads the company input table from CSV and prepares the
// normalized text fields the embedding stage consumes.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/marketscope/marketscope/internal"
	"github.com/marketscope/marketscope/pkg/models"
	"github.com/marketscope/marketscope/pkg/textnorm"
)

var log = internal.GetLogger()

var requiredColumns = []string{
	"company_name",
	"main_product",
	"main_customers",
	"category_list",
}

const descriptionColumn = "description"

// LoadResult is the filtered company table plus row accounting for the run
// metadata.
type LoadResult struct {
	Companies   []models.Company
	RowsTotal   int
	RowsKept    int
	RowsDropped int
}

// Load reads the CSV at path. The header row is required and must contain
// every required column; extra columns are ignored. Rows whose normalized
// product or customer text is empty are dropped and counted. An empty result
// after filtering is an input error.
func Load(path string) (*LoadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, models.NewInputError(fmt.Sprintf("failed to open input file %s", path), err)
	}
	defer file.Close()

	result, err := parse(file)
	if err != nil {
		return nil, err
	}

	log.Infof(
		"Loaded %d companies from %s (%d rows read, %d dropped)",
		result.RowsKept,
		path,
		result.RowsTotal,
		result.RowsDropped,
	)

	return result, nil
}

func parse(r io.Reader) (*LoadResult, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, models.NewInputError("input file is empty", nil)
	}
	if err != nil {
		return nil, models.NewInputError("failed to read input header", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if _, ok := columns[name]; !ok {
			columns[name] = i
		}
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, models.NewInputError(
			fmt.Sprintf("input file is missing required columns: %s", strings.Join(missing, ", ")),
			nil,
		)
	}

	descriptionIdx, hasDescription := columns[descriptionColumn]

	result := &LoadResult{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, models.NewInputError("failed to parse input file", err)
		}
		result.RowsTotal++

		company := models.Company{
			Name:       strings.TrimSpace(record[columns["company_name"]]),
			Product:    record[columns["main_product"]],
			Customers:  record[columns["main_customers"]],
			Categories: record[columns["category_list"]],
		}
		if hasDescription {
			company.Description = record[descriptionIdx]
		}

		company.NormalizedProduct = textnorm.Normalize(company.Product)
		company.NormalizedCustomers = textnorm.Normalize(company.Customers)
		if company.NormalizedProduct == "" || company.NormalizedCustomers == "" {
			result.RowsDropped++
			log.Debugf("Dropping row %d (%q): empty product or customer text", result.RowsTotal, company.Name)
			continue
		}

		company.CategoryList = textnorm.ParseCategories(company.Categories)
		result.Companies = append(result.Companies, company)
		result.RowsKept++
	}

	if result.RowsKept == 0 {
		return nil, models.NewInputError(
			fmt.Sprintf("no usable rows in input (%d read, %d dropped)", result.RowsTotal, result.RowsDropped),
			nil,
		)
	}

	return result, nil
}
