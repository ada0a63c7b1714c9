package artifacts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/marketscope/marketscope/pkg/models"
)

var clusteredHeader = []string{
	"company_name",
	"main_product",
	"main_customers",
	"category_list",
	"description",
	"cluster_id",
}

// writeClusteredCompanies writes the input table back out with each row's
// assigned cluster. The description column is always present; rows without
// one get an empty cell.
func (s *Store) writeClusteredCompanies(companies []models.Company, labels []int) error {
	if len(companies) != len(labels) {
		return fmt.Errorf(
			"company and label counts differ: %d vs %d",
			len(companies),
			len(labels),
		)
	}

	path := s.path(ClusteredCompaniesFile)
	err := writeAtomic(path, func(w io.Writer) error {
		writer := csv.NewWriter(w)
		if err := writer.Write(clusteredHeader); err != nil {
			return err
		}
		for i, company := range companies {
			record := []string{
				company.Name,
				company.Product,
				company.Customers,
				company.Categories,
				company.Description,
				strconv.Itoa(labels[i]),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
		writer.Flush()
		return writer.Error()
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", ClusteredCompaniesFile, err)
	}

	log.Debugf("Wrote %d clustered companies to %s", len(companies), path)

	return nil
}
