package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
)

// segment is a synthetic industry niche. Companies generated from the same
// segment share product vocabulary and categories, so a pipeline run over
// fixture data has real cluster structure to find.
type segment struct {
	products   []string
	customers  []string
	categories string
}

var fixtureSegments = []segment{
	{
		products:   []string{"cloud data warehouse", "analytics dashboard suite", "data pipeline orchestration"},
		customers:  []string{"enterprise analytics teams", "business intelligence departments"},
		categories: "Software, Analytics, Cloud",
	},
	{
		products:   []string{"mobile payment processing", "merchant checkout platform", "fraud screening for card payments"},
		customers:  []string{"online retailers", "small merchants"},
		categories: "Fintech, Payments",
	},
	{
		products:   []string{"fleet telematics platform", "route optimization software", "cold chain monitoring"},
		customers:  []string{"logistics operators", "trucking fleets"},
		categories: "Transportation, Logistics, IoT",
	},
	{
		products:   []string{"electronic health records", "patient scheduling system", "clinical trial data capture"},
		customers:  []string{"hospitals and clinics", "private practices"},
		categories: "Healthcare, Software",
	},
	{
		products:   []string{"storefront builder", "inventory sync for marketplaces", "subscription commerce platform"},
		customers:  []string{"independent online stores", "direct to consumer brands"},
		categories: "E-Commerce, Retail",
	},
	{
		products:   []string{"endpoint threat detection", "security event monitoring", "phishing simulation training"},
		customers:  []string{"corporate security teams", "managed service providers"},
		categories: "Security, Software",
	},
	{
		products:   []string{"soil moisture sensors", "crop yield forecasting", "irrigation automation"},
		customers:  []string{"commercial farms", "agronomy consultants"},
		categories: "Agriculture, IoT",
	},
	{
		products:   []string{"continuous integration service", "error tracking for web apps", "feature flag management"},
		customers:  []string{"software engineering teams", "platform teams"},
		categories: "Software, Developer Tools",
	},
}

var fixtureSuffixes = []string{" Inc.", " LLC", " Ltd", " Corp", ""}

// GenerateFixtureData writes a synthetic company table to
// <outputDir>/companies.csv. Generation is seeded, so repeated runs produce
// the same file.
func GenerateFixtureData(fixtureCount int, outputDir string) error {
	fakerGlobal := gofakeit.NewUnlocked(0)
	gofakeit.SetGlobalFaker(fakerGlobal)

	if outputDir == "" {
		outputDir = "./"
	} else if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("unable to create %s: %w", outputDir, err)
		}
	}

	path := filepath.Join(outputDir, "companies.csv")
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{"company_name", "main_product", "main_customers", "category_list", "description"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for i := 0; i < fixtureCount; i++ {
		seg := fixtureSegments[i%len(fixtureSegments)]
		name := gofakeit.Company() + fixtureSuffixes[gofakeit.Number(0, len(fixtureSuffixes)-1)]
		product := seg.products[gofakeit.Number(0, len(seg.products)-1)]
		customers := seg.customers[gofakeit.Number(0, len(seg.customers)-1)]
		description := fmt.Sprintf(
			"%s offering %s to %s",
			strings.TrimSpace(name),
			product,
			customers,
		)

		record := []string{name, product, customers, seg.categories, description}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	log.Infof("Wrote %d fixture companies to %s", fixtureCount, path)

	return nil
}
