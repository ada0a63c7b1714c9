package testutils

import "github.com/marketscope/marketscope/pkg/models"

// TestCompanies is a three-company corpus with one clear competitor pair:
// HomeGuard and SafeNest sell the same product to similar buyers, while
// WeldPro is unrelated. Their categories are pairwise disjoint, so the pair
// can only connect through text similarity.
var TestCompanies = []models.Company{
	{
		Name:        "HomeGuard Vision Inc.",
		Product:     "Smart home security cameras",
		Customers:   "Residential homeowners",
		Categories:  "Consumer Electronics",
		Description: "Connected cameras with mobile alerts",
	},
	{
		Name:       "WeldPro Robotics LLC",
		Product:    "Industrial welding robots",
		Customers:  "Automotive manufacturers",
		Categories: "Industrial Automation",
	},
	{
		Name:       "SafeNest Systems Ltd",
		Product:    "Smart home security cameras",
		Customers:  "Tech-Savvy Homeowners Inc.",
		Categories: "Smart Home",
	},
}

// TestCompaniesCSV is TestCompanies in input file form.
const TestCompaniesCSV = `company_name,main_product,main_customers,category_list,description
HomeGuard Vision Inc.,Smart home security cameras,Residential homeowners,Consumer Electronics,Connected cameras with mobile alerts
WeldPro Robotics LLC,Industrial welding robots,Automotive manufacturers,Industrial Automation,
SafeNest Systems Ltd,Smart home security cameras,Tech-Savvy Homeowners Inc.,Smart Home,
`

// StubVectors maps the corpus's normalized texts to embedding vectors. The
// two camera makers share a product vector and a customer vector, so their
// combined embeddings are identical; the robot maker is orthogonal to both.
var StubVectors = map[string][]float32{
	"smart home security cameras": {1, 0, 0, 0},
	"industrial welding robots":   {0, 1, 0, 0},
	"residential homeowners":      {0, 0, 1, 0},
	"tech-savvy homeowners":       {0, 0, 1, 0},
	"automotive manufacturers":    {0, 0, 0, 1},
}
