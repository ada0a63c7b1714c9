package models

// Company is one row of the input table. Raw fields are immutable input;
// the normalized fields are derived by the dataset loader and are what the
// embedding stage consumes.
type Company struct {
	Name        string `json:"company_name"`
	Product     string `json:"main_product"`
	Customers   string `json:"main_customers"`
	Categories  string `json:"category_list"`
	Description string `json:"description,omitempty"`

	NormalizedProduct   string   `json:"-"`
	NormalizedCustomers string   `json:"-"`
	CategoryList        []string `json:"-"`
}
