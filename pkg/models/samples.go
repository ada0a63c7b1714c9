package models

// SampleCompany carries the display fields a reviewer needs to judge
// whether a company fits its assigned cluster.
type SampleCompany struct {
	Name        string `json:"company_name"`
	Product     string `json:"main_product"`
	Customers   string `json:"main_customers"`
	Categories  string `json:"category_list"`
	Description string `json:"description,omitempty"`
}

// ValidationSample is one sampled cluster with up to ten member companies,
// produced for manual or LLM-assisted review.
type ValidationSample struct {
	ClusterID   int             `json:"cluster_id"`
	ClusterSize int             `json:"cluster_size"`
	Companies   []SampleCompany `json:"companies"`
}
