package models

// RunMetrics summarizes clustering quality for one pipeline run.
type RunMetrics struct {
	SilhouetteScore     float64 `json:"silhouette_score"`
	NumClusters         int     `json:"num_clusters"`
	ClusterSizeMean     float64 `json:"cluster_size_mean"`
	ClusterSizeMin      int     `json:"cluster_size_min"`
	ClusterSizeMax      int     `json:"cluster_size_max"`
	GraphDensity        float64 `json:"graph_density"`
	IntraClusterDensity float64 `json:"intra_cluster_density"`
	Modularity          float64 `json:"modularity"`
	NumCompanies        int     `json:"num_companies"`
	NumEdges            int     `json:"num_edges"`
}
