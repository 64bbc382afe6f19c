package model

// 置信度标签，由最优命中距离推导。
const (
	ConfidenceNone   = "none"
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
	ConfidenceError  = "error"
)

// SourceRef 描述答案引用的出处：文件、页码与摘要片段。
type SourceRef struct {
	File    string `json:"file"`
	Page    string `json:"page"`
	Snippet string `json:"snippet"`
}

// QueryResult 是 /query 的响应结构。
// 不变式：RelevantDocuments ≤ DocumentsSearched；
// Confidence 为 none 当且仅当 DocumentsSearched 为 0。
type QueryResult struct {
	Answer            string      `json:"answer"`
	Sources           []SourceRef `json:"sources"`
	Confidence        string      `json:"confidence"`
	DocumentsSearched int         `json:"documents_searched"`
	RelevantDocuments *int        `json:"relevant_documents,omitempty"`
}

// SearchResultDTO 是 /search 单条命中的响应结构。
// RelevanceScore = 1 - distance，可为负值，不做截断。
type SearchResultDTO struct {
	Content        string                 `json:"content"`
	Metadata       map[string]interface{} `json:"metadata"`
	RelevanceScore float64                `json:"relevance_score"`
	SourceFile     string                 `json:"source_file"`
	Page           string                 `json:"page"`
}

// ChunkDTO 是 /documents/:filename 返回的单个分块结构。
type ChunkDTO struct {
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
	Page     string                 `json:"page"`
}

// UploadResult 是 /upload 的响应结构。
type UploadResult struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	Filename      string   `json:"filename"`
	ChunksCreated int      `json:"chunks_created"`
	DocumentIDs   []string `json:"document_ids"`
}

// CollectionStats 是 /stats 的响应结构。
type CollectionStats struct {
	CollectionName   string `json:"collection_name"`
	DocumentCount    int    `json:"document_count"`
	PersistDirectory string `json:"persist_directory"`
}

// HealthStatus 是 /health 的响应结构。
type HealthStatus struct {
	Status            string `json:"status"`
	Version           string `json:"version"`
	VectorstoreStatus string `json:"vectorstore_status"`
}
