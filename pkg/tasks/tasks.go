// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

// IngestTask represents the data structure for a document ingestion job.
// Path 指向本地种子目录中的待导入文件。
type IngestTask struct {
	FileMD5  string `json:"file_md5"`
	FileName string `json:"file_name"`
	Path     string `json:"path"`
}
