// Package tika 提供了一个与 Apache Tika 服务器交互的客户端，
// 用于 DOCX 等复合格式的文本提取。
package tika

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"legal-nav-go/internal/config"
	"legal-nav-go/pkg/log"
)

// 大文档的提取可能较慢，超时设置比普通 API 调用宽松。
const extractTimeout = 60 * time.Second

// Client 是 Tika 服务器的客户端。
type Client struct {
	serverURL  string
	httpClient *http.Client
}

// NewClient 创建一个新的 Tika 客户端实例。
func NewClient(cfg config.TikaConfig) *Client {
	return &Client{
		serverURL:  cfg.ServerURL,
		httpClient: &http.Client{Timeout: extractTimeout},
	}
}

// ExtractText 将文件流发送给 Tika 并返回提取出的纯文本。
// MIME 类型根据文件扩展名推断。
func (c *Client) ExtractText(fileReader io.Reader, fileName string) (string, error) {
	req, err := http.NewRequest(http.MethodPut, c.serverURL+"/tika", fileReader)
	if err != nil {
		return "", fmt.Errorf("failed to create tika request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("Content-Type", detectMimeType(fileName))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call tika server: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read tika response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tika returned non-200 status [%d]: %s", resp.StatusCode, string(body))
	}

	log.Infof("[Tika] 文本提取完成, file: %s, 共 %d 字节", fileName, len(body))
	return string(body), nil
}

// detectMimeType 根据文件扩展名判断 Content-Type，未知扩展名退回二进制流。
func detectMimeType(fileName string) string {
	mimeType := mime.TypeByExtension(filepath.Ext(fileName))
	if mimeType == "" {
		return "application/octet-stream"
	}
	return mimeType
}
