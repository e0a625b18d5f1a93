package ipfs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/michojekunle/BitGive/internal/config"
)

// Client 内容存储客户端。
// 上传后的URI对平台是不透明字符串，核心逻辑不解析其内容。
type Client struct {
	endpoint   string
	apiKey     string
	gateway    string
	httpClient *http.Client
}

// New 创建内容存储客户端
func New(cfg config.IPFSConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		gateway:  cfg.Gateway,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// pinResponse 上传服务响应
type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

// Store 上传文件内容，返回URI
func (c *Client) Store(data []byte, name string) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("创建上传表单失败: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("写入上传内容失败: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, c.endpoint, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.do(req)
}

// StoreJSON 上传JSON对象，返回URI
func (c *Client) StoreJSON(v interface{}, name string) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("序列化JSON失败: %w", err)
	}
	return c.Store(data, name)
}

// do 执行上传请求并解析返回的URI
func (c *Client) do(req *http.Request) (string, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("上传请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("上传服务返回错误 %d: %s", resp.StatusCode, string(payload))
	}

	var pin pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&pin); err != nil {
		return "", fmt.Errorf("解析上传响应失败: %w", err)
	}
	if pin.IpfsHash == "" {
		return "", fmt.Errorf("上传响应缺少内容哈希")
	}

	return c.gateway + pin.IpfsHash, nil
}
