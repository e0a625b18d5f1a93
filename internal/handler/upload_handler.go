package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/michojekunle/BitGive/internal/ipfs"
)

type UploadHandler struct {
	client *ipfs.Client
}

func NewUploadHandler(client *ipfs.Client) *UploadHandler {
	return &UploadHandler{client: client}
}

// UploadImage 上传活动图片，返回不透明URI
func (h *UploadHandler) UploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "缺少上传文件")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "读取上传文件失败")
		return
	}

	uri, err := h.client.Store(data, header.Filename)
	if err != nil {
		ErrorResponse(c, http.StatusBadGateway, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "上传成功", gin.H{"uri": uri})
}

// UploadMetadata 上传NFT元数据JSON，返回不透明URI
func (h *UploadHandler) UploadMetadata(c *gin.Context) {
	var metadata map[string]interface{}
	if err := c.ShouldBindJSON(&metadata); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	name, _ := metadata["name"].(string)
	if name == "" {
		name = "metadata.json"
	}

	uri, err := h.client.StoreJSON(metadata, name)
	if err != nil {
		ErrorResponse(c, http.StatusBadGateway, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "上传成功", gin.H{"uri": uri})
}
