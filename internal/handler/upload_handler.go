package handler

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	coverUploadDir = "wawasan/covers"
	heroUploadDir  = "newsletter/messages"
)

// UploadImage 处理图片上传请求。kind=cover 存入文章封面目录，
// kind=hero 存入邮件头图目录。
func (a *API) UploadImage(c *gin.Context) {
	// 获取上传的文件
	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "image file is required")
		return
	}

	// 检查文件类型
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(c, http.StatusBadRequest, "only image uploads are allowed")
		return
	}

	subdir := coverUploadDir
	switch c.DefaultQuery("kind", "cover") {
	case "cover":
	case "hero":
		subdir = heroUploadDir
	default:
		respondError(c, http.StatusBadRequest, "kind must be cover or hero")
		return
	}

	// 创建上传目录
	uploadDir := filepath.Join(a.mediaRoot, filepath.FromSlash(subdir))
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to create upload directory")
		return
	}

	// 生成唯一文件名
	ext := filepath.Ext(file.Filename)
	newFilename := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)

	// 保存文件
	if err := c.SaveUploadedFile(file, filepath.Join(uploadDir, newFilename)); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save file")
		return
	}

	// 返回库内相对路径与可访问 URL
	rel := path.Join(subdir, newFilename)
	c.JSON(http.StatusOK, gin.H{
		"path": rel,
		"url":  a.mediaURL(c, rel),
	})
}
