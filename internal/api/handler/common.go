package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"project-tracker/internal/adapter/storage"
	"project-tracker/pkg/errors"
	"project-tracker/pkg/utils"
)

// UploadLimits 上传限制
type UploadLimits struct {
	MaxImages   int
	MaxFileSize int64 // 字节, 0 表示不限制
}

// bindID 解析路径中的正整数 ID
func bindID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		utils.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", "无效的"+name)
		return 0, false
	}
	return id, true
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// formFiles 取出 multipart 中的文件, 并校验数量与大小
func formFiles(c *gin.Context, field string, limits UploadLimits) ([]storage.Upload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, errors.Wrap(errors.CodeBadRequest, "解析上传表单失败", err).WithReason(errors.ReasonValidation)
	}
	headers := form.File[field]
	if limits.MaxImages > 0 && len(headers) > limits.MaxImages {
		return nil, errors.New(errors.CodeBadRequest, "最多上传 "+strconv.Itoa(limits.MaxImages)+" 张图片").WithReason(errors.ReasonValidation)
	}
	uploads := make([]storage.Upload, 0, len(headers))
	for _, fh := range headers {
		if err := checkSize(fh, limits); err != nil {
			return nil, err
		}
		uploads = append(uploads, storage.FileHeaderUpload(fh))
	}
	return uploads, nil
}

// formFile 取出单个可选文件
func formFile(c *gin.Context, field string, limits UploadLimits) (*storage.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, errors.Wrap(errors.CodeBadRequest, "读取上传文件失败", err).WithReason(errors.ReasonValidation)
	}
	if err := checkSize(fh, limits); err != nil {
		return nil, err
	}
	u := storage.FileHeaderUpload(fh)
	return &u, nil
}

func checkSize(fh *multipart.FileHeader, limits UploadLimits) error {
	if limits.MaxFileSize > 0 && fh.Size > limits.MaxFileSize {
		return errors.New(errors.CodeBadRequest, "文件过大: "+fh.Filename).WithReason(errors.ReasonValidation)
	}
	return nil
}
