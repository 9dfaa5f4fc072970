package dto

// IDParam ID参数
type IDParam struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// TokenParam 跟踪令牌参数
type TokenParam struct {
	Token string `uri:"token" binding:"required"`
}

// DeleteResponse 删除结果
type DeleteResponse struct {
	Success bool `json:"success"`
}
