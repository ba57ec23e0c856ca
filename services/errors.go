package services

import (
	"errors"

	"keyword_bot/config"
)

var (
	// ErrSourceUnavailable 外部来源不可达或返回非成功状态
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrMalformedResponse 外部接口返回的 JSON 或结构不符
	ErrMalformedResponse = errors.New("malformed response")
	// ErrConfiguration 缺少凭证或签名材料
	ErrConfiguration = config.ErrConfiguration
)
