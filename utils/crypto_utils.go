package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"time"
)

// Signer 请求签名器
type Signer interface {
	Sign(timestamp, method, uri string) string
}

// HMACSigner 使用 HMAC-SHA256 对 "timestamp.method.uri" 签名，结果为 base64
type HMACSigner struct {
	SecretKey string
}

// NewHMACSigner 创建签名器
func NewHMACSigner(secretKey string) *HMACSigner {
	return &HMACSigner{SecretKey: secretKey}
}

// Sign 计算签名
func (s *HMACSigner) Sign(timestamp, method, uri string) string {
	mac := hmac.New(sha256.New, []byte(s.SecretKey))
	mac.Write([]byte(timestamp + "." + method + "." + uri))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// TimestampMillis 当前毫秒时间戳字符串
func TimestampMillis(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10)
}
