package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"keyword_bot/config"
	"keyword_bot/logger"
	"keyword_bot/utils"
)

// maxResponseBytes 单个外部响应体的读取上限
const maxResponseBytes = 8 << 20

// newHTTPClient 按配置的请求超时创建 HTTP 客户端
func newHTTPClient(cfg *config.Config) *http.Client {
	timeout := time.Duration(cfg.Timeouts.RequestSec) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// doRequest 发送请求并读取响应体；传输失败或非 2xx 状态码包装为 ErrSourceUnavailable
func doRequest(ctx context.Context, client *http.Client, req *http.Request, source string) ([]byte, error) {
	req = req.WithContext(ctx)
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Error("Outbound request failed", "source", source, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, source, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %v", ErrSourceUnavailable, source, err)
	}
	logger.Debug("Outbound response", "source", source, "status_code", resp.StatusCode,
		"response_size", len(body), "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error("Outbound request returned error status", "source", source,
			"status", resp.StatusCode, "response", utils.Preview(string(body), 200))
		return nil, fmt.Errorf("%w: %s: status %d", ErrSourceUnavailable, source, resp.StatusCode)
	}
	return body, nil
}
