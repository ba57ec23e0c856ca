package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"keyword_bot/utils"
)

func main() {
	// 加载.env文件
	err := godotenv.Load()
	if err != nil {
		log.Fatalf("无法加载.env文件: %v", err)
	}

	// 从.env文件读取搜索广告密钥
	secretKey := os.Getenv("SEARCHAD_SECRET_KEY")
	if secretKey == "" {
		log.Fatalf("SEARCHAD_SECRET_KEY未在.env文件中设置")
	}

	signer := utils.NewHMACSigner(secretKey)

	// 固定时间戳，便于与其他实现的签名结果对比
	timestamp := "1760400000000"
	if len(os.Args) > 1 {
		timestamp = os.Args[1]
	}

	fmt.Printf("输入: %s.%s.%s\n", timestamp, "GET", "/keywordstool")
	fmt.Printf("签名结果: %s\n", signer.Sign(timestamp, "GET", "/keywordstool"))

	// 当前时间戳
	now := utils.TimestampMillis(time.Now())
	fmt.Printf("\n当前时间戳: %s\n", now)
	fmt.Printf("签名结果: %s\n", signer.Sign(now, "GET", "/keywordstool"))
}
