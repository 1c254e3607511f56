// 生成jwt.secret_key配置项使用的随机密钥
package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
)

func main() {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		fmt.Fprintln(os.Stderr, "failed to generate secret:", err)
		os.Exit(1)
	}
	fmt.Println(base64.URLEncoding.EncodeToString(key))
}
