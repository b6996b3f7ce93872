// 手动写入示例课程脚本
//
// 常规部署用 `./astro_edu_backend -migrate -seed` 即可；此脚本用于
// 不想启动 HTTP 服务、只想往已有数据库补种示例路线图的场景。
//
// 用法: go run scripts/seed_curriculum.go

package main

import (
	"astro_edu_backend/internal/config"
	"astro_edu_backend/pkg/database"
	"log"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("连接数据库失败: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	if err := database.SeedCurriculum(db); err != nil {
		log.Fatalf("写入示例课程失败: %v", err)
	}

	log.Println("示例课程写入完成")
}
