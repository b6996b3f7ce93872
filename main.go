// @title AstroEdu 进度引擎 API
// @version 1.0
// @description 学习路线图进度与游戏化引擎：任务完成、关卡解锁、XP 与连续学习天数。

// @contact.name API支持

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"astro_edu_backend/internal/app"
	"astro_edu_backend/internal/config"
	"astro_edu_backend/pkg/configwatcher"
	"flag"
	"log"
)

func main() {
	// 命令行参数
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	seed := flag.Bool("seed", false, "迁移后写入示例课程数据")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.MigrateOnly = *migrateOnly
	cfg.ForceMigrate = *migrate
	cfg.SeedData = *seed

	application := app.NewApp(cfg)

	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		log.Println("Config file changed, applying reloadable settings")
		for _, cb := range application.ConfigCallbacks() {
			cb(newCfg)
		}
	})

	application.Run()
}
