package database

import (
	"astro_edu_backend/internal/config"
	"astro_edu_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	return db, nil
}

// Migrate 建表。会话配速计数是易失状态，只存 Redis，不在此列。
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Roadmap{},
		&model.Level{},
		&model.Task{},
		&model.UserTask{},
		&model.StreakRecord{},
	)
}

// SeedCurriculum 空库时写入默认课程。课程内容本体归外部系统维护，
// 这里只是给开发环境一份最小可用的星图。
func SeedCurriculum(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Roadmap{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	roadmap := &model.Roadmap{
		Title:         "Python desde Cero",
		Description:   "Aprende Python desde los fundamentos hasta ciencia de datos",
		Topic:         "python",
		Difficulty:    model.Beginner,
		EstimatedTime: 120,
	}
	if err := db.Create(roadmap).Error; err != nil {
		return err
	}

	levels := []struct {
		title string
		tasks []model.Task
	}{
		{"Fundamentos", []model.Task{
			{Title: "Variables y tipos de datos", Type: model.TaskTheory, XPReward: 50},
			{Title: "Ejercicios de sintaxis básica", Type: model.TaskPractice, XPReward: 75},
		}},
		{"Control de Flujo", []model.Task{
			{Title: "Condicionales y bucles", Type: model.TaskTheory, XPReward: 60},
			{Title: "Quiz de control de flujo", Type: model.TaskQuiz, XPReward: 30},
			{Title: "Mini-proyecto: adivina el número", Type: model.TaskProject, XPReward: 100},
		}},
		{"Estructuras de Datos", []model.Task{
			{Title: "Listas, tuplas y diccionarios", Type: model.TaskTheory, XPReward: 80},
			{Title: "Ejercicios de colecciones", Type: model.TaskPractice, XPReward: 90},
		}},
		{"Funciones", []model.Task{
			{Title: "Definición y argumentos", Type: model.TaskTheory, XPReward: 70},
			{Title: "Proyecto: calculadora modular", Type: model.TaskProject, XPReward: 150},
		}},
	}

	for i, l := range levels {
		level := &model.Level{
			RoadmapID:   roadmap.ID,
			Title:       l.title,
			OrderNumber: i + 1,
		}
		if err := db.Create(level).Error; err != nil {
			return err
		}
		for j := range l.tasks {
			l.tasks[j].LevelID = level.ID
			if err := db.Create(&l.tasks[j]).Error; err != nil {
				return err
			}
		}
	}

	log.Println("Default curriculum seeded")
	return nil
}
