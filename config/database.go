package config

import (
	"fmt"
	model "scms/repository"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var enumQueries = []string{
	`CREATE TYPE scms.user_role AS ENUM ('admin', 'internal')`,
	`CREATE TYPE scms.account_status AS ENUM ('active', 'inactive')`,
	`CREATE TYPE scms.letter_grade AS ENUM ('A', 'B', 'C', 'D', 'F')`,
	`CREATE TYPE scms.document_category AS ENUM ('certification', 'license', 'insurance', 'other')`,
}

func InitDB(host string, port string, user string, password string, dbName string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", host, port, user, password, dbName)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   "scms.",
			SingularTable: false,
		},
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	x := db.Exec(`CREATE SCHEMA IF NOT EXISTS scms`)
	if x.Error != nil {
		return nil, x.Error
	}
	for _, query := range enumQueries {
		x := db.Exec(query)
		if x.Error != nil {
			if strings.Contains(x.Error.Error(), "already exists") {
				continue
			}
			return nil, x.Error
		}
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Subcontractor{},
		&model.Document{},
		&model.QuestionCategory{},
		&model.Question{},
		&model.Review{},
		&model.ReviewResponse{},
		&model.ReviewAttachment{},
		&model.RatingRepairJob{},
	)

	if err != nil {
		return nil, err
	}
	return db, nil
}
