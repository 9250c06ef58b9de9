// Package schema owns the four tables and the sample data used for local runs.
package schema

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/microblog-app/microblog-back/internal/like"
	"github.com/microblog-app/microblog-back/internal/post"
	"github.com/microblog-app/microblog-back/internal/reaction"
	"github.com/microblog-app/microblog-back/internal/user"
)

// Models lists the tables in dependency order.
func Models() []interface{} {
	return []interface{}{&user.User{}, &post.Post{}, &like.Like{}, &reaction.Reaction{}}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migration: %w", err)
	}
	return nil
}

// Populate inserts the sample users and posts when the users table is empty.
func Populate(db *gorm.DB) (bool, error) {
	var count int64
	if err := db.Model(&user.User{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	users := []user.User{
		{Username: "Josefina", UsernameKey: "josefina", ExternalIDHash: "hashedGoogleId1", MemberSince: date("2024-01-01T12:00:00Z")},
		{Username: "Mia", UsernameKey: "mia", ExternalIDHash: "hashedGoogleId2", MemberSince: date("2024-01-02T12:00:00Z")},
	}
	posts := []post.Post{
		{
			Title:       "STEM",
			Content:     "The fields of science, technology, engineering, and mathematics (STEM) have traditionally been male-dominated. However, women are making significant inroads and changing the landscape of these critical fields.",
			Username:    "Josefina",
			UsernameKey: "josefina",
			Timestamp:   date("2024-06-04T04:44:18Z"),
		},
		{
			Title:       "Helping women",
			Content:     "By promoting financial literacy and supporting female entrepreneurs, we can help women build a secure and prosperous future.",
			Username:    "Mia",
			UsernameKey: "mia",
			Timestamp:   date("2024-06-04T04:44:19Z"),
		},
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&users).Error; err != nil {
			return err
		}
		return tx.Create(&posts).Error
	})
	return err == nil, err
}

// Dump calls fn with every row of every table, table by table.
func Dump(db *gorm.DB, fn func(table string, row map[string]interface{})) error {
	for _, table := range []string{"users", "posts", "likes", "reactions"} {
		if !db.Migrator().HasTable(table) {
			return fmt.Errorf("table %s absente", table)
		}
		var rows []map[string]interface{}
		if err := db.Table(table).Order("id ASC").Find(&rows).Error; err != nil {
			return err
		}
		for _, row := range rows {
			fn(table, row)
		}
	}
	return nil
}

func date(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}
