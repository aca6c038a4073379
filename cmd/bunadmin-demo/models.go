package main

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Name          string    `bun:"name,notnull"`
	Email         string    `bun:"email,notnull,unique"`
	Bio           string    `bun:"bio"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p"`
	ID            int64      `bun:"id,pk,autoincrement"`
	AuthorID      int64      `bun:"author_id,notnull"`
	Title         string     `bun:"title,notnull"`
	Body          string     `bun:"body"`
	Published     bool       `bun:"published,notnull"`
	PublishedAt   *time.Time `bun:"published_at"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func createSchema(ctx context.Context, db *bun.DB) error {
	for _, model := range []any{(*Author)(nil), (*Post)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}
