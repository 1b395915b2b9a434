/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/eslsoft/vidlingo/internal/infrastructure/config"
	"github.com/eslsoft/vidlingo/internal/infrastructure/database"
)

// dbInitCmd applies the schema and optionally seeds a small demo catalog
var dbInitCmd = &cobra.Command{
	Use:   "db-init",
	Short: "Initialize the database schema",
	Long:  "Apply the embedded schema DDL. With --seed-demo a small demo video catalog is inserted for local development.",
	RunE: func(cmd *cobra.Command, args []string) error {
		seedDemo, _ := cmd.Flags().GetBool("seed-demo")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		pool, cleanup, err := database.NewConnection(cfg)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer cleanup()

		ctx := cmd.Context()
		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
		fmt.Println("schema applied")

		if seedDemo {
			if err := seedDemoCatalog(ctx, pool); err != nil {
				return fmt.Errorf("seed demo catalog: %w", err)
			}
			fmt.Println("demo catalog seeded")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbInitCmd)
	dbInitCmd.Flags().Bool("seed-demo", false, "insert a small demo video catalog after migrating")
}

// seedDemoCatalog inserts one short video with two segments, a handful of
// word occurrences and one exercise per segment. Inserts use fixed IDs with
// DO NOTHING so reruns stay idempotent.
func seedDemoCatalog(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []struct {
		sql  string
		args []any
	}{
		{
			sql:  `INSERT INTO videos (id, title, language, duration_seconds) VALUES ($1, $2, 'en', $3) ON CONFLICT (id) DO NOTHING`,
			args: []any{int64(1), "A Walk in the Park", int32(95)},
		},
		{
			sql:  `INSERT INTO video_segments (id, video_id, segment_index, start_ms, end_ms, text) VALUES ($1, 1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING`,
			args: []any{int64(1), int32(0), int32(0), int32(6500), "The morning air was crisp and bright."},
		},
		{
			sql:  `INSERT INTO video_segments (id, video_id, segment_index, start_ms, end_ms, text) VALUES ($1, 1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING`,
			args: []any{int64(2), int32(1), int32(6500), int32(14200), "She wandered along the winding path."},
		},
		{
			sql:  `INSERT INTO video_words (id, video_id, segment_id, word_id, text) VALUES ($1, 1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
			args: []any{int64(1), int64(1), int64(101), "crisp"},
		},
		{
			sql:  `INSERT INTO video_words (id, video_id, segment_id, word_id, text) VALUES ($1, 1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
			args: []any{int64(2), int64(1), int64(102), "bright"},
		},
		{
			sql:  `INSERT INTO video_words (id, video_id, segment_id, word_id, text) VALUES ($1, 1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
			args: []any{int64(3), int64(2), int64(103), "wander"},
		},
		{
			sql:  `INSERT INTO video_words (id, video_id, segment_id, word_id, text) VALUES ($1, 1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
			args: []any{int64(4), int64(2), int64(104), "winding"},
		},
		{
			sql:  `INSERT INTO video_exercises (id, video_id, segment_id, kind, prompt) VALUES ($1, 1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
			args: []any{int64(1), int64(1), "cloze", "The morning air was ___ and bright."},
		},
		{
			sql:  `INSERT INTO video_exercises (id, video_id, segment_id, kind, prompt) VALUES ($1, 1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
			args: []any{int64(2), int64(2), "cloze", "She ___ along the winding path."},
		},
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt.sql, stmt.args...); err != nil {
			return err
		}
	}
	return nil
}
