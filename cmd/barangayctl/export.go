package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/EmpoweredVote/barangay-admin/internal/server"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
	"github.com/spf13/cobra"
)

func init() {
	var dsn, outDir string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Dump the Postgres collections into JSON files readable by the json driver",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				dsn = os.Getenv("DATABASE_URL")
			}
			if dsn == "" {
				return fmt.Errorf("--dsn or DATABASE_URL required")
			}
			return runExport(cmd.Context(), dsn, outDir, os.Stdout)
		},
	}
	exportCmd.Flags().StringVar(&dsn, "dsn", "", "Postgres connection string (defaults to DATABASE_URL)")
	exportCmd.Flags().StringVarP(&outDir, "out", "o", "export", "Output directory")
	rootCmd.AddCommand(exportCmd)
}

func runExport(ctx context.Context, dsn, outDir string, out io.Writer) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, name := range server.Collections {
		n, err := exportCollection(ctx, db, name, outDir)
		if err != nil {
			return fmt.Errorf("export %s: %w", name, err)
		}
		fmt.Fprintf(out, "%s: %d records\n", name, n)
	}
	return nil
}

// exportCollection writes <name>.json and the <name>.seq high-water mark.
func exportCollection(ctx context.Context, db *sql.DB, name, outDir string) (int, error) {
	table := pq.QuoteIdentifier(server.Schema) + "." + pq.QuoteIdentifier(name)
	rows, err := db.QueryContext(ctx, `SELECT id, data::text FROM `+table+` ORDER BY id`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	recs := []map[string]json.RawMessage{}
	maxID := 0
	for rows.Next() {
		var id int
		var data string
		if err := rows.Scan(&id, &data); err != nil {
			return 0, err
		}
		doc := map[string]json.RawMessage{}
		if err := json.Unmarshal([]byte(data), &doc); err != nil {
			return 0, fmt.Errorf("row %d: %w", id, err)
		}
		doc["id"] = json.RawMessage(strconv.Itoa(id))
		recs = append(recs, doc)
		maxID = max(maxID, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	if err := writeCollection(outDir, name, recs, maxID); err != nil {
		return 0, err
	}
	return len(recs), nil
}

func writeCollection(dir, name string, recs []map[string]json.RawMessage, seq int) error {
	b, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), b, 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name+".seq"), []byte(strconv.Itoa(seq)), 0o644)
}
