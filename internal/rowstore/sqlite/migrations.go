package sqlite

import "database/sql"

// schema models each sheet as a sparse grid of cells, mirroring the
// spreadsheet service's addressing: 1-indexed rows and columns, row 1
// reserved for the header.
const schema = `
CREATE TABLE IF NOT EXISTS sheets (
    name TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS cells (
    sheet TEXT NOT NULL,
    row INTEGER NOT NULL,
    col INTEGER NOT NULL,
    value TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (sheet, row, col),
    FOREIGN KEY (sheet) REFERENCES sheets(name) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_cells_sheet_row ON cells(sheet, row);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
