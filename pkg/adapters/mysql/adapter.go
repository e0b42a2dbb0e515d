// Package mysql provides a MySQL store adapter.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/leapstack-labs/vendorperf/pkg/adapter"
	"github.com/leapstack-labs/vendorperf/pkg/core"
)

// Dialect is the MySQL dialect configuration. MySQL rejects infinite
// DOUBLE values, so they are written as NULL.
var Dialect = &core.DialectConfig{
	Name:            "mysql",
	DefaultSchema:   "",
	Placeholder:     core.PlaceholderQuestion,
	IntegerType:     "BIGINT",
	FloatType:       "DOUBLE",
	TextType:        "TEXT",
	CastIntegerType: "SIGNED",
	CastFloatType:   "DOUBLE",
	CastTextType:    "CHAR",
	NonFiniteFloats: false,
}

// errNoSuchTable is MySQL error 1146, ER_NO_SUCH_TABLE.
const errNoSuchTable = 1146

// Adapter implements the adapter.Adapter interface for MySQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new MySQL adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	return &Adapter{BaseSQLAdapter: adapter.NewBase(Dialect, logger)}
}

// Connect establishes a connection to MySQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	a.Logger.Debug("connecting to mysql", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("mysql", buildMySQLDSN(cfg))
	if err != nil {
		return fmt.Errorf("failed to open mysql connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping mysql: %w", err)
	}

	// The database is the schema information_schema is filtered by.
	d := *Dialect
	d.DefaultSchema = cfg.Database
	a.Dialect = &d

	a.DB = db
	a.Cfg = cfg
	return nil
}

// buildMySQLDSN constructs a go-sql-driver DSN from the target config.
func buildMySQLDSN(cfg adapter.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = host + ":" + strconv.Itoa(port)
	mc.DBName = cfg.Database
	mc.ParseTime = true
	if len(cfg.Options) > 0 {
		mc.Params = make(map[string]string, len(cfg.Options))
		for k, v := range cfg.Options {
			mc.Params[k] = v
		}
	}
	return mc.FormatDSN()
}

// GetTableMetadata retrieves metadata for a specified table.
func (a *Adapter) GetTableMetadata(ctx context.Context, table string) (*adapter.Metadata, error) {
	meta, err := a.GetTableMetadataCommon(ctx, table)
	if err != nil && isNoSuchTable(err) {
		return nil, fmt.Errorf("table %s not found", table)
	}
	return meta, err
}

// LoadCSV replaces a table with the contents of a CSV file. Column types
// are inferred from the file, then the data is streamed to the server with
// LOAD DATA LOCAL INFILE through a registered reader. Empty fields become NULL.
func (a *Adapter) LoadCSV(ctx context.Context, tableName string, filePath string) error {
	if a.DB == nil {
		return fmt.Errorf("database connection not established")
	}

	columns, err := adapter.InferCSVColumns(filePath)
	if err != nil {
		return err
	}

	// An empty source creates the typed table without rows.
	if err := a.WriteRows(ctx, tableName, columns, adapter.SliceSource(nil)); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	file, err := os.Open(filePath) //nolint:gosec // filePath is the file the caller asked to load
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	handler := "vendorperf_" + tableName
	mysql.RegisterReaderHandler(handler, func() io.Reader { return file })
	defer mysql.DeregisterReaderHandler(handler)

	result, err := a.DB.ExecContext(ctx, loadDataSQL(tableName, handler, columns))
	if err != nil {
		return fmt.Errorf("failed to load CSV: %w", err)
	}

	n, _ := result.RowsAffected()
	a.Logger.Debug("loaded rows", slog.String("table", tableName), slog.Int64("rows", n))
	return nil
}

// loadDataSQL builds the LOAD DATA statement for a registered reader.
// Fields go through user variables so that empty strings load as NULL.
func loadDataSQL(table, handler string, columns []core.ColumnDef) string {
	vars := make([]string, len(columns))
	sets := make([]string, len(columns))
	for i, col := range columns {
		vars[i] = fmt.Sprintf("@c%d", i+1)
		sets[i] = fmt.Sprintf("%s = NULLIF(@c%d, '')", col.Name, i+1)
	}

	return fmt.Sprintf(
		"LOAD DATA LOCAL INFILE 'Reader::%s' INTO TABLE %s "+
			"FIELDS TERMINATED BY ',' OPTIONALLY ENCLOSED BY '\"' "+
			"LINES TERMINATED BY '\\n' IGNORE 1 LINES (%s) SET %s",
		handler, table, strings.Join(vars, ", "), strings.Join(sets, ", "))
}

func isNoSuchTable(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == errNoSuchTable
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
