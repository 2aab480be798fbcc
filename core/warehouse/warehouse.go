package warehouse

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// TableCount is the materialized cardinality of one warehouse table.
type TableCount struct {
	// Table is the unqualified table name.
	Table string `json:"table"`
	// Rows is the number of rows returned by SELECT *.
	Rows int `json:"rows"`
	// Columns holds the column names in result order.
	Columns []string `json:"columns"`
}

// Opener opens a fresh connection for a single query.
type Opener func(ctx context.Context) (*gorm.DB, error)

// Client counts rows and columns of warehouse tables.
// Every call uses its own connection, so a broken connection never outlives the
// reconciliation that hit it.
type Client struct {
	driver    string
	namespace string
	open      Opener
	logger    *zap.Logger
}

// NewClient creates a client that connects with cfg.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewClientWithOpener(cfg, func(ctx context.Context) (*gorm.DB, error) {
		return Connect(ctx, cfg)
	}, logger), nil
}

// NewClientWithOpener creates a client that obtains connections from open.
func NewClientWithOpener(cfg Config, open Opener, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		driver:    cfg.Driver,
		namespace: cfg.Namespace,
		open:      open,
		logger:    logger,
	}
}

// Connect opens a single, unpooled connection to the warehouse.
func Connect(ctx context.Context, cfg Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to warehouse: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// Pooling is off: one connection, never kept idle.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(0)

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.timeout())*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping warehouse: %w", err)
	}

	return db, nil
}

// Table returns the qualified name of table in the client namespace.
func (c *Client) Table(table string) string {
	return QualifiedTable(c.driver, c.namespace, table)
}

// RowAndColumnCount runs SELECT * against table and measures the result.
// The connection is released before returning, whatever the outcome.
func (c *Client) RowAndColumnCount(ctx context.Context, table string) (TableCount, error) {
	qualified := c.Table(table)

	db, err := c.open(ctx)
	if err != nil {
		return TableCount{}, &QueryError{Table: qualified, Err: err}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return TableCount{}, &QueryError{Table: qualified, Err: err}
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			c.logger.Debug("Failed to close warehouse connection", zap.String("table", qualified), zap.Error(err))
		}
	}()

	rows, err := db.WithContext(ctx).Raw("SELECT * FROM " + qualified).Rows()
	if err != nil {
		return TableCount{}, &QueryError{Table: qualified, Err: err}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return TableCount{}, &QueryError{Table: qualified, Err: fmt.Errorf("columns: %w", err)}
	}

	count := 0
	for rows.Next() {
		count++
	}
	if err := rows.Err(); err != nil {
		return TableCount{}, &QueryError{Table: qualified, Err: err}
	}

	return TableCount{Table: table, Rows: count, Columns: columns}, nil
}
