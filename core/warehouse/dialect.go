package warehouse

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
)

// Dialector returns the gorm dialector for the configured driver.
func Dialector(cfg Config) (gorm.Dialector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dsn := DSN(cfg)
	switch cfg.Driver {
	case DriverMySQL:
		return mysql.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	default:
		return sqlserver.Open(dsn), nil
	}
}

// DSN builds the driver specific connection string.
func DSN(cfg Config) string {
	timeout := cfg.timeout()
	host := cfg.Host()
	port := cfg.PortOrDefault()

	switch cfg.Driver {
	case DriverMySQL:
		// Special characters in the password must be URL encoded for go-sql-driver/mysql.
		userInfo := url.UserPassword(cfg.Username, cfg.Password).String()
		return fmt.Sprintf("%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
			userInfo, host, port, cfg.Database, timeout, timeout, timeout)
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=require connect_timeout=%d",
			host, port, cfg.Username, cfg.Password, cfg.Database, timeout)
	default:
		query := url.Values{}
		query.Set("database", cfg.Database)
		query.Set("connection timeout", strconv.Itoa(timeout))
		query.Set("dial timeout", strconv.Itoa(timeout))
		u := &url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(cfg.Username, cfg.Password),
			Host:     fmt.Sprintf("%s:%d", host, port),
			RawQuery: query.Encode(),
		}
		return u.String()
	}
}

// QualifiedTable quotes namespace and table for the configured dialect.
func QualifiedTable(driver, namespace, table string) string {
	return quoteIdent(driver, namespace) + "." + quoteIdent(driver, table)
}

func quoteIdent(driver, name string) string {
	switch driver {
	case DriverMySQL:
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	case DriverPostgres:
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	default:
		return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
	}
}
