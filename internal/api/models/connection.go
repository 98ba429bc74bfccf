package models

import (
	"fmt"
	"net/url"
)

// DBType identifies the SQL dialect of a backing source.
type DBType string

const (
	DBTypePostgres  DBType = "postgres"
	DBTypeMySQL     DBType = "mysql"
	DBTypeSQLServer DBType = "sqlserver"
)

// DataConnection holds the credentials of a source database that ingested
// datasets were landed into. Datasets reference a connection by id.
type DataConnection struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"not null" json:"name"`
	DbType       DBType `gorm:"type:varchar(20);not null" json:"dbType"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	User         string `json:"user"`
	Password     string `json:"-"`
	DatabaseName string `json:"databaseName"`
	SSLMode      string `json:"sslMode"`
}

func (c DataConnection) GetDriverName() string {
	switch c.DbType {
	case DBTypeMySQL:
		return "mysql"
	case DBTypeSQLServer:
		return "sqlserver"
	default:
		return "postgres"
	}
}

func (c DataConnection) BuildConnectionString() string {
	switch c.DbType {
	case DBTypeMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", c.User, c.Password, c.Host, c.Port, c.DatabaseName)
	case DBTypeSQLServer:
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(c.User, c.Password),
			Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
			RawQuery: url.Values{"database": []string{c.DatabaseName}}.Encode(),
		}
		return u.String()
	default:
		sslmode := c.SSLMode
		if sslmode == "" {
			sslmode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DatabaseName, sslmode)
	}
}
