package db

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"groovy/config"
	"groovy/model"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{DBUser: "groovy", DBPassword: "pw", DBHost: "db", DBPort: "3307", DBName: "music"}
	dsn := DSN(cfg)

	assert.True(t, strings.HasPrefix(dsn, "groovy:pw@tcp(db:3307)/music?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestIsDuplicateKey(t *testing.T) {
	assert.False(t, IsDuplicateKey(nil))
	assert.False(t, IsDuplicateKey(errors.New("other")))
	assert.True(t, IsDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKey(fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})))
	assert.False(t, IsDuplicateKey(&mysql.MySQLError{Number: 1452}))
}

func TestAutoMigrateAndUniqueEmail(t *testing.T) {
	gdb, err := Open(sqlite.Open("file:db_gorm_test?mode=memory&cache=shared"), "silent")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(gdb))

	require.NoError(t, gdb.Create(&model.User{Name: "Ann", Email: "ann@example.com", Role: model.RoleUser}).Error)
	err = gdb.Create(&model.User{Name: "Ann 2", Email: "ann@example.com", Role: model.RoleUser}).Error
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))
}
