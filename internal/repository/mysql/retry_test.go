package mysql_test

import (
	"errors"
	"fmt"
	"testing"

	"Community_Graph/internal/repository/mysql"

	driver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"deadlock", &driver.MySQLError{Number: 1213}, true},
		{"lock wait timeout", &driver.MySQLError{Number: 1205}, true},
		{"wrapped deadlock", fmt.Errorf("commit: %w", &driver.MySQLError{Number: 1213}), true},
		{"duplicate entry", &driver.MySQLError{Number: 1062}, false},
		{"gorm duplicate", gorm.ErrDuplicatedKey, false},
		{"other", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mysql.IsRetryable(tt.err))
		})
	}
}
