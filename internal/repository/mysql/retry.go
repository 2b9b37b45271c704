package mysql

import (
	"errors"

	driver "github.com/go-sql-driver/mysql"
)

// InnoDB 的死锁和锁等待超时，回滚后整个事务可以重做
const (
	errLockWaitTimeout uint16 = 1205
	errDeadlock        uint16 = 1213
)

// IsRetryable 判断事务失败是否来自锁冲突
func IsRetryable(err error) bool {
	var myErr *driver.MySQLError
	if !errors.As(err, &myErr) {
		return false
	}
	return myErr.Number == errDeadlock || myErr.Number == errLockWaitTimeout
}
