package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicate 违反唯一约束
	ErrDuplicate = errors.New("记录已存在")
	// ErrShiftNotFound 换班所需的班次不存在
	ErrShiftNotFound = errors.New("班次不存在")
)

// PostgreSQL 错误码
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// ErrReferenceMissing 外键引用的记录不存在
var ErrReferenceMissing = errors.New("引用的记录不存在")

// translateError 将驱动层错误转换为仓储层错误，其余原样返回
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrDuplicate
		case pgForeignKeyViolation:
			return ErrReferenceMissing
		}
	}
	return err
}
