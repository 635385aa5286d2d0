package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
// Handler 层统一映射为 409 concurrency_error，提示客户端刷新后重试
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// IsConcurrency 判断错误链中是否包含乐观锁冲突
func IsConcurrency(err error) bool {
	return errors.Is(err, ErrOptimisticLock)
}
