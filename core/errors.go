package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 使用场景：
//   - Index 错误：DIMENSION_MISMATCH
//   - Provider 错误：PROVIDER_ERROR
//   - Datastore 错误：DATASTORE_ERROR, NOT_FOUND
//   - 其他领域错误
type DomainError struct {
	Code    string // 错误代码（如 "DIMENSION_MISMATCH", "NOT_FOUND"）
	Message string // 错误消息
	Module  string // 模块名称（如 "index", "datastore", "provider"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(*DomainError)
	return ok
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	// ErrorCodeDimensionMismatch 表示向量维度与索引维度不一致（快速失败，不重试）
	ErrorCodeDimensionMismatch = "DIMENSION_MISMATCH"
	// ErrorCodeProviderError 表示 Embedding Provider 调用失败
	ErrorCodeProviderError = "PROVIDER_ERROR"
	// ErrorCodeDatastoreError 表示数据层读取失败
	ErrorCodeDatastoreError = "DATASTORE_ERROR"

	// 通用错误代码
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误
)

// 模块名称常量
const (
	ModuleIndex     = "index"     // 向量索引模块
	ModuleStore     = "store"     // KV 存储模块
	ModuleDatastore = "datastore" // 关系数据层模块
	ModuleProvider  = "provider"  // Embedding Provider 模块
	ModuleProfile   = "profile"   // 用户画像模块
	ModuleEngine    = "engine"    // 推荐编排模块
)

// 通用错误检查函数

// IsDimensionMismatch 检查错误是否为维度不匹配
func IsDimensionMismatch(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeDimensionMismatch
	}
	return false
}

// IsProviderError 检查错误是否为 Provider 调用失败
func IsProviderError(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeProviderError
	}
	return false
}

// IsDatastoreError 检查错误是否为数据层读取失败
func IsDatastoreError(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeDatastoreError
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotSupported
	}
	return false
}
