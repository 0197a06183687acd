package service

import "errors"

// ValidationError 表示客户端输入不合法，Message 可直接展示给用户。
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

var (
	ErrUserExists         = errors.New("username or email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is deactivated")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	// ErrMissingSigningKey 表示未配置 JWT 密钥，此时不签发也不接受任何令牌。
	ErrMissingSigningKey  = errors.New("jwt signing key is not configured")

	// ErrInvalidLocation 在地址无法解析为坐标时返回。
	ErrInvalidLocation = &ValidationError{Field: "location", Message: "Invalid location. Please enter a valid address."}

	ErrPhotoStorageDisabled = errors.New("photo storage is not configured")
)
