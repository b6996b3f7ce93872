package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

// SessionIDHeader 客户端会话标识，用于圈定本次会话的完成配额
const SessionIDHeader = "X-Session-ID"
