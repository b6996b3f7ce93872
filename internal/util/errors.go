package util

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrRoadmapNotFound = errors.New("roadmap not found")
	ErrLevelNotFound   = errors.New("level not found")
	ErrTaskNotFound    = errors.New("task not found")

	// ErrPacingLimitExceeded 本次会话的完成额度已用尽，属预期可恢复状态，非系统故障
	ErrPacingLimitExceeded = errors.New("pacing limit exceeded for this session")

	// ErrStorageUnavailable 进度存储不可用，调用方应退避重试
	ErrStorageUnavailable = errors.New("progress storage unavailable")

	ErrInvalidStateTransition = errors.New("invalid task state transition")
)
