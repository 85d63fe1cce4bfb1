package actor

import (
	"errors"
	"fmt"
)

var (
	// ErrActorTerminated actor 已终止或正在终止
	ErrActorTerminated    = errors.New("actor: terminated")
	ErrUnknownMessage     = errors.New("actor: unknown message")
	ErrNameTaken          = errors.New("actor: name taken")
	ErrInvalidName        = errors.New("actor: invalid name")
	ErrNilProducer        = errors.New("actor: nil producer")
	ErrNilActor           = errors.New("actor: producer returned nil")
	ErrSystemShuttingDown = errors.New("actor: system shutting down")
	// ErrAbnormalExit 行为在处理消息时调用了 runtime.Goexit
	ErrAbnormalExit = errors.New("actor: behavior exited abnormally")
)

// UnknownMessageError 携带无法处理的消息
type UnknownMessageError struct {
	Message interface{}
}

func (e *UnknownMessageError) Error() string {
	return fmt.Sprintf("actor: unknown message %T", e.Message)
}

func (e *UnknownMessageError) Is(target error) bool {
	return target == ErrUnknownMessage
}

// Unhandled 行为中遇到不认识的消息时返回
func Unhandled(msg interface{}) error {
	return &UnknownMessageError{Message: msg}
}
