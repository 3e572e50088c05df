package chat

import (
	"fmt"

	"github.com/nickfox/LLMCreativeStudio/internal/core"
)

// NewChatStore creates a ChatStore for the given backend ("sqlite" or
// "json"). For sqlite, path is the database file; for json, the base
// directory.
func NewChatStore(backend, path string) (core.ChatStore, error) {
	switch backend {
	case "", "sqlite":
		return NewSQLiteChatStore(path)
	case "json":
		return NewJSONChatStore(path)
	default:
		return nil, core.ErrValidation(core.CodeInvalidConfig,
			fmt.Sprintf("unknown storage backend %q", backend))
	}
}
