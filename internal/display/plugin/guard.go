package plugin

import (
	"fmt"

	"github.com/shunte88/lymons/internal/display"
)

// guardCode invokes a fallible table entry point under a fault barrier.
// An uncaught panic inside plugin code is converted into a typed error
// wrapping display.ErrPluginPanic instead of unwinding into the host.
func guardCode(op string, fn func() ErrorCode) (code ErrorCode, err error) {
	defer func() {
		if r := recover(); r != nil {
			code = CodePanic
			err = fmt.Errorf("%s: %w: %v", op, display.ErrPluginPanic, r)
		}
	}()
	return fn(), nil
}

// guardVoid invokes an infallible table entry point under the same fault
// barrier. Panics are still contained; the contract only says the call
// reports no error code, not that plugin code cannot fault.
func guardVoid(op string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %w: %v", op, display.ErrPluginPanic, r)
		}
	}()
	fn()
	return nil
}
