//go:build !cgo

package overlay

import "context"

func Available() bool { return false }

func Run(context.Context, Config, func(), func() []string) error {
	return ErrUnavailable
}
