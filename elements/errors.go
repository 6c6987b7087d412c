package elements

import (
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-localpay/core"
)

// Usage errors are returned directly to the caller; they signal programming
// mistakes rather than payment failures.
func errDestroyed() error {
	return core.NewUsageError("elements: card element has been destroyed", goerrors.CategoryConflict)
}

func errMountedElsewhere() error {
	return core.NewUsageError("elements: card element is already mounted to another target; unmount it first", goerrors.CategoryConflict)
}

func errInvalidTarget(reason string) error {
	return core.NewUsageError("elements: invalid mount target: "+reason, goerrors.CategoryBadInput)
}

func errAlreadyCreated(kind string) error {
	return core.NewUsageError("elements: a "+kind+" element already exists; destroy it before creating another", goerrors.CategoryConflict)
}

func errUnsupportedType(kind string) error {
	return core.NewUsageError("elements: unsupported element type "+kind, goerrors.CategoryBadInput)
}
