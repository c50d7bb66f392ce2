package resource

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the resource package.
var (
	// ErrDuplicateID is matched by *DuplicateIDError.
	ErrDuplicateID = errors.New("duplicate resource id")

	// ErrCrossManager is matched by *CrossManagerError.
	ErrCrossManager = errors.New("resource belongs to another manager")

	// ErrCorruptProject is matched by *CorruptProjectError.
	ErrCorruptProject = errors.New("corrupt project data")

	// ErrDuplicateChild indicates the node is already a child of the folder.
	ErrDuplicateChild = errors.New("node is already a child of this folder")

	// ErrHasParent indicates the node must be removed from its folder first.
	ErrHasParent = errors.New("node already has a parent folder")

	// ErrFolderCycle indicates a folder would become its own descendant.
	ErrFolderCycle = errors.New("folder cannot contain itself")

	// ErrIndexOutOfRange indicates an invalid child index.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNotRegistered indicates the item is not registered in the manager.
	ErrNotRegistered = errors.New("resource not registered")

	// ErrItemAttached indicates a replacement item is already in use.
	ErrItemAttached = errors.New("replacement resource is already attached")

	// ErrManagerNotEmpty is returned when reading into a manager that has
	// registered resources.
	ErrManagerNotEmpty = errors.New("cannot read while resources are registered")

	// ErrReentrantManagerSwap is returned when a path's manager is changed
	// while a manager change is already in progress.
	ErrReentrantManagerSwap = errors.New("resource path manager swap is re-entrant")

	// ErrPathDisposed is returned when using a disposed path.
	ErrPathDisposed = errors.New("resource path disposed")

	// ErrUnknownFactoryID indicates no constructor is registered for an ID.
	ErrUnknownFactoryID = errors.New("unknown factory id")

	// ErrDuplicateFactoryID indicates a constructor is already registered.
	ErrDuplicateFactoryID = errors.New("factory id already registered")

	// ErrNilContent indicates an item was created without content.
	ErrNilContent = errors.New("resource content cannot be nil")
)

// DuplicateIDError is returned when an ID is already taken.
type DuplicateIDError struct {
	ID uint64
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("resource id %d is already registered", e.ID)
}

// Is matches ErrDuplicateID.
func (e *DuplicateIDError) Is(target error) bool {
	return target == ErrDuplicateID
}

// CrossManagerError is returned when registering an item that belongs to
// a different manager.
type CrossManagerError struct {
	ID   uint64
	Name string
}

func (e *CrossManagerError) Error() string {
	return fmt.Sprintf("resource %q (id %d) belongs to another manager", e.Name, e.ID)
}

// Is matches ErrCrossManager.
func (e *CrossManagerError) Is(target error) bool {
	return target == ErrCrossManager
}

// CorruptProjectError reports persisted data that violates registry
// invariants, such as two items sharing one ID.
type CorruptProjectError struct {
	ID     uint64
	Reason string
}

func (e *CorruptProjectError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("corrupt project: resource id %d: %s", e.ID, e.Reason)
	}
	return "corrupt project: " + e.Reason
}

// Is matches ErrCorruptProject.
func (e *CorruptProjectError) Is(target error) bool {
	return target == ErrCorruptProject
}

// TreeCorruptionError is the panic value raised when a structural
// mutation finds back-links that disagree with the tree. It indicates a
// prior bug; continuing would desynchronize the index from the tree.
type TreeCorruptionError struct {
	Op     string
	Reason string
}

func (e *TreeCorruptionError) Error() string {
	return fmt.Sprintf("resource tree corruption in %s: %s", e.Op, e.Reason)
}
