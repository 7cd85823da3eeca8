package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Display describes a physical display.
type Display struct {
	ID      int
	Name    string
	Primary bool
	Bounds  Rect
}

// Backend abstracts the window-system operations the host needs to place
// and toggle panel windows.
type Backend interface {
	Displays() ([]Display, error)
	WindowsByClass(class string) ([]WindowID, error)
	MoveResize(windowID WindowID, bounds Rect) error
	Minimize(windowID WindowID) error
	Restore(windowID WindowID) error
}
