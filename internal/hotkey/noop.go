package hotkey

// Noop is a Registrar that registers nothing. It backs tests and headless
// environments where no display server is available.
type Noop struct{}

func (Noop) Register(string, func()) error { return nil }
func (Noop) Reregister(string) error       { return nil }
func (Noop) Close()                        {}
