package hotkey

type FakeHotkey struct {
	RegisterErr error
	Registered  bool

	triggers chan struct{}
}

func NewFake() *FakeHotkey {
	return &FakeHotkey{triggers: make(chan struct{}, 1)}
}

func (f *FakeHotkey) Register() error {
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	f.Registered = true
	return nil
}

func (f *FakeHotkey) Unregister()               { f.Registered = false }
func (f *FakeHotkey) Triggers() <-chan struct{} { return f.triggers }

// SimPress blocks until the previous trigger has been consumed.
func (f *FakeHotkey) SimPress() { f.triggers <- struct{}{} }
