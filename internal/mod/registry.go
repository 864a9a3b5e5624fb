package mod

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Gaurav-Gosain/modmux/internal/gdi"
	"github.com/Gaurav-Gosain/modmux/internal/theme"
)

// Name identifies a module kind.
type Name string

const (
	NameNull     Name = "null"
	NameRDP      Name = "rdp"
	NameVNC      Name = "vnc"
	NameInternal Name = "internal"
	NameClose    Name = "close"
)

// ErrUnknownModule is returned when no factory is registered for a name.
var ErrUnknownModule = errors.New("unknown module")

// Env is what a factory gets to build a module.
type Env struct {
	// Graphics is the sink the module draws through.
	Graphics gdi.GraphicApi
	Screen   gdi.Rect
	Font     gdi.Font
}

// Factory builds a module pack. Construction failures are returned as is.
type Factory func(env Env, args []string) (Pack, error)

// Registry holds the module factories available to a session.
type Registry struct {
	factories map[Name]Factory
}

// NewRegistry creates a registry with the built-in modules.
//
// Without real protocol backends, rdp and vnc are stand-ins built on Fill:
// they take the OSD and report connected, while internal and close keep
// it off, mirroring how a proxy treats its own screens.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[Name]Factory)}

	r.Register(NameNull, func(Env, []string) (Pack, error) {
		return Pack{Mod: Null{}}, nil
	})
	r.Register(NameRDP, fillFactory(true, true, ""))
	r.Register(NameVNC, fillFactory(true, true, ""))
	r.Register(NameInternal, fillFactory(false, false, ""))
	r.Register(NameClose, fillFactory(false, false, "Connection closed"))

	return r
}

func fillFactory(enableOSD, connected bool, label string) Factory {
	return func(env Env, args []string) (Pack, error) {
		c := gdi.FromColor(theme.Background())
		if len(args) > 0 {
			parsed, err := gdi.ParseColor(args[0])
			if err != nil {
				return Pack{}, err
			}
			c = parsed
		}
		text := label
		if len(args) > 1 {
			text = args[1]
		}
		return Pack{
			Mod:       NewFill(env, c, text),
			EnableOSD: enableOSD,
			Connected: connected,
		}, nil
	}
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name Name, f Factory) {
	r.factories[name] = f
}

// Get retrieves a factory by name.
func (r *Registry) Get(name Name) (Factory, bool) {
	f, ok := r.factories[name]
	return f, ok
}

// New builds a pack for name.
func (r *Registry) New(name Name, env Env, args []string) (Pack, error) {
	f, ok := r.factories[name]
	if !ok {
		return Pack{}, fmt.Errorf("%w: %q", ErrUnknownModule, name)
	}
	pack, err := f(env, args)
	if err != nil {
		return Pack{}, fmt.Errorf("create %s module: %w", name, err)
	}
	return pack, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []Name {
	names := make([]Name, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
