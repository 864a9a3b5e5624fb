package mod

import (
	"errors"
	"testing"

	"github.com/Gaurav-Gosain/modmux/internal/gdi"
	"github.com/Gaurav-Gosain/modmux/internal/keymap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnv() (Env, *gdi.Surface) {
	surf := gdi.NewSurface(320, 200, gdi.DefaultFont)
	return Env{Graphics: surf, Screen: surf.Bounds(), Font: gdi.DefaultFont}, surf
}

func TestMouseFlags(t *testing.T) {
	tests := []struct {
		name           string
		flags          MouseFlags
		press, release bool
	}{
		{"left press", MouseButton1 | MouseDown, true, false},
		{"left release", MouseButton1, false, true},
		{"move", MouseMove, false, false},
		{"wheel", MouseWheel | MouseDown, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.press, tt.flags.IsPress())
			assert.Equal(t, tt.release, tt.flags.IsRelease())
		})
	}
}

func TestNullAcceptsEverything(t *testing.T) {
	var m Mod = Null{}
	m.InputScancode(0, 0x1E, 1, nil)
	m.InputUnicode(0, 'a', 2)
	m.InputMouse(MouseMove, 1, 1)
	m.InputSynchronize(3, keymap.NumLock)
	m.InputInvalidate(gdi.Rect{W: 10, H: 10})
	m.Activate()
	assert.NoError(t, m.Close())
}

func TestFillPaintsInvalidatedRegion(t *testing.T) {
	env, surf := testEnv()
	f := NewFill(env, gdi.RGB(0x20, 0x40, 0x80), "")

	f.InputInvalidate(gdi.Rect{X: 10, Y: 10, W: 20, H: 20})
	assert.Equal(t, gdi.RGB(0x20, 0x40, 0x80), surf.At(15, 15))
	assert.Equal(t, gdi.Color(0), surf.At(5, 5))
	assert.Equal(t, []gdi.Rect{{X: 10, Y: 10, W: 20, H: 20}}, f.Invalidated)
}

func TestFillEchoesTypedText(t *testing.T) {
	env, surf := testEnv()
	f := NewFill(env, gdi.RGB(0, 0, 0x40), "")
	f.InputInvalidate(env.Screen)
	blank := surf.Sum()

	km := keymap.New(keymap.USLayout())
	key := func(code keymap.KeyCode) {
		for _, flags := range []keymap.KbdFlags{code.Flags(), code.Flags() | keymap.Release} {
			km.Event(flags, code.Scancode())
			f.InputScancode(flags, code.Scancode(), 7, km)
		}
	}

	key(keymap.KeyCode(0x23)) // h
	key(keymap.KeyCode(0x17)) // i
	assert.Equal(t, "hi", f.Echo())
	assert.NotEqual(t, blank, surf.Sum())
	require.Len(t, f.Received, 4)
	assert.Equal(t, Input{Kind: InputScancode, Code: 0x23, Time: 7}, f.Received[0])
	assert.Equal(t, uint16(keymap.Release), f.Received[1].Flags)

	key(keymap.KeyBackspace)
	key(keymap.KeyBackspace)
	key(keymap.KeyBackspace)
	assert.Empty(t, f.Echo())
	assert.Equal(t, blank, surf.Sum())
}

func TestFillUnicode(t *testing.T) {
	env, _ := testEnv()
	f := NewFill(env, 0, "")
	f.InputUnicode(0, 'é', 1)
	f.InputUnicode(keymap.Release, 'é', 2)
	assert.Equal(t, "é", f.Echo())
	assert.Len(t, f.Received, 2)
}

func TestFillLifecycle(t *testing.T) {
	env, _ := testEnv()
	f := NewFill(env, 0, "")
	f.Activate()
	require.NoError(t, f.Close())
	assert.Equal(t, 1, f.Activated)
	assert.True(t, f.Closed)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	env, _ := testEnv()

	assert.Equal(t, []Name{NameClose, NameInternal, NameNull, NameRDP, NameVNC}, r.Names())

	t.Run("null", func(t *testing.T) {
		pack, err := r.New(NameNull, env, nil)
		require.NoError(t, err)
		assert.IsType(t, Null{}, pack.Mod)
		assert.False(t, pack.EnableOSD)
	})

	t.Run("rdp with color", func(t *testing.T) {
		pack, err := r.New(NameRDP, env, []string{"#204080"})
		require.NoError(t, err)
		f, ok := pack.Mod.(*Fill)
		require.True(t, ok)
		assert.Equal(t, gdi.RGB(0x20, 0x40, 0x80), f.Color)
		assert.True(t, pack.EnableOSD)
		assert.True(t, pack.Connected)
	})

	t.Run("close has a label", func(t *testing.T) {
		pack, err := r.New(NameClose, env, nil)
		require.NoError(t, err)
		assert.Equal(t, "Connection closed", pack.Mod.(*Fill).Label)
		assert.False(t, pack.EnableOSD)
	})

	t.Run("label override does not leak", func(t *testing.T) {
		_, err := r.New(NameClose, env, []string{"000000", "bye"})
		require.NoError(t, err)
		pack, err := r.New(NameClose, env, nil)
		require.NoError(t, err)
		assert.Equal(t, "Connection closed", pack.Mod.(*Fill).Label)
	})

	t.Run("bad color", func(t *testing.T) {
		_, err := r.New(NameVNC, env, []string{"blue"})
		require.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := r.New("ssh", env, nil)
		assert.True(t, errors.Is(err, ErrUnknownModule))
	})

	t.Run("factory error surfaces", func(t *testing.T) {
		boom := errors.New("handshake failed")
		r.Register("broken", func(Env, []string) (Pack, error) { return Pack{}, boom })
		_, err := r.New("broken", env, nil)
		assert.ErrorIs(t, err, boom)
	})
}
