package chip8

import (
	"errors"
	"sync/atomic"
)

// NumKeys is the number of keys on the hexadecimal keypad.
const NumKeys = 16

var ErrInvalidKey = errors.New(f("invalid key index"))

// Keypad is the state of the 16-key hexadecimal keypad.
// It is safe for concurrent use: the host sets keys from its input
// goroutine while the machine reads them.
type Keypad struct {
	bits atomic.Uint32
}

// Set records whether key is pressed.
func (k *Keypad) Set(key byte, pressed bool) error {
	if key >= NumKeys {
		return ErrInvalidKey
	}
	if pressed {
		k.bits.Or(1 << key)
	} else {
		k.bits.And(^uint32(1 << key))
	}
	return nil
}

// Get reports whether key is pressed. Keys outside the keypad are never
// pressed.
func (k *Keypad) Get(key byte) bool {
	if key >= NumKeys {
		return false
	}
	return k.bits.Load()&(1<<key) != 0
}

// Pressed returns the lowest-numbered pressed key.
func (k *Keypad) Pressed() (key byte, ok bool) {
	b := k.bits.Load()
	for key = 0; key < NumKeys; key++ {
		if b&(1<<key) != 0 {
			return key, true
		}
	}
	return 0, false
}

// Release releases every key.
func (k *Keypad) Release() {
	k.bits.Store(0)
}
