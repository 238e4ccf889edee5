package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisasm(t *testing.T) {
	var b bytes.Buffer
	err := disasm(&b, []byte{
		0x00, 0xe0,
		0xa2, 0x2a,
		0x60, 0x0c,
		0xd0, 0x15,
		0x12, 0x08,
		0x01, 0x23,
		0xff,
	})
	assert.NoError(t, err)
	assert.Equal(t, ""+
		"200  00e0  CLS\n"+
		"202  a22a  LD I, $22A\n"+
		"204  600c  LD V0, $0C\n"+
		"206  d015  DRW V0, V1, $5\n"+
		"208  1208  JP $208\n"+
		"20a  0123  .word $0123\n"+
		"20c  ff    .byte $FF\n",
		b.String())
}

func TestDisasmEmpty(t *testing.T) {
	var b bytes.Buffer
	assert.NoError(t, disasm(&b, nil))
	assert.Empty(t, b.String())
}
