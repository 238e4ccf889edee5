package chip8

import "fmt"

// Op identifies a CHIP-8 instruction variant.
type Op byte

const (
	Unknown Op = iota
	CLS        // 00E0
	RET        // 00EE
	JP         // 1nnn
	CALL       // 2nnn
	SEB        // 3xkk SE Vx, byte
	SNEB       // 4xkk SNE Vx, byte
	SER        // 5xy0 SE Vx, Vy
	LDB        // 6xkk LD Vx, byte
	ADDB       // 7xkk ADD Vx, byte
	LDR        // 8xy0 LD Vx, Vy
	OR         // 8xy1
	AND        // 8xy2
	XOR        // 8xy3
	ADD        // 8xy4
	SUB        // 8xy5
	SHR        // 8xy6
	SUBN       // 8xy7
	SHL        // 8xyE
	SNER       // 9xy0 SNE Vx, Vy
	LDI        // Annn
	JPV0       // Bnnn
	RND        // Cxkk
	DRW        // Dxyn
	SKP        // Ex9E
	SKNP       // ExA1
	LDVDT      // Fx07 LD Vx, DT
	LDK        // Fx0A LD Vx, K
	LDDT       // Fx15 LD DT, Vx
	LDST       // Fx18 LD ST, Vx
	ADDI       // Fx1E ADD I, Vx
	LDF        // Fx29 LD F, Vx
	LDBCD      // Fx33 LD B, Vx
	STM        // Fx55 LD [I], Vx
	LDM        // Fx65 LD Vx, [I]
)

var opNames = [...]string{
	Unknown: ".word",
	CLS:     "CLS",
	RET:     "RET",
	JP:      "JP",
	CALL:    "CALL",
	SEB:     "SE",
	SNEB:    "SNE",
	SER:     "SE",
	LDB:     "LD",
	ADDB:    "ADD",
	LDR:     "LD",
	OR:      "OR",
	AND:     "AND",
	XOR:     "XOR",
	ADD:     "ADD",
	SUB:     "SUB",
	SHR:     "SHR",
	SUBN:    "SUBN",
	SHL:     "SHL",
	SNER:    "SNE",
	LDI:     "LD",
	JPV0:    "JP",
	RND:     "RND",
	DRW:     "DRW",
	SKP:     "SKP",
	SKNP:    "SKNP",
	LDVDT:   "LD",
	LDK:     "LD",
	LDDT:    "LD",
	LDST:    "LD",
	ADDI:    "ADD",
	LDF:     "LD",
	LDBCD:   "LD",
	STM:     "LD",
	LDM:     "LD",
}

// String returns the assembler mnemonic for op.
func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", byte(op))
}

// Skip reports whether op conditionally skips the next instruction.
func (op Op) Skip() bool {
	switch op {
	case SEB, SNEB, SER, SNER, SKP, SKNP:
		return true
	}
	return false
}

// Instruction is a decoded instruction word.
type Instruction struct {
	Op   Op
	Word uint16
}

// X returns the second nibble, a register index.
func (in Instruction) X() byte { return byte(in.Word>>8) & 0xf }

// Y returns the third nibble, a register index.
func (in Instruction) Y() byte { return byte(in.Word>>4) & 0xf }

// N returns the low nibble.
func (in Instruction) N() byte { return byte(in.Word) & 0xf }

// KK returns the low byte.
func (in Instruction) KK() byte { return byte(in.Word) }

// NNN returns the low 12 bits, an address.
func (in Instruction) NNN() uint16 { return in.Word & 0xfff }

type pattern struct {
	mask, value uint16
	op          Op
}

// decodeTable lists the patterns for each top nibble.
// The first pattern with word&mask == value wins.
var decodeTable = [16][]pattern{
	0x0: {{0xffff, 0x00e0, CLS}, {0xffff, 0x00ee, RET}},
	0x1: {{0xf000, 0x1000, JP}},
	0x2: {{0xf000, 0x2000, CALL}},
	0x3: {{0xf000, 0x3000, SEB}},
	0x4: {{0xf000, 0x4000, SNEB}},
	0x5: {{0xf00f, 0x5000, SER}},
	0x6: {{0xf000, 0x6000, LDB}},
	0x7: {{0xf000, 0x7000, ADDB}},
	0x8: {
		{0xf00f, 0x8000, LDR},
		{0xf00f, 0x8001, OR},
		{0xf00f, 0x8002, AND},
		{0xf00f, 0x8003, XOR},
		{0xf00f, 0x8004, ADD},
		{0xf00f, 0x8005, SUB},
		{0xf00f, 0x8006, SHR},
		{0xf00f, 0x8007, SUBN},
		{0xf00f, 0x800e, SHL},
	},
	0x9: {{0xf00f, 0x9000, SNER}},
	0xa: {{0xf000, 0xa000, LDI}},
	0xb: {{0xf000, 0xb000, JPV0}},
	0xc: {{0xf000, 0xc000, RND}},
	0xd: {{0xf000, 0xd000, DRW}},
	0xe: {{0xf0ff, 0xe09e, SKP}, {0xf0ff, 0xe0a1, SKNP}},
	0xf: {
		{0xf0ff, 0xf007, LDVDT},
		{0xf0ff, 0xf00a, LDK},
		{0xf0ff, 0xf015, LDDT},
		{0xf0ff, 0xf018, LDST},
		{0xf0ff, 0xf01e, ADDI},
		{0xf0ff, 0xf029, LDF},
		{0xf0ff, 0xf033, LDBCD},
		{0xf0ff, 0xf055, STM},
		{0xf0ff, 0xf065, LDM},
	},
}

// Decode maps an instruction word to its instruction.
// Words that match no instruction decode with Op Unknown.
func Decode(word uint16) Instruction {
	for _, p := range decodeTable[word>>12] {
		if word&p.mask == p.value {
			return Instruction{Op: p.op, Word: word}
		}
	}
	return Instruction{Op: Unknown, Word: word}
}

// String returns the instruction in assembler syntax, for example
// "SE V3, $05" or "DRW V0, V1, $5".
func (in Instruction) String() string {
	name := in.Op.String()
	switch in.Op {
	case CLS, RET:
		return name
	case JP, CALL:
		return fmt.Sprintf("%s $%03X", name, in.NNN())
	case SEB, SNEB, LDB, ADDB, RND:
		return fmt.Sprintf("%s V%X, $%02X", name, in.X(), in.KK())
	case SER, SNER, LDR, OR, AND, XOR, ADD, SUB, SUBN:
		return fmt.Sprintf("%s V%X, V%X", name, in.X(), in.Y())
	case SHR, SHL, SKP, SKNP:
		return fmt.Sprintf("%s V%X", name, in.X())
	case LDI:
		return fmt.Sprintf("%s I, $%03X", name, in.NNN())
	case JPV0:
		return fmt.Sprintf("%s V0, $%03X", name, in.NNN())
	case DRW:
		return fmt.Sprintf("%s V%X, V%X, $%X", name, in.X(), in.Y(), in.N())
	case LDVDT:
		return fmt.Sprintf("%s V%X, DT", name, in.X())
	case LDK:
		return fmt.Sprintf("%s V%X, K", name, in.X())
	case LDDT:
		return fmt.Sprintf("%s DT, V%X", name, in.X())
	case LDST:
		return fmt.Sprintf("%s ST, V%X", name, in.X())
	case ADDI:
		return fmt.Sprintf("%s I, V%X", name, in.X())
	case LDF:
		return fmt.Sprintf("%s F, V%X", name, in.X())
	case LDBCD:
		return fmt.Sprintf("%s B, V%X", name, in.X())
	case STM:
		return fmt.Sprintf("%s [I], V%X", name, in.X())
	case LDM:
		return fmt.Sprintf("%s V%X, [I]", name, in.X())
	}
	return fmt.Sprintf("%s $%04X", name, in.Word)
}
