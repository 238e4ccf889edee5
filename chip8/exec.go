package chip8

// exec executes in, which was fetched from m.PC, and advances PC.
// Faults are raised by panicking with a FaultKind or memFault before any
// state is changed.
func (m *Machine) exec(in Instruction) {
	var (
		x    = in.X()
		y    = in.Y()
		next = m.PC + 2
	)
	skipIf := func(cond bool) {
		if cond {
			next += 2
		}
	}

	switch in.Op {
	case CLS:
		m.display = Frame{}
		m.dirty = true
	case RET:
		next = m.Stack.Pop() + 2
	case JP:
		next = in.NNN()
	case CALL:
		m.Stack.Push(m.PC)
		next = in.NNN()
	case SEB:
		skipIf(m.V[x] == in.KK())
	case SNEB:
		skipIf(m.V[x] != in.KK())
	case SER:
		skipIf(m.V[x] == m.V[y])
	case SNER:
		skipIf(m.V[x] != m.V[y])
	case LDB:
		m.V[x] = in.KK()
	case ADDB:
		m.V[x] += in.KK()
	case LDR:
		m.V[x] = m.V[y]
	case OR, AND, XOR:
		switch in.Op {
		case OR:
			m.V[x] |= m.V[y]
		case AND:
			m.V[x] &= m.V[y]
		case XOR:
			m.V[x] ^= m.V[y]
		}
		if m.Quirks.LogicResetsVF {
			m.V[0xf] = 0
		}
	case ADD:
		sum := uint16(m.V[x]) + uint16(m.V[y])
		m.V[x] = byte(sum)
		m.V[0xf] = byte(sum >> 8)
	case SUB:
		a, b := m.V[x], m.V[y]
		m.V[x] = a - b
		m.V[0xf] = flag(a >= b)
	case SUBN:
		a, b := m.V[x], m.V[y]
		m.V[x] = b - a
		m.V[0xf] = flag(b >= a)
	case SHR:
		v := m.shiftSource(x, y)
		m.V[x] = v >> 1
		m.V[0xf] = v & 1
	case SHL:
		v := m.shiftSource(x, y)
		m.V[x] = v << 1
		m.V[0xf] = v >> 7
	case LDI:
		m.setI(in.NNN())
	case JPV0:
		next = (uint16(m.V[0]) + in.NNN()) & 0xfff
	case RND:
		m.V[x] = m.Rand() & in.KK()
	case DRW:
		sprite := m.span(m.I, int(in.N()))
		collision := m.display.drawSprite(int(m.V[x]), int(m.V[y]), sprite)
		m.V[0xf] = flag(collision)
		m.dirty = true
	case SKP:
		skipIf(m.Keys.Get(m.V[x] & 0xf))
	case SKNP:
		skipIf(!m.Keys.Get(m.V[x] & 0xf))
	case LDVDT:
		m.V[x] = m.DT
	case LDK:
		// Completed by a later Step once a key is down.
		m.state = AwaitingKey
		m.waitReg = x
		next = m.PC
	case LDDT:
		m.DT = m.V[x]
	case LDST:
		m.ST = m.V[x]
	case ADDI:
		sum := m.I + uint16(m.V[x])
		if m.Quirks.IndexOverflow {
			m.V[0xf] = flag(sum > 0xfff)
		}
		m.setI(sum)
	case LDF:
		m.setI(FontAddr + uint16(m.V[x])*glyphSize)
	case LDBCD:
		b := m.span(m.I, 3)
		v := m.V[x]
		b[0] = v / 100
		b[1] = v / 10 % 10
		b[2] = v % 10
	case STM:
		copy(m.span(m.I, int(x)+1), m.V[:x+1])
		if m.Quirks.MemoryIncrementsI {
			m.setI(m.I + uint16(x) + 1)
		}
	case LDM:
		copy(m.V[:x+1], m.span(m.I, int(x)+1))
		if m.Quirks.MemoryIncrementsI {
			m.setI(m.I + uint16(x) + 1)
		}
	default:
		panic(UnknownOpcode)
	}

	m.PC = next
}

func (m *Machine) shiftSource(x, y byte) byte {
	if m.Quirks.ShiftUsesVY {
		return m.V[y]
	}
	return m.V[x]
}

func (m *Machine) setI(v uint16) { m.I = v & 0xfff }

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}
