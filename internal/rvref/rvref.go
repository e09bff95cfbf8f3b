// Package rvref is a plain-Go RV32IM interpreter used only for
// differential testing: it must compute exactly the same architectural
// state transitions internal/lower compiles into gates, so that a random
// program can be run through both and its host Regs/PC/Memory compared
// bit-for-bit against the circuit's evaluated output wires. Grounded on
// wyf-ACCEPT-eth2030's pkg/zkvm RVCPU/RVMemory test surface
// (NewRVCPU/LoadProgram/Run/Regs/PC), reimplemented here as a host
// reference rather than a witness-producing executor -- this package
// never touches internal/circuit.
package rvref

import "encoding/binary"

// CPU is a host-executed RV32IM machine: 32 general registers (x0 pinned
// to zero), a program counter, and byte-addressable memory.
type CPU struct {
	Regs [32]uint32
	PC   uint32
	Mem  []byte

	instructions []uint32
	base         uint32
}

// NewCPU creates a CPU with memSize bytes of zeroed memory.
func NewCPU(memSize int) *CPU {
	return &CPU{Mem: make([]byte, memSize)}
}

// LoadProgram installs a fixed, public instruction stream starting at
// entryPC; Run replays it exactly once, instruction by instruction.
func (c *CPU) LoadProgram(instructions []uint32, entryPC uint32) {
	c.instructions = instructions
	c.base = entryPC
	c.PC = entryPC
}

// Run executes every loaded instruction in program order.
func (c *CPU) Run() {
	for i := range c.instructions {
		c.Step(c.instructions[i])
	}
}

func signExtend(v uint32, width uint) int32 {
	shift := 32 - width
	return int32(v<<shift) >> shift
}

func (c *CPU) writeback(rd uint32, v uint32) {
	if rd != 0 {
		c.Regs[rd] = v
	}
}

// Step decodes and executes exactly one instruction word against the
// CPU's current state, advancing PC the same way internal/lower does:
// by 4 for every opcode except taken jumps/branches, which set PC to the
// computed target.
func (c *CPU) Step(raw uint32) {
	opcode := raw & 0x7F
	rd := (raw >> 7) & 0x1F
	funct3 := (raw >> 12) & 0x7
	rs1 := (raw >> 15) & 0x1F
	rs2 := (raw >> 20) & 0x1F
	funct7 := (raw >> 25) & 0x7F

	immI := uint32(signExtend(raw>>20, 12))
	immU := raw & 0xFFFFF000
	immS := uint32(signExtend(((raw>>25)<<5)|((raw>>7)&0x1F), 12))
	immB := uint32(signExtend(
		(((raw>>31)&1)<<12)|(((raw>>7)&1)<<11)|(((raw>>25)&0x3F)<<5)|(((raw>>8)&0xF)<<1),
		13))
	immJ := uint32(signExtend(
		(((raw>>31)&1)<<20)|(((raw>>12)&0xFF)<<12)|(((raw>>20)&1)<<11)|(((raw>>21)&0x3FF)<<1),
		21))

	nextPC := c.PC + 4

	switch opcode {
	case 0x13: // OP-IMM
		v1 := c.Regs[rs1]
		switch funct3 {
		case 0x0:
			c.writeback(rd, v1+immI)
		case 0x1:
			c.writeback(rd, v1<<(rs2&0x1F))
		case 0x2:
			c.writeback(rd, boolU32(int32(v1) < int32(immI)))
		case 0x3:
			c.writeback(rd, boolU32(v1 < immI))
		case 0x4:
			c.writeback(rd, v1^immI)
		case 0x5:
			if funct7 == 0x20 {
				c.writeback(rd, uint32(int32(v1)>>(rs2&0x1F)))
			} else {
				c.writeback(rd, v1>>(rs2&0x1F))
			}
		case 0x6:
			c.writeback(rd, v1|immI)
		case 0x7:
			c.writeback(rd, v1&immI)
		}
	case 0x33: // OP
		v1, v2 := c.Regs[rs1], c.Regs[rs2]
		if funct7 == 0x01 {
			switch funct3 {
			case 0x0:
				c.writeback(rd, v1*v2)
			case 0x1:
				c.writeback(rd, uint32((int64(int32(v1))*int64(int32(v2)))>>32))
			case 0x2:
				c.writeback(rd, uint32((int64(int32(v1))*int64(uint32ToU64(v2)))>>32))
			case 0x3:
				c.writeback(rd, uint32((uint64(v1)*uint64(v2))>>32))
			case 0x4:
				c.writeback(rd, divSigned(v1, v2))
			case 0x5:
				c.writeback(rd, divUnsigned(v1, v2))
			case 0x6:
				c.writeback(rd, remSigned(v1, v2))
			case 0x7:
				c.writeback(rd, remUnsigned(v1, v2))
			}
			break
		}
		switch funct3 {
		case 0x0:
			if funct7 == 0x20 {
				c.writeback(rd, v1-v2)
			} else {
				c.writeback(rd, v1+v2)
			}
		case 0x1:
			c.writeback(rd, v1<<(v2&0x1F))
		case 0x2:
			c.writeback(rd, boolU32(int32(v1) < int32(v2)))
		case 0x3:
			c.writeback(rd, boolU32(v1 < v2))
		case 0x4:
			c.writeback(rd, v1^v2)
		case 0x5:
			if funct7 == 0x20 {
				c.writeback(rd, uint32(int32(v1)>>(v2&0x1F)))
			} else {
				c.writeback(rd, v1>>(v2&0x1F))
			}
		case 0x6:
			c.writeback(rd, v1|v2)
		case 0x7:
			c.writeback(rd, v1&v2)
		}
	case 0x37: // LUI
		c.writeback(rd, immU)
	case 0x17: // AUIPC
		c.writeback(rd, c.PC+immU)
	case 0x6F: // JAL
		c.writeback(rd, nextPC)
		nextPC = c.PC + immJ
	case 0x67: // JALR
		target := (c.Regs[rs1] + immI) &^ 1
		c.writeback(rd, nextPC)
		nextPC = target
	case 0x63: // BRANCH
		v1, v2 := c.Regs[rs1], c.Regs[rs2]
		var taken bool
		switch funct3 {
		case 0x0:
			taken = v1 == v2
		case 0x1:
			taken = v1 != v2
		case 0x4:
			taken = int32(v1) < int32(v2)
		case 0x5:
			taken = int32(v1) >= int32(v2)
		case 0x6:
			taken = v1 < v2
		case 0x7:
			taken = v1 >= v2
		}
		if taken {
			nextPC = c.PC + immB
		}
	case 0x03: // LOAD
		addr := c.Regs[rs1] + immI
		switch funct3 {
		case 0x0:
			c.writeback(rd, uint32(signExtend(uint32(c.Mem[addr]), 8)))
		case 0x1:
			c.writeback(rd, uint32(signExtend(uint32(binary.LittleEndian.Uint16(c.Mem[addr:])), 16)))
		case 0x2:
			c.writeback(rd, binary.LittleEndian.Uint32(c.Mem[addr:]))
		case 0x4:
			c.writeback(rd, uint32(c.Mem[addr]))
		case 0x5:
			c.writeback(rd, uint32(binary.LittleEndian.Uint16(c.Mem[addr:])))
		}
	case 0x23: // STORE
		addr := c.Regs[rs1] + immS
		v2 := c.Regs[rs2]
		switch funct3 {
		case 0x0:
			c.Mem[addr] = byte(v2)
		case 0x1:
			binary.LittleEndian.PutUint16(c.Mem[addr:], uint16(v2))
		case 0x2:
			binary.LittleEndian.PutUint32(c.Mem[addr:], v2)
		}
	case 0x73: // SYSTEM (ECALL/EBREAK): marker only, matches internal/lower.
	}

	c.PC = nextPC
}

func boolU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func uint32ToU64(v uint32) uint64 { return uint64(v) }

func divSigned(a, b uint32) uint32 {
	if b == 0 {
		return 0xFFFFFFFF
	}
	sa, sb := int32(a), int32(b)
	if sa == -0x80000000 && sb == -1 {
		return a
	}
	return uint32(sa / sb)
}

func divUnsigned(a, b uint32) uint32 {
	if b == 0 {
		return 0xFFFFFFFF
	}
	return a / b
}

func remSigned(a, b uint32) uint32 {
	if b == 0 {
		return a
	}
	sa, sb := int32(a), int32(b)
	if sa == -0x80000000 && sb == -1 {
		return 0
	}
	return uint32(sa % sb)
}

func remUnsigned(a, b uint32) uint32 {
	if b == 0 {
		return a
	}
	return a % b
}
