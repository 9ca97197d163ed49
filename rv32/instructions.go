package rv32

import (
	asm "github.com/tsots-online/rv32asm/assembler"
)

// Major opcodes of the RV32I base set.
const (
	opLUI    = 0b0110111
	opAUIPC  = 0b0010111
	opJAL    = 0b1101111
	opJALR   = 0b1100111
	opBranch = 0b1100011
	opLoad   = 0b0000011
	opStore  = 0b0100011
	opImm    = 0b0010011
	opReg    = 0b0110011
	opSystem = 0b1110011
)

func opcode(v uint32) asm.OpPart {
	return asm.OpPart{Value: v, Range: asm.BitRange{Hi: 6, Lo: 0}}
}

func funct3(v uint32) asm.OpPart {
	return asm.OpPart{Value: v, Range: asm.BitRange{Hi: 14, Lo: 12}}
}

func funct7(v uint32) asm.OpPart {
	return asm.OpPart{Value: v, Range: asm.BitRange{Hi: 31, Lo: 25}}
}

func funct12(v uint32) asm.OpPart {
	return asm.OpPart{Value: v, Range: asm.BitRange{Hi: 31, Lo: 20}}
}

func reg(token, hi, lo int) asm.RegField {
	return asm.RegField{Token: token, Range: asm.BitRange{Hi: hi, Lo: lo}}
}

func rd(token int) asm.RegField  { return reg(token, 11, 7) }
func rs1(token int) asm.RegField { return reg(token, 19, 15) }
func rs2(token int) asm.RegField { return reg(token, 24, 20) }

// immI is the 12-bit signed immediate of I-format instructions.
func immI(token int) asm.ImmField {
	return asm.ImmField{
		Token: token, Width: 12, Signed: true,
		Parts: []asm.ImmPart{{Off: 0, Range: asm.BitRange{Hi: 31, Lo: 20}}},
	}
}

// immS is the store-format immediate, split around the rs2 field.
func immS(token int) asm.ImmField {
	return asm.ImmField{
		Token: token, Width: 12, Signed: true,
		Parts: []asm.ImmPart{
			{Off: 5, Range: asm.BitRange{Hi: 31, Lo: 25}},
			{Off: 0, Range: asm.BitRange{Hi: 11, Lo: 7}},
		},
	}
}

// immB is the branch offset: 13 bits signed, bit 0 implicit.
func immB(token int) asm.ImmField {
	return asm.ImmField{
		Token: token, Width: 13, Signed: true, PCRel: true,
		Parts: []asm.ImmPart{
			{Off: 12, Range: asm.BitRange{Hi: 31, Lo: 31}},
			{Off: 5, Range: asm.BitRange{Hi: 30, Lo: 25}},
			{Off: 1, Range: asm.BitRange{Hi: 11, Lo: 8}},
			{Off: 11, Range: asm.BitRange{Hi: 7, Lo: 7}},
		},
	}
}

// immU is the 20-bit upper immediate of lui/auipc, not shifted.
func immU(token int) asm.ImmField {
	return asm.ImmField{
		Token: token, Width: 20,
		Parts: []asm.ImmPart{{Off: 0, Range: asm.BitRange{Hi: 31, Lo: 12}}},
	}
}

// immJ is the jal offset: 21 bits signed, bit 0 implicit.
func immJ(token int) asm.ImmField {
	return asm.ImmField{
		Token: token, Width: 21, Signed: true, PCRel: true,
		Parts: []asm.ImmPart{
			{Off: 20, Range: asm.BitRange{Hi: 31, Lo: 31}},
			{Off: 1, Range: asm.BitRange{Hi: 30, Lo: 21}},
			{Off: 11, Range: asm.BitRange{Hi: 20, Lo: 20}},
			{Off: 12, Range: asm.BitRange{Hi: 19, Lo: 12}},
		},
	}
}

// shamt is the 5-bit shift amount of the immediate shifts.
func shamt(token int) asm.ImmField {
	return asm.ImmField{
		Token: token, Width: 5,
		Parts: []asm.ImmPart{{Off: 0, Range: asm.BitRange{Hi: 24, Lo: 20}}},
	}
}

func rType(name string, f3, f7 uint32) *asm.Instruction {
	return &asm.Instruction{
		Name:   name,
		Opcode: []asm.OpPart{opcode(opReg), funct3(f3), funct7(f7)},
		Fields: []asm.Field{rd(0), rs1(1), rs2(2)},
	}
}

func iType(name string, op, f3 uint32) *asm.Instruction {
	return &asm.Instruction{
		Name:   name,
		Opcode: []asm.OpPart{opcode(op), funct3(f3)},
		Fields: []asm.Field{rd(0), rs1(1), immI(2)},
	}
}

// loadType covers "ld rd, imm(rs1)" syntax: the base register follows
// the displacement in token order.
func loadType(name string, f3 uint32) *asm.Instruction {
	return &asm.Instruction{
		Name:   name,
		Opcode: []asm.OpPart{opcode(opLoad), funct3(f3)},
		Fields: []asm.Field{rd(0), immI(1), rs1(2)},
	}
}

func storeType(name string, f3 uint32) *asm.Instruction {
	return &asm.Instruction{
		Name:   name,
		Opcode: []asm.OpPart{opcode(opStore), funct3(f3)},
		Fields: []asm.Field{rs2(0), immS(1), rs1(2)},
	}
}

func branchType(name string, f3 uint32) *asm.Instruction {
	return &asm.Instruction{
		Name:   name,
		Opcode: []asm.OpPart{opcode(opBranch), funct3(f3)},
		Fields: []asm.Field{rs1(0), rs2(1), immB(2)},
	}
}

func shiftType(name string, f3, f7 uint32) *asm.Instruction {
	return &asm.Instruction{
		Name:   name,
		Opcode: []asm.OpPart{opcode(opImm), funct3(f3), funct7(f7)},
		Fields: []asm.Field{rd(0), rs1(1), shamt(2)},
	}
}

func uType(name string, op uint32) *asm.Instruction {
	return &asm.Instruction{
		Name:   name,
		Opcode: []asm.OpPart{opcode(op)},
		Fields: []asm.Field{rd(0), immU(1)},
	}
}

func systemType(name string, f12 uint32) *asm.Instruction {
	return &asm.Instruction{
		Name: name,
		Opcode: []asm.OpPart{
			opcode(opSystem), funct3(0), funct12(f12),
			{Value: 0, Range: asm.BitRange{Hi: 11, Lo: 7}},
			{Value: 0, Range: asm.BitRange{Hi: 19, Lo: 15}},
		},
	}
}

// instructions returns the RV32I base instruction table.
func instructions() []*asm.Instruction {
	return []*asm.Instruction{
		uType("lui", opLUI),
		uType("auipc", opAUIPC),

		{
			Name:   "jal",
			Opcode: []asm.OpPart{opcode(opJAL)},
			Fields: []asm.Field{rd(0), immJ(1)},
		},
		{
			Name:   "jalr",
			Opcode: []asm.OpPart{opcode(opJALR), funct3(0)},
			Fields: []asm.Field{rd(0), rs1(1), immI(2)},
		},

		branchType("beq", 0b000),
		branchType("bne", 0b001),
		branchType("blt", 0b100),
		branchType("bge", 0b101),
		branchType("bltu", 0b110),
		branchType("bgeu", 0b111),

		loadType("lb", 0b000),
		loadType("lh", 0b001),
		loadType("lw", 0b010),
		loadType("lbu", 0b100),
		loadType("lhu", 0b101),

		storeType("sb", 0b000),
		storeType("sh", 0b001),
		storeType("sw", 0b010),

		iType("addi", opImm, 0b000),
		iType("slti", opImm, 0b010),
		iType("sltiu", opImm, 0b011),
		iType("xori", opImm, 0b100),
		iType("ori", opImm, 0b110),
		iType("andi", opImm, 0b111),
		shiftType("slli", 0b001, 0b0000000),
		shiftType("srli", 0b101, 0b0000000),
		shiftType("srai", 0b101, 0b0100000),

		rType("add", 0b000, 0b0000000),
		rType("sub", 0b000, 0b0100000),
		rType("sll", 0b001, 0b0000000),
		rType("slt", 0b010, 0b0000000),
		rType("sltu", 0b011, 0b0000000),
		rType("xor", 0b100, 0b0000000),
		rType("srl", 0b101, 0b0000000),
		rType("sra", 0b101, 0b0100000),
		rType("or", 0b110, 0b0000000),
		rType("and", 0b111, 0b0000000),

		systemType("ecall", 0),
		systemType("ebreak", 1),
	}
}
