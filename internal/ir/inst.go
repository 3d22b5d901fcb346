package ir

// Opcode identifies the shape of an Instruction.
type Opcode int

const (
	opInvalid Opcode = iota

	OpAssign
	OpAlloca
	OpStore
	OpBlock
	OpBr
	OpJmp
	OpPhi
	OpSwitch
	OpRet
	OpRetVoid
	OpDrop
	OpUnreachable
)

var opcodeNames = map[Opcode]string{
	OpAssign: "Assign", OpAlloca: "Alloca", OpStore: "Store", OpBlock: "Block",
	OpBr: "Br", OpJmp: "Jmp", OpPhi: "Phi", OpSwitch: "Switch",
	OpRet: "Ret", OpRetVoid: "RetVoid", OpDrop: "Drop", OpUnreachable: "Unreachable",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "Invalid"
}

// terminators are the opcodes that may legally end a function body.
var terminators = map[Opcode]bool{
	OpRet: true, OpRetVoid: true, OpBr: true, OpJmp: true, OpSwitch: true, OpUnreachable: true,
}

// IsTerminator reports whether op ends a basic block.
func IsTerminator(op Opcode) bool { return terminators[op] }

// Instruction is an immutable opcode plus an ordered operand list. Phi and
// Switch operands are interleaved (value, label) pairs after any fixed
// leading operands; see PhiPairs/SwitchCases for structured access.
type Instruction struct {
	op       Opcode
	operands []*Term
}

// NewInstruction builds an instruction from a raw opcode and operand list.
// It performs no validation beyond what the opcode-specific constructors
// below enforce; package validate is responsible for full structural
// checking.
func NewInstruction(op Opcode, operands []*Term) *Instruction {
	return &Instruction{op: op, operands: append([]*Term(nil), operands...)}
}

// Op reports i's opcode.
func (i *Instruction) Op() Opcode { return i.op }

// NumOperands reports the number of operand terms.
func (i *Instruction) NumOperands() int { return len(i.operands) }

// Operand returns the k'th operand term.
func (i *Instruction) Operand(k int) *Term { return i.operands[k] }

// Operands returns the operand terms in order. Callers must not mutate the
// returned slice.
func (i *Instruction) Operands() []*Term { return i.operands }

// Equal reports whether i and o have the same opcode and pointwise-equal
// operands.
func (i *Instruction) Equal(o *Instruction) bool {
	if i == o {
		return true
	}
	if i == nil || o == nil {
		return false
	}
	if i.op != o.op || len(i.operands) != len(o.operands) {
		return false
	}
	for k := range i.operands {
		if !i.operands[k].Equal(o.operands[k]) {
			return false
		}
	}
	return true
}

// Rebuild reconstructs an instruction of the same opcode with a new operand
// list, used by the substitution transform.
func (i *Instruction) Rebuild(operands []*Term) *Instruction {
	return &Instruction{op: i.op, operands: operands}
}

// Assign builds `lhs = rhs`; lhs must be a Var and share rhs's type (enforced
// by the validator, not here, since rhs may be any term-typed expression).
func Assign(lhs, rhs *Term) *Instruction {
	return &Instruction{op: OpAssign, operands: []*Term{lhs, rhs}}
}

// Alloca builds `lhs = alloca elemType, count`; elemWitness names the
// allocated element type, count is the element count.
func Alloca(lhs *Term, elemWitness *Term, count *Term) *Instruction {
	return &Instruction{op: OpAlloca, operands: []*Term{lhs, elemWitness, count}}
}

// Store builds `store value, pointer`.
func Store(value, pointer *Term) *Instruction {
	return &Instruction{op: OpStore, operands: []*Term{value, pointer}}
}

// Block builds a label-definition pseudo-instruction.
func Block(label *Term) *Instruction {
	return &Instruction{op: OpBlock, operands: []*Term{label}}
}

// Br builds a conditional branch.
func Br(cond, trueLabel, falseLabel *Term) *Instruction {
	return &Instruction{op: OpBr, operands: []*Term{cond, trueLabel, falseLabel}}
}

// Jmp builds an unconditional jump.
func Jmp(label *Term) *Instruction {
	return &Instruction{op: OpJmp, operands: []*Term{label}}
}

// PhiPair is one (incoming value, predecessor label) entry of a Phi.
type PhiPair struct {
	Value *Term
	Label *Term
}

// Phi builds a phi instruction over target and the given incoming pairs, in
// collection order.
func Phi(target *Term, pairs []PhiPair) *Instruction {
	operands := make([]*Term, 0, 1+2*len(pairs))
	operands = append(operands, target)
	for _, p := range pairs {
		operands = append(operands, p.Value, p.Label)
	}
	return &Instruction{op: OpPhi, operands: operands}
}

// PhiTarget returns the Var target of a Phi instruction.
func (i *Instruction) PhiTarget() *Term { return i.operands[0] }

// PhiPairs returns the (value, label) incoming pairs of a Phi instruction,
// in collection order.
func (i *Instruction) PhiPairs() []PhiPair {
	n := (len(i.operands) - 1) / 2
	pairs := make([]PhiPair, n)
	for k := 0; k < n; k++ {
		pairs[k] = PhiPair{Value: i.operands[1+2*k], Label: i.operands[2+2*k]}
	}
	return pairs
}

// SwitchCase is one (case value, target label) entry of a Switch.
type SwitchCase struct {
	Value *Term
	Label *Term
}

// Switch builds a switch instruction.
func Switch(value, defaultLabel *Term, cases []SwitchCase) *Instruction {
	operands := make([]*Term, 0, 2+2*len(cases))
	operands = append(operands, value, defaultLabel)
	for _, c := range cases {
		operands = append(operands, c.Value, c.Label)
	}
	return &Instruction{op: OpSwitch, operands: operands}
}

// SwitchValue returns the scrutinee of a Switch instruction.
func (i *Instruction) SwitchValue() *Term { return i.operands[0] }

// SwitchDefault returns the default label of a Switch instruction.
func (i *Instruction) SwitchDefault() *Term { return i.operands[1] }

// SwitchCases returns the (case, label) pairs of a Switch instruction, in
// source order.
func (i *Instruction) SwitchCases() []SwitchCase {
	n := (len(i.operands) - 2) / 2
	cases := make([]SwitchCase, n)
	for k := 0; k < n; k++ {
		cases[k] = SwitchCase{Value: i.operands[2+2*k], Label: i.operands[3+2*k]}
	}
	return cases
}

// Ret builds a value-returning terminator.
func Ret(value *Term) *Instruction {
	return &Instruction{op: OpRet, operands: []*Term{value}}
}

// RetVoid builds a void-returning terminator.
func RetVoid() *Instruction {
	return &Instruction{op: OpRetVoid}
}

// Drop builds an instruction that discards the result of a side-effectful
// term (typically a void-returning Call).
func Drop(term *Term) *Instruction {
	return &Instruction{op: OpDrop, operands: []*Term{term}}
}

// Unreachable builds the unreachable terminator.
func Unreachable() *Instruction {
	return &Instruction{op: OpUnreachable}
}
