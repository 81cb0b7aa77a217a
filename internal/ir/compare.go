package ir

// CompareFunctions reports whether a and c are structurally equal: same
// return type, same argument-type vector, same block count, the same
// reachable-block shape, and for each pair of blocks
// (paired by an order isomorphism rooted at entry) an identical
// instruction sequence where paired instructions share opcode and
// operand-shape, and paired operands are either identical constants or
// occupy corresponding positions in the producer/user graph.
func CompareFunctions(a, c *Function) bool {
	if a == nil || c == nil {
		return a == c
	}
	if a.ReturnType != c.ReturnType || len(a.Params) != len(c.Params) || len(a.Blocks) != len(c.Blocks) {
		return false
	}
	for i := range a.Params {
		if a.Params[i].Typ != c.Params[i].Typ {
			return false
		}
	}

	pairsA, pairsB, indexA, indexB, ok := pairBlocks(a, c)
	if !ok {
		return false
	}

	canonA := make(map[*Value]int)
	canonB := make(map[*Value]int)
	for i, p := range a.Params {
		canonA[p.Value] = -(i + 1)
	}
	for i, p := range c.Params {
		canonB[p.Value] = -(i + 1)
	}

	next := 1
	for bi := range pairsA {
		blkA, blkB := pairsA[bi], pairsB[bi]
		instA, instB := blkA.Head, blkB.Head
		for instA != nil && instB != nil {
			if (instA.Out == nil) != (instB.Out == nil) {
				return false
			}
			if instA.Out != nil {
				canonA[instA.Out] = next
				canonB[instB.Out] = next
				next++
			}
			instA, instB = instA.Next, instB.Next
		}
		if instA != nil || instB != nil {
			return false
		}
	}

	for bi := range pairsA {
		blkA, blkB := pairsA[bi], pairsB[bi]
		instA, instB := blkA.Head, blkB.Head
		for instA != nil && instB != nil {
			if !compareInstruction(instA, instB, canonA, canonB, indexA, indexB) {
				return false
			}
			instA, instB = instA.Next, instB.Next
		}
	}
	return true
}

// pairBlocks performs a synchronized BFS from each entry over (TrueSucc,
// FalseSucc) order, returning the paired reachable blocks in visitation
// order plus each side's block->position index. Returns ok=false if the
// reachable shapes differ (different successor nil-ness, different
// reachable block count).
func pairBlocks(a, c *Function) (pairsA, pairsB []*BasicBlock, indexA, indexB map[*BasicBlock]int, ok bool) {
	indexA = make(map[*BasicBlock]int)
	indexB = make(map[*BasicBlock]int)
	if a.Entry == nil || c.Entry == nil {
		if a.Entry != c.Entry {
			return nil, nil, nil, nil, false
		}
		return nil, nil, indexA, indexB, true
	}

	visited := make(map[*BasicBlock]*BasicBlock)
	visitedB := map[*BasicBlock]bool{c.Entry: true}
	queue := []*BasicBlock{a.Entry}
	queueB := []*BasicBlock{c.Entry}
	visited[a.Entry] = c.Entry

	for len(queue) > 0 {
		blkA := queue[0]
		blkB := queueB[0]
		queue, queueB = queue[1:], queueB[1:]

		indexA[blkA] = len(pairsA)
		indexB[blkB] = len(pairsB)
		pairsA = append(pairsA, blkA)
		pairsB = append(pairsB, blkB)

		succA := [2]*BasicBlock{blkA.TrueSucc, blkA.FalseSucc}
		succB := [2]*BasicBlock{blkB.TrueSucc, blkB.FalseSucc}
		for i := 0; i < 2; i++ {
			if (succA[i] == nil) != (succB[i] == nil) {
				return nil, nil, nil, nil, false
			}
			if succA[i] == nil {
				continue
			}
			if paired, seen := visited[succA[i]]; seen {
				if paired != succB[i] {
					return nil, nil, nil, nil, false
				}
				continue
			}
			if visitedB[succB[i]] {
				return nil, nil, nil, nil, false
			}
			visited[succA[i]] = succB[i]
			visitedB[succB[i]] = true
			queue = append(queue, succA[i])
			queueB = append(queueB, succB[i])
		}
	}
	return pairsA, pairsB, indexA, indexB, true
}

func compareInstruction(instA, instB *Instruction, canonA, canonB map[*Value]int, indexA, indexB map[*BasicBlock]int) bool {
	if instA.Op != instB.Op {
		return false
	}
	opsA, opsB := instA.GetOperands(), instB.GetOperands()
	if len(opsA) != len(opsB) {
		return false
	}
	for i := range opsA {
		if !sameOperand(opsA[i], opsB[i], canonA, canonB) {
			return false
		}
	}
	switch instA.Op {
	case OpAlloc:
		if instA.AllocElemType != instB.AllocElemType || instA.AllocCount != instB.AllocCount {
			return false
		}
	case OpCall:
		nameA, nameB := "", ""
		if instA.Callee != nil {
			nameA = instA.Callee.Name
		}
		if instB.Callee != nil {
			nameB = instB.Callee.Name
		}
		if nameA != nameB {
			return false
		}
	case OpJump:
		if !sameTarget(instA.TrueTarget, instB.TrueTarget, indexA, indexB) {
			return false
		}
	default:
		if instA.Op.IsBranch() {
			if !sameTarget(instA.TrueTarget, instB.TrueTarget, indexA, indexB) {
				return false
			}
			if !sameTarget(instA.FalseTarget, instB.FalseTarget, indexA, indexB) {
				return false
			}
		}
	}
	return true
}

func sameTarget(a, b *BasicBlock, indexA, indexB map[*BasicBlock]int) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	ia, oka := indexA[a]
	ib, okb := indexB[b]
	return oka && okb && ia == ib
}

func sameOperand(a, b *Value, canonA, canonB map[*Value]int) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	if a.IsConst || b.IsConst {
		return a.IsConst && b.IsConst && a.Typ == b.Typ && a.Payload == b.Payload
	}
	ia, oka := canonA[a]
	ib, okb := canonB[b]
	return oka && okb && ia == ib
}
