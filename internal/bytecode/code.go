package bytecode

// skipCodeUnit walks a function body: the locals signature, the
// instructions, and from version 7 the variant jump tables that follow them.
func skipCodeUnit(s *stream, version uint32) error {
	if _, err := s.readIndex(); err != nil {
		return err
	}

	count, err := s.readCount(1)
	if err != nil {
		return err
	}
	for range count {
		at := s.offset()
		op, err := s.readByte()
		if err != nil {
			return err
		}
		kind, ok := opcodes[op]
		if !ok {
			return errorf(at, "unknown opcode 0x%02x", op)
		}
		if err := skipOperand(s, kind); err != nil {
			return err
		}
	}

	if version < 7 {
		return nil
	}
	tables, err := s.readCount(3)
	if err != nil {
		return err
	}
	for range tables {
		if _, err := s.readIndex(); err != nil {
			return err
		}
		at := s.offset()
		flavor, err := s.readByte()
		if err != nil {
			return err
		}
		if flavor != JumpTableFull {
			return errorf(at, "unknown jump table flavor 0x%02x", flavor)
		}
		n, err := s.readCount(1)
		if err != nil {
			return err
		}
		for range n {
			if _, err := s.readIndex(); err != nil {
				return err
			}
		}
	}
	return nil
}

func skipOperand(s *stream, kind operand) error {
	switch kind {
	case opNone:
		return nil
	case opIndex:
		_, err := s.readIndex()
		return err
	case opByte:
		return s.skip(1)
	case opFixed2:
		return s.skip(2)
	case opFixed4:
		return s.skip(4)
	case opFixed8:
		return s.skip(8)
	case opFixed16:
		return s.skip(16)
	case opFixed32:
		return s.skip(32)
	case opIndexU64:
		if _, err := s.readIndex(); err != nil {
			return err
		}
		return s.skip(8)
	}
	return nil
}
