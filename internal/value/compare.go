package value

// variantOrder fixes the cross-variant total order CMP uses per the
// Open Question resolution recorded in DESIGN.md: spec.md leaves
// cross-variant CMP under-specified and asks for "a well-defined total
// order by variant tag".
func variantOrder(k Kind) int { return int(k) }

// Compare implements CMP: -1/0/+1 for same-variant operands using each
// variant's natural order, or the fixed variant-tag order across
// variants.
func Compare(a, b Value) int {
	if a.Kind != b.Kind {
		ao, bo := variantOrder(a.Kind), variantOrder(b.Kind)
		switch {
		case ao < bo:
			return -1
		case ao > bo:
			return 1
		default:
			return 0
		}
	}
	switch a.Kind {
	case KindNull:
		return 0
	case KindInteger:
		switch {
		case a.Int < b.Int:
			return -1
		case a.Int > b.Int:
			return 1
		default:
			return 0
		}
	case KindOctet:
		switch {
		case a.Octet < b.Octet:
			return -1
		case a.Octet > b.Octet:
			return 1
		default:
			return 0
		}
	case KindRational:
		return ratCompare(a.asRational(), b.asRational())
	case KindComplex:
		ac, bc := a.asComplex(), b.asComplex()
		if c := ratCompare(ac.Re, bc.Re); c != 0 {
			return c
		}
		return ratCompare(ac.Im, bc.Im)
	case KindString:
		as, bs := a.asString().Content, b.asString().Content
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	case KindList:
		al, bl := a.asList(), b.asList()
		switch {
		case al.count < bl.count:
			return -1
		case al.count > bl.count:
			return 1
		default:
			return 0
		}
	case KindMatrix:
		am, bm := a.asMatrix(), b.asMatrix()
		an, bn := am.size(), bm.size()
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	case KindAssociation:
		aa, ba := a.asAssoc(), b.asAssoc()
		switch {
		case aa.count < ba.count:
			return -1
		case aa.count > ba.count:
			return 1
		default:
			return 0
		}
	case KindObject:
		ao, bo := a.asObject(), b.asObject()
		switch {
		case ao.TypeID != bo.TypeID:
			if ao.TypeID < bo.TypeID {
				return -1
			}
			return 1
		default:
			for i := range ao.Elems {
				if c := Compare(ao.Elems[i], bo.Elems[i]); c != 0 {
					return c
				}
			}
			return 0
		}
	default:
		return 0
	}
}

// Equal is value identity used by association keys and matrix index
// comparison: two values compare equal iff Compare returns 0.
func Equal(a, b Value) bool { return Compare(a, b) == 0 }
