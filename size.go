package kdb

// fixed bytes in front of every list: type, attribute, int32 count
const listHeaderSize = 6

// Size returns the exact number of bytes Encode writes for v, excluding the
// 8-byte message header. Nothing is allocated for output.
func Size(v interface{}) (int, error) {
	n, err := resolve(v)
	if err != nil {
		return 0, err
	}
	return nodeSize(n)
}

func nodeSize(n node) (int, error) {
	switch n.t {
	case KNIL:
		return 2, nil
	case KS:
		return 1 + symbolSize(n.v), nil
	case KSTR:
		return listHeaderSize + len(n.v.(string)), nil
	case XD:
		d := n.v.(Dict)
		size := 1 + listHeaderSize
		for _, k := range d.Keys {
			size += 1 + len(k)
		}
		vals, err := promote(d.Values)
		if err != nil {
			return 0, err
		}
		vs, err := nodeSize(vals)
		if err != nil {
			return 0, err
		}
		return size + vs, nil
	case K0:
		size := listHeaderSize
		for _, x := range n.v.([]interface{}) {
			xs, err := Size(x)
			if err != nil {
				return 0, err
			}
			size += xs
		}
		return size, nil
	case KTLIST:
		items := n.v.([]interface{})
		if n.elem == KS {
			size := listHeaderSize
			for _, x := range items {
				size += symbolSize(x)
			}
			return size, nil
		}
		w, err := Width(n.elem)
		if err != nil {
			return 0, err
		}
		return listHeaderSize + w*len(items), nil
	}
	w, err := Width(n.t)
	if err != nil {
		return 0, err
	}
	return 1 + w, nil
}

// symbolSize is the text plus its terminating zero; the null symbol is just the zero.
func symbolSize(v interface{}) int {
	s, _ := v.(string)
	return len(s) + 1
}
