package main

// hider is the part of the scene the hide stack drives.
type hider interface {
	Hide(id uint64) error
	Show(id uint64) error
	Hidden(id uint64) bool
}

// hideStack remembers hidden brushes so they can be shown again in reverse
// order.
type hideStack struct {
	ids []uint64
}

func (h *hideStack) hide(sc hider, id uint64) error {
	if sc.Hidden(id) {
		return nil
	}
	if err := sc.Hide(id); err != nil {
		return err
	}
	h.ids = append(h.ids, id)
	return nil
}

// showLast reveals the most recently hidden brush. ok is false when nothing
// is hidden.
func (h *hideStack) showLast(sc hider) (id uint64, ok bool, err error) {
	if len(h.ids) == 0 {
		return 0, false, nil
	}
	id = h.ids[len(h.ids)-1]
	if err := sc.Show(id); err != nil {
		return id, false, err
	}
	h.ids = h.ids[:len(h.ids)-1]
	return id, true, nil
}

func (h *hideStack) showAll(sc hider) (int, error) {
	n := 0
	for len(h.ids) > 0 {
		if _, _, err := h.showLast(sc); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
