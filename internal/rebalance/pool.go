package rebalance

type slot struct {
	name      string
	available int
}

// Pool hands out recipient slots. Each Take picks the member with the most remaining
// free slots, breaking ties by name.
type Pool struct {
	slots []slot
}

func NewPool(loads []Load) *Pool {
	p := &Pool{}
	for _, l := range loads {
		if avail := l.Available(); avail > 0 {
			p.slots = append(p.slots, slot{name: l.Name, available: avail})
		}
	}
	return p
}

func (p *Pool) Take() (string, bool) {
	best := -1
	for i, s := range p.slots {
		if s.available <= 0 {
			continue
		}
		if best == -1 ||
			s.available > p.slots[best].available ||
			(s.available == p.slots[best].available && s.name < p.slots[best].name) {
			best = i
		}
	}
	if best == -1 {
		return "", false
	}
	p.slots[best].available--
	return p.slots[best].name, true
}

// Release returns a slot previously handed out by Take.
func (p *Pool) Release(name string) {
	for i := range p.slots {
		if p.slots[i].name == name {
			p.slots[i].available++
			return
		}
	}
}

// Remaining is the total number of free slots left in the pool.
func (p *Pool) Remaining() int {
	total := 0
	for _, s := range p.slots {
		total += s.available
	}
	return total
}

func (p *Pool) Empty() bool {
	return p.Remaining() == 0
}
